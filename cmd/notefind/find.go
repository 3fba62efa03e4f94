package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/textutil"
)

const contextWidth = 48

// matchRow describes one match for table and JSON output. Offsets and columns
// count runes; Line and Column are 1-based.
type matchRow struct {
	Index   int    `json:"index"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Text    string `json:"text"`
	Context string `json:"context"`
}

func newFindCommand(ctx *commandContext) *cobra.Command {
	var flags searchFlags
	var jsonDoc bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "find FILE QUERY",
		Short: "List matches of a query in a notes file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLogger(cmd, func(logger *slog.Logger) error {
				doc, err := loadDocument(args[0], jsonDoc, logger)
				if err != nil {
					return err
				}
				cfg := flags.apply(cmd, ctx.config.SearchConfig(args[1]))
				if cfg.Empty() {
					return search.ErrEmptyQuery
				}

				runs := document.Scan(doc)
				matches, err := ctx.finder(logger).Find(runs, cfg)
				if err != nil {
					return fmt.Errorf("find: %w", err)
				}
				rows := describeMatches(runs, matches)

				out := cmd.OutOrStdout()
				if jsonOut {
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					if rows == nil {
						rows = []matchRow{}
					}
					return encoder.Encode(rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No matches")
					return nil
				}

				colorize := shouldColorize(out)
				table := make([][]string, 0, len(rows))
				for _, row := range rows {
					table = append(table, []string{
						strconv.Itoa(row.Index),
						strconv.Itoa(row.Offset),
						strconv.Itoa(row.Length),
						fmt.Sprintf("%d:%d", row.Line, row.Column),
						highlight(row.Text, colorize),
						row.Context,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Offset", "Length", "Line:Col", "Match", "Context"},
					table,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%d %s (%s)\n", len(rows), plural(len(rows), "match", "matches"), cfg.Mode())
				return nil
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&jsonDoc, "json-doc", false, "Read FILE as a structured editor document")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print matches as JSON")
	return cmd
}

func describeMatches(runs []document.Run, matches []search.Match) []matchRow {
	if len(matches) == 0 {
		return nil
	}
	text := []rune(document.Flatten(runs))
	lines := document.Lines(runs)

	rows := make([]matchRow, 0, len(matches))
	for i, m := range matches {
		idx := sort.Search(len(lines), func(j int) bool { return lines[j].Start > m.Start }) - 1
		idx = max(idx, 0)
		line := lines[idx]
		rows = append(rows, matchRow{
			Index:   i + 1,
			Offset:  m.Start,
			Length:  m.Length,
			Line:    idx + 1,
			Column:  m.Start - line.Start + 1,
			Text:    displayText(string(text[m.Start:m.End()])),
			Context: textutil.Truncate(displayText(line.Text), contextWidth),
		})
	}
	return rows
}

func displayText(s string) string {
	return textutil.SanitizeTerminalText(strings.ReplaceAll(s, "\n", "↵"))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
