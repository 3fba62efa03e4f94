package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/editor"
	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/session"
	"github.com/kk-code-lab/notefind/internal/store"
	"github.com/kk-code-lab/notefind/internal/transcript"
)

func newReplaceCommand(ctx *commandContext) *cobra.Command {
	var flags searchFlags
	var index int

	cmd := &cobra.Command{
		Use:   "replace FILE QUERY REPLACEMENT",
		Short: "Replace one match in a notes file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLogger(cmd, func(logger *slog.Logger) error {
				path, query, replacement := args[0], args[1], args[2]
				fs := store.NewFileStore(path, logger)
				text, err := fs.Load()
				if err != nil {
					return err
				}
				cfg := flags.apply(cmd, ctx.config.SearchConfig(query))
				if cfg.Empty() {
					return search.ErrEmptyQuery
				}

				doc := document.Parse(text)
				finder := ctx.finder(logger)
				matches, err := finder.Find(document.Scan(doc), cfg)
				if err != nil {
					return fmt.Errorf("find: %w", err)
				}
				if len(matches) == 0 {
					return fmt.Errorf("no matches for %q", query)
				}
				if index < 1 || index > len(matches) {
					return fmt.Errorf("match %d out of range: %d %s", index, len(matches), plural(len(matches), "match", "matches"))
				}

				sess := session.New(finder, session.WithLogger(logger))
				sess.SetDocument(doc)
				sess.Open()
				sess.SetConfig(cfg)
				for i := 1; i < index; i++ {
					sess.Next()
				}
				updated, err := sess.ReplaceCurrent(replacement)
				if err != nil {
					return err
				}
				if err := fs.Save(cmd.Context(), updated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Replaced match %d of %d in %s\n", index, len(matches), path)
				return nil
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVarP(&index, "index", "n", 1, "1-based match to replace")
	return cmd
}

func newReplaceAllCommand(ctx *commandContext) *cobra.Command {
	var flags searchFlags
	var transcriptFile bool

	cmd := &cobra.Command{
		Use:   "replace-all FILE QUERY REPLACEMENT",
		Short: "Replace every match in a notes file or transcript",
		Long: "Replace every match in a notes file or transcript.\n\n" +
			"Fuzzy queries are replaced literally. With --regex, REPLACEMENT may\n" +
			"reference groups as $1 or ${name}.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLogger(cmd, func(logger *slog.Logger) error {
				path, query, replacement := args[0], args[1], args[2]
				cfg := flags.apply(cmd, ctx.config.SearchConfig(query))
				out := cmd.OutOrStdout()

				if transcriptFile {
					bus := eventbus.New(logger)
					updated := false
					bus.Subscribe(eventbus.TopicNotesUpdated, func(ev eventbus.Event) {
						if ue, ok := ev.Payload.(transcript.UpdatedEvent); ok {
							updated = true
							fmt.Fprintf(out, "Updated %d %s in %s\n", ue.Segments, plural(ue.Segments, "segment", "segments"), ue.Path)
						}
					})
					svc := transcript.NewService(path, bus, logger)
					if err := replaceAll(cmd, ctx.finder(logger), nil, cfg, replacement, svc, logger); err != nil {
						return err
					}
					if !updated {
						fmt.Fprintln(out, "No matches")
					}
					return nil
				}

				fs := store.NewFileStore(path, logger)
				text, err := fs.Load()
				if err != nil {
					return err
				}
				ed := editor.New(fs, text, editor.WithLogger(logger))
				defer ed.Close()

				if err := replaceAll(cmd, ctx.finder(logger), document.Parse(text), cfg, replacement, ed, logger); err != nil {
					return err
				}
				if !ed.Pending() {
					fmt.Fprintln(out, "No matches")
					return nil
				}
				if err := ed.Flush(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Replaced all matches of %q in %s\n", query, path)
				return nil
			})
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVarP(&transcriptFile, "transcript", "t", false, "FILE is a JSON transcript; replace across segments and notes")
	return cmd
}

// replaceAll drives a session through its delegated replace-all so the CLI
// honors the same preconditions as the viewer.
func replaceAll(cmd *cobra.Command, finder *search.Finder, doc *document.Document, cfg search.Config, replacement string, target session.FindReplacer, logger *slog.Logger) error {
	sess := session.New(finder,
		session.WithFindReplacer(target),
		session.WithLogger(logger),
	)
	if doc != nil {
		sess.SetDocument(doc)
	}
	sess.Open()
	sess.SetConfig(cfg)
	sess.SetReplacement(replacement)

	return sess.ReplaceAll(cmd.Context())
}
