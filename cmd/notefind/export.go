package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/store"
	"github.com/kk-code-lab/notefind/internal/transcript"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a JSON transcript as plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLogger(cmd, func(logger *slog.Logger) error {
				t, err := transcript.NewService(args[0], nil, logger).Load()
				if err != nil {
					return err
				}
				content, filename, err := transcript.Export(t, transcript.ExportKind(kind))
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if outputDir == "" {
					fmt.Fprintln(out, content)
					return nil
				}
				target := filepath.Join(outputDir, filename)
				if err := store.NewFileStore(target, logger).Save(cmd.Context(), content); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(transcript.ExportBoth), "What to export: transcript, notes or both")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write the export to instead of stdout")
	return cmd
}
