package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/notefind/internal/editor"
	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/session"
	"github.com/kk-code-lab/notefind/internal/store"
	"github.com/kk-code-lab/notefind/internal/transcript"
	"github.com/kk-code-lab/notefind/internal/ui/view"
)

const flushTimeout = 5 * time.Second

func newViewCommand(ctx *commandContext) *cobra.Command {
	var transcriptFile bool

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Open notes in the interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The screen owns the terminal, so records go to logging.file or nowhere.
			logger, closer, err := ctx.logger(io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()
			return runViewer(cmd.Context(), ctx, args[0], transcriptFile, logger)
		},
	}

	cmd.Flags().BoolVarP(&transcriptFile, "transcript", "t", false, "FILE is a JSON transcript; edit its notes and replace across segments")
	return cmd
}

// notesSource binds the viewer to a plain notes file or to the notes of a
// JSON transcript.
type notesSource struct {
	initial  string
	saver    editor.Saver
	replacer *transcript.Service
	decode   func(raw string) (string, bool)
}

func openNotesSource(path string, isTranscript bool, bus *eventbus.Bus, logger *slog.Logger) (*notesSource, error) {
	if !isTranscript {
		fs := store.NewFileStore(path, logger)
		text, err := fs.Load()
		if err != nil {
			return nil, err
		}
		return &notesSource{
			initial: text,
			saver:   fs,
			decode:  func(raw string) (string, bool) { return raw, true },
		}, nil
	}

	svc := transcript.NewService(path, bus, logger)
	t, err := svc.Load()
	if err != nil {
		return nil, err
	}
	return &notesSource{
		initial:  t.Notes,
		saver:    editor.SaverFunc(svc.SaveNotes),
		replacer: svc,
		decode: func(raw string) (string, bool) {
			var t transcript.Transcript
			if err := json.Unmarshal([]byte(raw), &t); err != nil {
				logger.Debug("ignoring partial transcript write", "path", path, "error", err)
				return "", false
			}
			return t.Notes, true
		},
	}, nil
}

func runViewer(parent context.Context, cctx *commandContext, path string, isTranscript bool, logger *slog.Logger) error {
	cfg := cctx.config
	bus := eventbus.New(logger)

	src, err := openNotesSource(path, isTranscript, bus, logger)
	if err != nil {
		return err
	}

	ed := editor.New(src.saver, src.initial,
		editor.WithDebounce(cfg.SaveDebounce()),
		editor.WithBus(bus),
		editor.WithLogger(logger),
	)
	defer ed.Close()

	if src.replacer != nil {
		sub := bus.Subscribe(eventbus.TopicNotesUpdated, func(ev eventbus.Event) {
			if ue, ok := ev.Payload.(transcript.UpdatedEvent); ok {
				ed.Receive(ue.Notes)
			}
		})
		defer bus.Unsubscribe(sub)
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	runCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Editor.Watch {
		go func() {
			err := store.Watch(runCtx, path, func(raw string) {
				if notes, ok := src.decode(raw); ok {
					ed.Receive(notes)
				}
			}, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("file watching disabled", "path", path, "error", err)
			}
		}()
	}

	opts := []view.Option{
		view.WithFinder(cctx.finder(logger)),
		view.WithSearchConfig(cfg.SearchConfig("")),
		view.WithTitle(filepath.Base(path)),
		view.WithLogger(logger),
	}
	if src.replacer != nil {
		// Pending notes edits are stored first so the transcript replace sees them.
		opts = append(opts, view.WithReplacer(session.FindReplaceFunc(
			func(ctx context.Context, query, replacement string, ro search.ReplaceOptions) error {
				if err := ed.Flush(ctx); err != nil {
					return err
				}
				return src.replacer.FindAndReplace(ctx, query, replacement, ro)
			})))
	}
	v := view.New(screen, ed, bus, opts...)
	defer v.Close()

	runErr := v.Run(runCtx)

	// Unsaved edits are written before the terminal is released.
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := ed.Flush(flushCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("save on exit: %w", err))
	}
	return runErr
}
