package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/store"
)

// UpdatedEvent is published after a transcript file changes.
type UpdatedEvent struct {
	Path     string
	Segments int
	Notes    string
}

// Service applies find and replace to a transcript stored as a JSON file.
type Service struct {
	mu     sync.Mutex
	path   string
	bus    *eventbus.Bus
	logger *slog.Logger
}

// NewService returns a service for the transcript at path. bus may be nil.
func NewService(path string, bus *eventbus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{path: path, bus: bus, logger: logger}
}

// Load reads the transcript.
func (s *Service) Load() (*Transcript, error) {
	var t Transcript
	if err := store.LoadJSON(s.path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindAndReplace replaces across segments and notes while holding the file
// lock from the read to the write. Nothing is written when the pattern is
// invalid or nothing changed.
func (s *Service) FindAndReplace(ctx context.Context, query, replacement string, opts search.ReplaceOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		t       Transcript
		changed int
		dirty   bool
	)
	err := store.UpdateJSON(ctx, s.path, &t, func() (bool, error) {
		notesBefore := t.Notes
		n, err := ApplyFindReplace(&t, query, replacement, opts)
		if err != nil {
			return false, fmt.Errorf("replace in transcript: %w", err)
		}
		changed = n
		dirty = n > 0 || t.Notes != notesBefore
		return dirty, nil
	})
	if err != nil {
		return err
	}
	if !dirty {
		s.logger.Info("transcript replace found nothing", "path", s.path)
		return nil
	}
	s.logger.Info("transcript updated", "path", s.path, "segments", changed)
	s.bus.Publish(eventbus.TopicNotesUpdated, UpdatedEvent{Path: s.path, Segments: changed, Notes: t.Notes})
	return nil
}

// SaveNotes stores notes in the transcript under the file lock. It satisfies
// editor.Saver through editor.SaverFunc so the viewer can edit a transcript's
// notes directly.
func (s *Service) SaveNotes(ctx context.Context, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t Transcript
	err := store.UpdateJSON(ctx, s.path, &t, func() (bool, error) {
		if t.Notes == notes {
			return false, nil
		}
		t.Notes = notes
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	s.logger.Debug("transcript notes saved", "path", s.path)
	return nil
}
