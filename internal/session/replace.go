package session

import (
	"context"
	"fmt"

	"github.com/kk-code-lab/notefind/internal/search"
)

// Next moves to the following match, wrapping to the first.
func (s *Session) Next() {
	s.step(1)
}

// Previous moves to the preceding match, wrapping to the last.
func (s *Session) Previous() {
	s.step(-1)
}

func (s *Session) step(delta int) {
	s.update(func() bool {
		n := len(s.matches)
		if n == 0 {
			return false
		}
		s.current = ((s.current+delta)%n + n) % n
		return true
	})
}

// ReplaceCurrent substitutes the selected match in the document's plain text
// and returns the result. The match set is cleared before the content
// callback fires; it is rebuilt once the new document arrives.
func (s *Session) ReplaceCurrent(replacement string) (string, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return "", ErrReplaceInFlight
	}
	if s.current < 0 || s.current >= len(s.matches) || s.doc == nil {
		s.mu.Unlock()
		return "", ErrNoCurrentMatch
	}
	m := s.matches[s.current]
	newText := search.ReplaceAt(s.doc.PlainText(), m, replacement)
	s.matches = nil
	s.current = -1
	snap := s.snapshotLocked()
	observer, onContent := s.observer, s.onContent
	s.mu.Unlock()

	s.logger.Debug("replaced current match", "start", m.Start, "length", m.Length)
	if observer != nil {
		observer(snap)
	}
	if onContent != nil {
		onContent(newText)
	}
	return newText, nil
}

// ReplaceAll delegates a document-wide replace to the configured replacer.
// On success the query, replacement and matches are cleared and the panel
// closes; on failure the session is left as it was so the user can retry.
func (s *Session) ReplaceAll(ctx context.Context) error {
	var (
		query, replacement string
		opts               search.ReplaceOptions
		replacer           FindReplacer
		started            bool
		err                error
	)
	s.update(func() bool {
		switch {
		case s.cfg.Empty():
			err = search.ErrEmptyQuery
		case s.replacer == nil:
			err = ErrNoReplacer
		case s.submitting:
			err = ErrReplaceInFlight
		default:
			s.submitting = true
			query, replacement = s.cfg.Query, s.replacement
			opts = s.cfg.ReplaceOptions()
			replacer = s.replacer
			started = true
		}
		return started
	})
	if !started {
		return err
	}

	err = replacer.FindAndReplace(ctx, query, replacement, opts)

	s.update(func() bool {
		s.submitting = false
		if err != nil {
			return true
		}
		s.cfg.Query = ""
		s.replacement = ""
		s.matches = nil
		s.current = -1
		s.open = false
		return true
	})
	if err != nil {
		s.logger.Warn("replace all failed", "regex", opts.UseRegex, "case_sensitive", opts.CaseSensitive, "error", err)
		return fmt.Errorf("replace all: %w", err)
	}
	s.logger.Info("replace all complete", "query", query)
	return nil
}
