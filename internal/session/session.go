package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/search"
)

var (
	// ErrNoCurrentMatch is returned by ReplaceCurrent when nothing is selected.
	ErrNoCurrentMatch = errors.New("no current match")
	// ErrReplaceInFlight is returned while a replace-all is still running.
	ErrReplaceInFlight = errors.New("replace already in progress")
	// ErrNoReplacer is returned by ReplaceAll when no replacer is configured.
	ErrNoReplacer = errors.New("find and replace is not available")
)

// State is a snapshot of the search session.
type State struct {
	Open        bool
	Config      search.Config
	Replacement string
	Matches     []search.Match
	Current     int
	Submitting  bool
}

// CurrentMatch returns the selected match, if any.
func (s State) CurrentMatch() (search.Match, bool) {
	if s.Current < 0 || s.Current >= len(s.Matches) {
		return search.Match{}, false
	}
	return s.Matches[s.Current], true
}

// CanReplace reports whether replace actions are enabled.
func (s State) CanReplace() bool {
	return !s.Config.Empty() && !s.Submitting
}

// Observer is notified after the match set or cursor changes, once
// recomputation and clamping are both complete.
type Observer func(State)

// ContentFunc receives new document text produced by ReplaceCurrent.
type ContentFunc func(newText string)

// FindReplacer performs a replace-all outside the session, for example over
// the stored notes or a full transcript.
type FindReplacer interface {
	FindAndReplace(ctx context.Context, query, replacement string, opts search.ReplaceOptions) error
}

// FindReplaceFunc adapts a function to FindReplacer.
type FindReplaceFunc func(ctx context.Context, query, replacement string, opts search.ReplaceOptions) error

// FindAndReplace calls f.
func (f FindReplaceFunc) FindAndReplace(ctx context.Context, query, replacement string, opts search.ReplaceOptions) error {
	return f(ctx, query, replacement, opts)
}

// Option configures a Session.
type Option func(*Session)

// WithObserver registers the change observer.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observer = fn }
}

// WithContentFunc registers the content-changed callback.
func WithContentFunc(fn ContentFunc) Option {
	return func(s *Session) { s.onContent = fn }
}

// WithFindReplacer registers the replace-all implementation.
func WithFindReplacer(r FindReplacer) Option {
	return func(s *Session) { s.replacer = r }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session owns the match set and the current match index for one open
// search panel. All mutations replace the match set wholesale.
type Session struct {
	mu          sync.Mutex
	finder      *search.Finder
	doc         *document.Document
	open        bool
	cfg         search.Config
	replacement string
	matches     []search.Match
	current     int
	submitting  bool

	observer  Observer
	onContent ContentFunc
	replacer  FindReplacer
	logger    *slog.Logger
}

// New creates a closed session. A nil finder uses defaults.
func New(finder *search.Finder, opts ...Option) *Session {
	if finder == nil {
		finder = search.NewFinder()
	}
	s := &Session{
		finder:  finder,
		current: -1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// update runs fn under the lock and, when fn reports a change, notifies the
// observer with a snapshot taken after fn completed.
func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snap State
	if changed {
		snap = s.snapshotLocked()
	}
	observer := s.observer
	s.mu.Unlock()

	if changed && observer != nil {
		observer(snap)
	}
}

func (s *Session) snapshotLocked() State {
	return State{
		Open:        s.open,
		Config:      s.cfg,
		Replacement: s.replacement,
		Matches:     append([]search.Match(nil), s.matches...),
		Current:     s.current,
		Submitting:  s.submitting,
	}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Document returns the document the current matches were computed against.
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Current returns the selected match.
func (s *Session) Current() (search.Match, bool) {
	return s.State().CurrentMatch()
}

// Open shows the search panel and computes matches.
func (s *Session) Open() {
	s.update(func() bool {
		s.open = true
		s.recomputeLocked()
		return true
	})
}

// Close hides the panel and discards the match set.
func (s *Session) Close() {
	s.update(func() bool {
		s.open = false
		s.matches = nil
		s.current = -1
		return true
	})
}

// SetDocument replaces the searched document.
func (s *Session) SetDocument(doc *document.Document) {
	s.update(func() bool {
		s.doc = doc
		s.recomputeLocked()
		return true
	})
}

// SetQuery changes the query text.
func (s *Session) SetQuery(query string) {
	s.setConfig(func(cfg search.Config) search.Config {
		cfg.Query = query
		return cfg
	})
}

// SetCaseSensitive toggles case sensitivity.
func (s *Session) SetCaseSensitive(on bool) {
	s.setConfig(func(cfg search.Config) search.Config {
		cfg.CaseSensitive = on
		return cfg
	})
}

// SetFuzzy toggles fuzzy mode; enabling it disables regex mode.
func (s *Session) SetFuzzy(on bool) {
	s.setConfig(func(cfg search.Config) search.Config { return cfg.WithFuzzy(on) })
}

// SetRegex toggles regex mode; enabling it disables fuzzy mode.
func (s *Session) SetRegex(on bool) {
	s.setConfig(func(cfg search.Config) search.Config { return cfg.WithRegex(on) })
}

// SetMode switches the match mode.
func (s *Session) SetMode(mode search.Mode) {
	s.setConfig(func(cfg search.Config) search.Config { return cfg.WithMode(mode) })
}

// SetConfig replaces the whole configuration.
func (s *Session) SetConfig(cfg search.Config) {
	if cfg.Fuzzy && cfg.Regex {
		cfg = cfg.WithRegex(true)
	}
	s.setConfig(func(search.Config) search.Config { return cfg })
}

// SetReplacement changes the replacement text. Matches are unaffected.
func (s *Session) SetReplacement(text string) {
	s.mu.Lock()
	s.replacement = text
	s.mu.Unlock()
}

func (s *Session) setConfig(change func(search.Config) search.Config) {
	s.update(func() bool {
		next := change(s.cfg)
		if next == s.cfg {
			return false
		}
		s.cfg = next
		s.recomputeLocked()
		return true
	})
}

// recomputeLocked rebuilds the match set from scratch and clamps the cursor.
func (s *Session) recomputeLocked() {
	var matches []search.Match
	if s.open && !s.cfg.Empty() && s.doc != nil {
		found, err := s.finder.Find(document.Scan(s.doc), s.cfg)
		if err != nil {
			s.logger.Debug("search failed; showing no matches",
				"mode", s.cfg.Mode().String(),
				"error", err)
		} else {
			matches = found
		}
	}
	s.matches = matches
	s.current = clampCursor(s.current, len(matches))
}

func clampCursor(current, size int) int {
	switch {
	case size == 0:
		return -1
	case current < 0:
		return 0
	case current >= size:
		return size - 1
	default:
		return current
	}
}
