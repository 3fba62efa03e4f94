package search

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/kk-code-lab/notefind/internal/document"
	"golang.org/x/text/unicode/norm"
)

// Finder computes the match set for a search configuration.
type Finder struct {
	fuzzy  *FuzzyMatcher
	logger *slog.Logger
}

// FinderOption configures a Finder.
type FinderOption func(*Finder)

// WithFuzzyThreshold sets the fuzzy edit ratio.
func WithFuzzyThreshold(threshold float64) FinderOption {
	return func(f *Finder) {
		f.fuzzy = NewFuzzyMatcher(threshold)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) FinderOption {
	return func(f *Finder) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFinder creates a Finder with default settings.
func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{
		fuzzy:  NewFuzzyMatcher(DefaultFuzzyThreshold),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FuzzyThreshold reports the active fuzzy edit ratio.
func (f *Finder) FuzzyThreshold() float64 {
	return f.fuzzy.Threshold()
}

// Find returns the matches for cfg over runs, sorted by Start. An empty or
// whitespace-only query yields no matches. Regex compilation failures wrap
// ErrInvalidPattern; matcher panics are recovered as ErrEngineFailure.
func (f *Finder) Find(runs []document.Run, cfg Config) (matches []Match, err error) {
	if cfg.Empty() || len(runs) == 0 {
		return nil, nil
	}
	query := norm.NFC.String(cfg.Query)

	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("search engine panic", "mode", cfg.Mode().String(), "panic", r)
			matches = nil
			err = fmt.Errorf("%w: %v", ErrEngineFailure, r)
		}
	}()

	switch cfg.Mode() {
	case ModeRegex:
		matches, err = f.findRegex(runs, query, cfg.CaseSensitive)
	case ModeFuzzy:
		matches = f.findFuzzy(runs, query, cfg.CaseSensitive)
	default:
		matches = f.findExact(runs, query, cfg.CaseSensitive)
	}
	if err != nil {
		return nil, err
	}

	sortMatches(matches)
	f.logger.Debug("search complete",
		"mode", cfg.Mode().String(),
		"case_sensitive", cfg.CaseSensitive,
		"runs", len(runs),
		"matches", len(matches))
	return matches, nil
}

func (f *Finder) findExact(runs []document.Run, query string, caseSensitive bool) []Match {
	needle := []rune(query)
	var out []Match
	for _, run := range runs {
		for _, m := range exactMatches([]rune(run.Text), needle, caseSensitive) {
			m.Start += run.Offset
			out = append(out, m)
		}
	}
	return out
}

func (f *Finder) findFuzzy(runs []document.Run, query string, caseSensitive bool) []Match {
	pattern := []rune(query)
	if !caseSensitive {
		pattern = foldRunes(pattern)
	}
	var out []Match
	for _, run := range runs {
		text := []rune(run.Text)
		if !caseSensitive {
			text = foldRunes(text)
		}
		for _, m := range f.fuzzy.FindAll(text, pattern) {
			m.Start += run.Offset
			out = append(out, m)
		}
	}
	return out
}

func (f *Finder) findRegex(runs []document.Run, query string, caseSensitive bool) ([]Match, error) {
	re, err := compilePattern(query, caseSensitive)
	if err != nil {
		return nil, err
	}
	var out []Match
	for _, run := range runs {
		for _, m := range regexMatches(re, run.Text) {
			m.Start += run.Offset
			out = append(out, m)
		}
	}
	return out, nil
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
}
