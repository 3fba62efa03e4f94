package search

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidPattern is returned when a regular expression query does not compile.
	ErrInvalidPattern = errors.New("invalid search pattern")
	// ErrEngineFailure is returned when a matcher fails unexpectedly.
	ErrEngineFailure = errors.New("search engine failure")
	// ErrEmptyQuery is returned by replace operations given an empty query.
	ErrEmptyQuery = errors.New("search query is empty")
)

// Match is one occurrence in the flattened document text. Start and Length
// count runes.
type Match struct {
	Start  int
	Length int
}

// End returns the exclusive end offset.
func (m Match) End() int {
	return m.Start + m.Length
}

// Mode selects how the query is interpreted.
type Mode int

const (
	ModeExact Mode = iota
	ModeFuzzy
	ModeRegex
)

func (m Mode) String() string {
	switch m {
	case ModeFuzzy:
		return "fuzzy"
	case ModeRegex:
		return "regex"
	default:
		return "exact"
	}
}

// ParseMode maps a mode name to a Mode. Unknown names report false.
func ParseMode(name string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return ModeExact, true
	case "fuzzy":
		return ModeFuzzy, true
	case "regex", "regexp":
		return ModeRegex, true
	default:
		return ModeExact, false
	}
}

// Config is the live search configuration. Fuzzy and Regex are mutually
// exclusive; use WithFuzzy and WithRegex to change them.
type Config struct {
	Query         string
	CaseSensitive bool
	Fuzzy         bool
	Regex         bool
}

// Mode reports the active match mode.
func (c Config) Mode() Mode {
	switch {
	case c.Regex:
		return ModeRegex
	case c.Fuzzy:
		return ModeFuzzy
	default:
		return ModeExact
	}
}

// WithMode returns a copy of c switched to mode.
func (c Config) WithMode(mode Mode) Config {
	c.Fuzzy = mode == ModeFuzzy
	c.Regex = mode == ModeRegex
	return c
}

// WithFuzzy returns a copy of c with fuzzy set; enabling it clears regex.
func (c Config) WithFuzzy(on bool) Config {
	c.Fuzzy = on
	if on {
		c.Regex = false
	}
	return c
}

// WithRegex returns a copy of c with regex set; enabling it clears fuzzy.
func (c Config) WithRegex(on bool) Config {
	c.Regex = on
	if on {
		c.Fuzzy = false
	}
	return c
}

// Empty reports whether the query has no searchable content.
func (c Config) Empty() bool {
	return strings.TrimSpace(c.Query) == ""
}

// ReplaceOptions are passed to replace-all implementations.
type ReplaceOptions struct {
	CaseSensitive bool
	UseRegex      bool
}

// ReplaceOptions derives replace options from the configuration. Fuzzy mode
// replaces literally.
func (c Config) ReplaceOptions() ReplaceOptions {
	return ReplaceOptions{CaseSensitive: c.CaseSensitive, UseRegex: c.Regex}
}
