package search

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// compilePattern compiles a regex query. Multi-line mode is always on;
// case folding follows caseSensitive.
func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	flags := "(?m)"
	if !caseSensitive {
		flags = "(?mi)"
	}
	re, err := regexp.Compile(flags + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return re, nil
}

// regexMatches applies re to text and reports rune offsets relative to text.
// Zero-length matches are skipped; the regexp engine already advances one
// position past them.
func regexMatches(re *regexp.Regexp, text string) []Match {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(locs))
	runeAt := 0
	byteAt := 0
	for _, loc := range locs {
		if loc[1] == loc[0] {
			continue
		}
		runeAt += utf8.RuneCountInString(text[byteAt:loc[0]])
		byteAt = loc[0]
		length := utf8.RuneCountInString(text[loc[0]:loc[1]])
		matches = append(matches, Match{Start: runeAt, Length: length})
	}
	return matches
}
