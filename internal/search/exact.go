package search

import (
	"unicode"
)

// exactMatches reports every occurrence of needle in text, including
// overlapping ones: after a hit at i the scan resumes at i+1.
// Offsets are rune indexes relative to text.
func exactMatches(text, needle []rune, caseSensitive bool) []Match {
	if len(needle) == 0 || len(text) < len(needle) {
		return nil
	}
	if !caseSensitive {
		needle = foldRunes(needle)
	}

	var matches []Match
	for i := 0; i+len(needle) <= len(text); i++ {
		if matchesAt(text, i, needle, caseSensitive) {
			matches = append(matches, Match{Start: i, Length: len(needle)})
		}
	}
	return matches
}

// matchesAt compares needle against text at start. The needle must already
// be folded when caseSensitive is false.
func matchesAt(text []rune, start int, needle []rune, caseSensitive bool) bool {
	for j, nr := range needle {
		hr := text[start+j]
		if !caseSensitive {
			hr = unicode.ToLower(hr)
		}
		if hr != nr {
			return false
		}
	}
	return true
}

// foldRunes lowercases rune by rune so the rune count never changes.
func foldRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
