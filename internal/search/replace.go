package search

import (
	"regexp"
	"strings"
)

// ReplaceAt splices replacement over m in text. Offsets are rune indexes and
// are clamped to the text bounds.
func ReplaceAt(text string, m Match, replacement string) string {
	runes := []rune(text)
	start := min(max(m.Start, 0), len(runes))
	end := min(max(m.End(), start), len(runes))

	var b strings.Builder
	b.Grow(len(text) + len(replacement))
	b.WriteString(string(runes[:start]))
	b.WriteString(replacement)
	b.WriteString(string(runes[end:]))
	return b.String()
}

// ReplacePattern compiles query for replace-all. Literal queries are quoted.
func ReplacePattern(query string, opts ReplaceOptions) (*regexp.Regexp, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	pattern := query
	if !opts.UseRegex {
		pattern = regexp.QuoteMeta(query)
	}
	return compilePattern(pattern, opts.CaseSensitive)
}

// ReplaceWith replaces every non-empty match of re in text and returns the
// number of replacements. Zero-width matches are left alone, as they are when
// searching. Regex replacements expand $1 style references; literal ones are
// inserted verbatim.
func ReplaceWith(re *regexp.Regexp, text, replacement string, useRegex bool) (string, int) {
	var out []byte
	last, count := 0, 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if loc[1] == loc[0] {
			continue
		}
		out = append(out, text[last:loc[0]]...)
		if useRegex {
			out = re.ExpandString(out, replacement, text, loc)
		} else {
			out = append(out, replacement...)
		}
		last = loc[1]
		count++
	}
	if count == 0 {
		return text, 0
	}
	out = append(out, text[last:]...)
	return string(out), count
}

// ReplaceText replaces every occurrence of query in text.
func ReplaceText(text, query, replacement string, opts ReplaceOptions) (string, int, error) {
	re, err := ReplacePattern(query, opts)
	if err != nil {
		return text, 0, err
	}
	out, count := ReplaceWith(re, text, replacement, opts.UseRegex)
	return out, count, nil
}
