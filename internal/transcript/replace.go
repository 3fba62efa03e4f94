package transcript

import (
	"github.com/kk-code-lab/notefind/internal/search"
)

// ApplyFindReplace replaces find in every segment and in the notes. It
// returns the number of segments that changed. The flat Text is rebuilt only
// when a segment changed.
func ApplyFindReplace(t *Transcript, find, replacement string, opts search.ReplaceOptions) (int, error) {
	re, err := search.ReplacePattern(find, opts)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range t.Segments {
		out, n := search.ReplaceWith(re, t.Segments[i].Text, replacement, opts.UseRegex)
		if n > 0 {
			t.Segments[i].Text = out
			changed++
		}
	}
	if changed > 0 {
		t.Text = JoinSegments(t.Segments)
	}
	if t.Notes != "" {
		t.Notes, _ = search.ReplaceWith(re, t.Notes, replacement, opts.UseRegex)
	}
	return changed, nil
}
