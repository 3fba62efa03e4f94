package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth is the tab stop interval used when drawing notes.
const DefaultTabWidth = 4

const ellipsis = "…"

// DisplayWidth reports the printable width of text, measuring grapheme
// clusters so emoji sequences count once.
func DisplayWidth(text string) int {
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		width += ClusterWidth(g.Runes())
	}
	return width
}

// ClusterWidth returns the cell width of one grapheme cluster. Clusters that
// would occupy no cells still take one so the cursor always advances.
func ClusterWidth(cluster []rune) int {
	if len(cluster) == 0 {
		return 0
	}
	w := uniseg.StringWidth(string(cluster))
	if w <= 0 {
		w = runewidth.RuneWidth(cluster[0])
	}
	if w <= 0 {
		w = 1
	}
	return w
}

// TabAdvance returns the number of cells a tab occupies at column.
func TabAdvance(column, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return tabWidth - column%tabWidth
}

// Truncate clips text to maxWidth cells, ending with an ellipsis when cut.
func Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if DisplayWidth(text) <= maxWidth {
		return text
	}
	ellipsisWidth := runewidth.StringWidth(ellipsis)
	if maxWidth <= ellipsisWidth {
		return ellipsis
	}

	available := maxWidth - ellipsisWidth
	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := ClusterWidth(g.Runes())
		if width+w > available {
			break
		}
		b.WriteString(g.Str())
		width += w
	}
	b.WriteString(ellipsis)
	return b.String()
}
