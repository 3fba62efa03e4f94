package view

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/session"
	"github.com/kk-code-lab/notefind/internal/textutil"
)

// Draw renders the whole screen.
func (v *Viewer) Draw() {
	st := v.sess.State()
	v.syncDocument()
	v.followCurrent(st)

	v.screen.Clear()
	v.screen.HideCursor()
	width, height := v.screen.Size()
	body := v.bodyHeight()

	for row := 0; row < body; row++ {
		idx := v.scroll + row
		if idx >= len(v.lines) {
			break
		}
		v.drawLine(row, width, v.lines[idx], st)
	}
	if st.Open && height >= 2 {
		v.drawPanel(height-2, width, st)
	}
	if height >= 1 {
		v.drawStatus(height-1, width)
	}
	v.screen.Show()
}

// drawLine draws one notes line, one grapheme cluster per cell group.
func (v *Viewer) drawLine(y, width int, line document.Line, st session.State) {
	x := 0
	offset := line.Start
	g := uniseg.NewGraphemes(line.Text)
	for g.Next() && x < width {
		cluster := g.Runes()
		style := v.styleAt(offset, st)
		offset += len(cluster)

		if cluster[0] == '\t' {
			n := textutil.TabAdvance(x, textutil.DefaultTabWidth)
			for i := 0; i < n && x < width; i++ {
				v.screen.SetContent(x, y, ' ', nil, style)
				x++
			}
			continue
		}

		w := textutil.ClusterWidth(cluster)
		if x+w > width {
			break
		}
		var comb []rune
		if len(cluster) > 1 {
			comb = make([]rune, len(cluster)-1)
			for i, r := range cluster[1:] {
				comb[i] = textutil.CellRune(r)
			}
		}
		v.screen.SetContent(x, y, textutil.CellRune(cluster[0]), comb, style)
		x += w
	}
}

// styleAt returns the style for the rune at offset: match highlights win over
// block styling.
func (v *Viewer) styleAt(offset int, st session.State) tcell.Style {
	if m, ok := st.CurrentMatch(); ok && offset >= m.Start && offset < m.End() {
		return v.theme.CurrentMatch
	}
	if inMatch(st.Matches, offset) {
		return v.theme.Match
	}
	return v.blockStyle(offset)
}

// inMatch reports whether offset falls inside any match. Match ends are
// non-decreasing in every mode, so a binary search on End suffices.
func inMatch(matches []search.Match, offset int) bool {
	i := sort.Search(len(matches), func(i int) bool { return matches[i].End() > offset })
	return i < len(matches) && matches[i].Start <= offset
}

func (v *Viewer) blockStyle(offset int) tcell.Style {
	i := sort.Search(len(v.runs), func(i int) bool { return v.runs[i].End() > offset })
	if i >= len(v.runs) {
		return v.theme.Text
	}
	run := v.runs[i]
	switch run.Block {
	case document.KindCodeBlock:
		return v.theme.Code
	case document.KindHeading:
		if run.Leaf == document.KindMarkup {
			return v.theme.Markup
		}
		return v.theme.Heading
	case document.KindBlockquote:
		if run.Leaf == document.KindMarkup {
			return v.theme.Markup
		}
		return v.theme.Quote
	}
	if run.Leaf == document.KindMarkup {
		return v.theme.Markup
	}
	return v.theme.Text
}

// drawPanel draws the find and replace fields with the mode toggles and the
// match counter.
func (v *Viewer) drawPanel(y, width int, st session.State) {
	for x := 0; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, v.theme.Panel)
	}

	x := v.drawText(0, y, width, " Find: ", v.theme.PanelLabel)
	query := textutil.SanitizeTerminalText(st.Config.Query)
	x = v.drawText(x, y, width, query, v.theme.Panel)
	if v.focus == fieldQuery {
		v.screen.ShowCursor(x, y)
	}

	x = v.drawText(x, y, width, "  Replace: ", v.theme.PanelLabel)
	replacement := textutil.SanitizeTerminalText(st.Replacement)
	x = v.drawText(x, y, width, replacement, v.theme.Panel)
	if v.focus == fieldReplace {
		v.screen.ShowCursor(x, y)
	}

	x = v.drawText(x, y, width, "  ", v.theme.Panel)
	x = v.drawToggle(x, y, width, "Aa", st.Config.CaseSensitive)
	x = v.drawToggle(x, y, width, "~", st.Config.Fuzzy)
	x = v.drawToggle(x, y, width, ".*", st.Config.Regex)

	counter := matchCounter(st)
	if counter != "" {
		cx := width - textutil.DisplayWidth(counter) - 1
		if cx > x {
			v.drawText(cx, y, width, counter, v.theme.Panel)
		}
	}
}

func (v *Viewer) drawToggle(x, y, width int, label string, on bool) int {
	style := v.theme.ToggleOff
	if on {
		style = v.theme.ToggleOn
	}
	x = v.drawText(x, y, width, "["+label+"]", style)
	return v.drawText(x, y, width, " ", v.theme.Panel)
}

func matchCounter(st session.State) string {
	switch {
	case st.Submitting:
		return "replacing…"
	case st.Config.Empty():
		return ""
	case len(st.Matches) == 0:
		return "No results"
	default:
		return fmt.Sprintf("%d/%d", st.Current+1, len(st.Matches))
	}
}

func (v *Viewer) drawStatus(y, width int) {
	style := v.theme.Status
	if v.statusErr {
		style = v.theme.StatusError
	}
	for x := 0; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}

	left := " " + v.title
	if v.ed.Content().Dirty() {
		left += " [+]"
	}
	if v.status != "" {
		left += "  " + v.status
	}
	hint := "^F find  ^S save  ^Q quit "
	if v.sess.State().Open {
		hint = "F2 case  F3 fuzzy  F4 regex  ^R replace  ^A all  Esc close "
	}
	left = textutil.Truncate(textutil.SanitizeTerminalText(left), width)
	x := v.drawText(0, y, width, left, style)
	if hx := width - textutil.DisplayWidth(hint); hx > x+1 {
		v.drawText(hx, y, width, hint, style)
	}
}

// drawText draws single-line text clipped at maxX and returns the next column.
func (v *Viewer) drawText(x, y, maxX int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		cluster := g.Runes()
		w := textutil.ClusterWidth(cluster)
		if x+w > maxX {
			break
		}
		v.screen.SetContent(x, y, cluster[0], cluster[1:], style)
		x += w
	}
	return x
}
