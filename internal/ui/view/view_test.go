package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/notefind/internal/editor"
	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/session"
)

type harness struct {
	screen tcell.SimulationScreen
	ed     *editor.Editor
	bus    *eventbus.Bus
	view   *Viewer
}

func newHarness(t *testing.T, text string, width, height int, opts ...Option) *harness {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)

	bus := eventbus.New(nil)
	ed := editor.New(nil, text, editor.WithDebounce(time.Hour), editor.WithBus(bus))
	t.Cleanup(ed.Close)

	v := New(screen, ed, bus, append([]Option{WithTitle("notes.md")}, opts...)...)
	t.Cleanup(v.Close)
	v.Draw()
	return &harness{screen: screen, ed: ed, bus: bus, view: v}
}

func (h *harness) key(k tcell.Key, mod tcell.ModMask) bool {
	quit := h.view.HandleEvent(tcell.NewEventKey(k, 0, mod))
	h.view.Draw()
	return quit
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.view.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	h.view.Draw()
}

func (h *harness) row(y int) string {
	w, _ := h.screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := h.screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
	}
	return strings.TrimRight(b.String(), " ")
}

func (h *harness) style(x, y int) tcell.Style {
	_, _, style, _ := h.screen.GetContent(x, y)
	return style
}

func TestDrawsNotesAndStatus(t *testing.T) {
	h := newHarness(t, "# Agenda\n- budget\n- hiring", 40, 6)
	assert.Equal(t, "# Agenda", h.row(0))
	assert.Equal(t, "- budget", h.row(1))
	assert.Equal(t, "- hiring", h.row(2))
	assert.Contains(t, h.row(5), "notes.md")
	assert.Equal(t, h.view.theme.Heading, h.style(2, 0))
	assert.Equal(t, h.view.theme.Markup, h.style(0, 0))
}

func TestFindHighlightsMatches(t *testing.T) {
	h := newHarness(t, "foo bar\nbaz foo", 60, 6)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("foo")

	st := h.view.Session().State()
	require.Len(t, st.Matches, 2)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, h.view.theme.CurrentMatch, h.style(0, 0))
	assert.Equal(t, h.view.theme.Match, h.style(4, 1))
	assert.Equal(t, h.view.theme.Text, h.style(4, 0))
	assert.Contains(t, h.row(4), "Find: foo")
	assert.Contains(t, h.row(4), "1/2")

	h.key(tcell.KeyEnter, tcell.ModNone)
	assert.Equal(t, 1, h.view.Session().State().Current)
	assert.Equal(t, h.view.theme.CurrentMatch, h.style(4, 1))
	assert.Contains(t, h.row(4), "2/2")

	h.key(tcell.KeyEnter, tcell.ModNone)
	assert.Equal(t, 0, h.view.Session().State().Current)
	h.key(tcell.KeyUp, tcell.ModNone)
	assert.Equal(t, 1, h.view.Session().State().Current)
}

func TestNoResultsCounter(t *testing.T) {
	h := newHarness(t, "alpha", 60, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("zzz")
	assert.Contains(t, h.row(3), "No results")

	h.key(tcell.KeyBackspace2, tcell.ModNone)
	assert.Equal(t, "zz", h.view.Session().State().Config.Query)
}

func TestToggleKeys(t *testing.T) {
	h := newHarness(t, "x", 60, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)

	h.key(tcell.KeyF2, tcell.ModNone)
	h.key(tcell.KeyF3, tcell.ModNone)
	cfg := h.view.Session().State().Config
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, search.ModeFuzzy, cfg.Mode())

	h.key(tcell.KeyF4, tcell.ModNone)
	assert.Equal(t, search.ModeRegex, h.view.Session().State().Config.Mode())
}

func TestReplaceCurrentUpdatesEditor(t *testing.T) {
	h := newHarness(t, "foo bar foo", 60, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("foo")
	h.key(tcell.KeyTab, tcell.ModNone)
	h.typeText("baz")
	h.key(tcell.KeyDown, tcell.ModNone)

	h.key(tcell.KeyCtrlR, tcell.ModCtrl)
	assert.Equal(t, "foo bar baz", h.ed.Content().Local)
	assert.Equal(t, "foo bar baz", h.row(0))

	st := h.view.Session().State()
	require.Len(t, st.Matches, 1)
	assert.Equal(t, 0, st.Current)
	assert.True(t, h.ed.Content().Dirty())
}

func TestReplaceIsInertWithEmptyQuery(t *testing.T) {
	h := newHarness(t, "foo", 40, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.key(tcell.KeyCtrlR, tcell.ModCtrl)
	h.key(tcell.KeyCtrlA, tcell.ModCtrl)
	assert.Equal(t, "foo", h.ed.Content().Local)
	assert.False(t, h.ed.Content().Dirty())
}

func TestReplaceAllClosesPanel(t *testing.T) {
	h := newHarness(t, "Bob met bob", 60, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("bob")
	h.key(tcell.KeyTab, tcell.ModNone)
	h.typeText("Rob")
	h.key(tcell.KeyCtrlA, tcell.ModCtrl)

	require.Eventually(t, func() bool {
		return h.ed.Content().Local == "Rob met Rob"
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		st := h.view.Session().State()
		return !st.Open && !st.Submitting
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, h.view.Session().State().Config.Query)
}

func TestReplaceAllFailureShowsError(t *testing.T) {
	failing := session.FindReplaceFunc(func(context.Context, string, string, search.ReplaceOptions) error {
		return errors.New("backend down")
	})
	h := newHarness(t, "foo", 60, 5, WithReplacer(failing))
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("foo")
	h.key(tcell.KeyCtrlA, tcell.ModCtrl)

	require.Eventually(t, func() bool { return !h.view.Session().State().Submitting }, 2*time.Second, 5*time.Millisecond)
	h.view.HandleEvent(tcell.NewEventInterrupt(replaceDone{err: errors.New("backend down")}))
	h.view.Draw()
	assert.Contains(t, h.row(4), "Replace failed: backend down")
	assert.True(t, h.view.Session().State().Open)
	assert.Equal(t, "foo", h.view.Session().State().Config.Query)
}

func TestScrollFollowsCurrentMatch(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("line %02d", i))
	}
	lines[25] = "target here"
	h := newHarness(t, strings.Join(lines, "\n"), 40, 10)

	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("target")

	found := false
	for y := 0; y < 8; y++ {
		if h.row(y) == "target here" {
			found = true
		}
	}
	assert.True(t, found, "current match should be scrolled into view")
}

func TestEscClosesPanelAndQuitKeys(t *testing.T) {
	h := newHarness(t, "foo", 40, 5)
	h.key(tcell.KeyCtrlF, tcell.ModCtrl)
	h.typeText("foo")
	h.key(tcell.KeyEscape, tcell.ModNone)
	st := h.view.Session().State()
	assert.False(t, st.Open)
	assert.Empty(t, st.Matches)

	assert.True(t, h.view.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, h.key(tcell.KeyCtrlQ, tcell.ModCtrl))
}

func TestExternalChangeRedraws(t *testing.T) {
	h := newHarness(t, "old text", 40, 5)
	require.True(t, h.ed.Receive("new text"))
	h.view.Draw()
	assert.Equal(t, "new text", h.row(0))
}

func TestSaveStatusFromBus(t *testing.T) {
	h := newHarness(t, "x", 60, 5)
	h.view.HandleEvent(tcell.NewEventInterrupt(statusUpdate{text: "Save failed: disk full", isErr: true}))
	h.view.Draw()
	assert.Contains(t, h.row(4), "Save failed: disk full")
	assert.Equal(t, h.view.theme.StatusError, h.style(0, 4))
}
