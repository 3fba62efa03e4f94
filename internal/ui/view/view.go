// Package view is the terminal notes viewer with its find and replace panel.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/notefind/internal/document"
	"github.com/kk-code-lab/notefind/internal/editor"
	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
	"github.com/kk-code-lab/notefind/internal/session"
	"github.com/kk-code-lab/notefind/internal/textutil"
)

type field int

const (
	fieldQuery field = iota
	fieldReplace
)

// Interrupt payloads posted to the screen from other goroutines.
type (
	stateChanged struct{}
	statusUpdate struct {
		text  string
		isErr bool
	}
	replaceDone struct{ err error }
)

// Option configures a Viewer.
type Option func(*Viewer)

// WithFinder sets the finder used by the session.
func WithFinder(f *search.Finder) Option {
	return func(v *Viewer) { v.finder = f }
}

// WithSearchConfig sets the initial toggles for the find panel.
func WithSearchConfig(cfg search.Config) Option {
	return func(v *Viewer) { v.initial = cfg }
}

// WithReplacer overrides the replace-all target. By default replace-all runs
// against the editor's notes.
func WithReplacer(r session.FindReplacer) Option {
	return func(v *Viewer) { v.replacer = r }
}

// WithTitle sets the name shown in the status line.
func WithTitle(title string) Option {
	return func(v *Viewer) { v.title = title }
}

// WithTheme overrides the default styles.
func WithTheme(theme Theme) Option {
	return func(v *Viewer) { v.theme = theme }
}

// WithLogger sets the viewer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Viewer draws the notes and routes keys to the search session.
type Viewer struct {
	screen   tcell.Screen
	ed       *editor.Editor
	bus      *eventbus.Bus
	sess     *session.Session
	finder   *search.Finder
	replacer session.FindReplacer
	initial  search.Config
	theme    Theme
	title    string
	logger   *slog.Logger
	subs     []eventbus.Subscription

	ctx       context.Context
	focus     field
	scroll    int
	followed  search.Match
	following bool
	status    string
	statusErr bool

	docText string
	runs    []document.Run
	lines   []document.Line
}

// New builds a viewer over ed. The editor must publish its changes on bus.
func New(screen tcell.Screen, ed *editor.Editor, bus *eventbus.Bus, opts ...Option) *Viewer {
	v := &Viewer{
		screen: screen,
		ed:     ed,
		bus:    bus,
		theme:  DefaultTheme(),
		title:  "notes",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.replacer == nil {
		v.replacer = ed
	}
	v.sess = session.New(v.finder,
		session.WithObserver(func(session.State) { v.post(stateChanged{}) }),
		session.WithContentFunc(ed.Edit),
		session.WithFindReplacer(v.replacer),
		session.WithLogger(v.logger),
	)
	v.sess.SetConfig(v.initial)
	v.sess.SetDocument(document.Parse(ed.Content().Local))

	v.subs = append(v.subs,
		bus.Subscribe(eventbus.TopicContentChanged, func(ev eventbus.Event) {
			if text, ok := ev.Payload.(string); ok {
				v.sess.SetDocument(document.Parse(text))
			}
		}),
		bus.Subscribe(eventbus.TopicContentSaved, func(eventbus.Event) {
			v.post(statusUpdate{text: "Saved"})
		}),
		bus.Subscribe(eventbus.TopicSaveFailed, func(ev eventbus.Event) {
			msg := "Save failed"
			if se, ok := ev.Payload.(editor.SaveEvent); ok && se.Err != nil {
				msg = "Save failed: " + se.Err.Error()
			}
			v.post(statusUpdate{text: msg, isErr: true})
		}),
		bus.Subscribe(eventbus.TopicNotesUpdated, func(eventbus.Event) {
			v.post(statusUpdate{text: "Transcript updated"})
		}),
	)
	return v
}

// Session exposes the search session driving the panel.
func (v *Viewer) Session() *session.Session {
	return v.sess
}

// Close releases bus subscriptions.
func (v *Viewer) Close() {
	for _, sub := range v.subs {
		v.bus.Unsubscribe(sub)
	}
	v.subs = nil
}

func (v *Viewer) post(data any) {
	if err := v.screen.PostEvent(tcell.NewEventInterrupt(data)); err != nil {
		v.logger.Debug("dropping screen event", "error", err)
	}
}

// Run processes terminal events until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.ctx = ctx
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if v.HandleEvent(ev) {
				return nil
			}
			v.Draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventInterrupt:
		v.handleInterrupt(ev.Data())
	case *tcell.EventKey:
		return v.handleKey(ev)
	}
	return false
}

func (v *Viewer) handleInterrupt(data any) {
	switch msg := data.(type) {
	case statusUpdate:
		v.setStatus(msg.text, msg.isErr)
	case replaceDone:
		if msg.err != nil {
			v.setStatus(replaceError(msg.err), true)
			return
		}
		v.focus = fieldQuery
		v.setStatus("Replaced all occurrences", false)
	}
}

func replaceError(err error) string {
	switch {
	case errors.Is(err, search.ErrInvalidPattern):
		return "Invalid pattern"
	default:
		return fmt.Sprintf("Replace failed: %v", err)
	}
}

func (v *Viewer) setStatus(text string, isErr bool) {
	v.status = text
	v.statusErr = isErr
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlS:
		v.flush()
		return false
	case tcell.KeyCtrlF:
		v.focus = fieldQuery
		v.sess.Open()
		return false
	case tcell.KeyPgDn:
		v.scrollBy(v.bodyHeight())
		return false
	case tcell.KeyPgUp:
		v.scrollBy(-v.bodyHeight())
		return false
	}

	st := v.sess.State()
	if !st.Open {
		return v.handleBrowseKey(ev)
	}
	v.handlePanelKey(ev, st)
	return false
}

func (v *Viewer) handleBrowseKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyDown:
		v.scrollBy(1)
	case tcell.KeyUp:
		v.scrollBy(-1)
	case tcell.KeyHome:
		v.scroll = 0
	case tcell.KeyEnd:
		v.scrollBy(len(v.lines))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case '/':
			v.focus = fieldQuery
			v.sess.Open()
		case 'j':
			v.scrollBy(1)
		case 'k':
			v.scrollBy(-1)
		}
	}
	return false
}

func (v *Viewer) handlePanelKey(ev *tcell.EventKey, st session.State) {
	switch ev.Key() {
	case tcell.KeyEscape:
		v.sess.Close()
	case tcell.KeyEnter:
		if ev.Modifiers()&tcell.ModShift != 0 {
			v.sess.Previous()
		} else {
			v.sess.Next()
		}
	case tcell.KeyDown:
		v.sess.Next()
	case tcell.KeyUp:
		v.sess.Previous()
	case tcell.KeyTab, tcell.KeyBacktab:
		if v.focus == fieldQuery {
			v.focus = fieldReplace
		} else {
			v.focus = fieldQuery
		}
	case tcell.KeyF2:
		v.sess.SetCaseSensitive(!st.Config.CaseSensitive)
	case tcell.KeyF3:
		v.sess.SetFuzzy(!st.Config.Fuzzy)
	case tcell.KeyF4:
		v.sess.SetRegex(!st.Config.Regex)
	case tcell.KeyCtrlR:
		v.replaceCurrent(st)
	case tcell.KeyCtrlA:
		v.replaceAll(st)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.editField(st, func(r []rune) []rune {
			if len(r) == 0 {
				return r
			}
			return r[:len(r)-1]
		})
	case tcell.KeyCtrlU:
		v.editField(st, func([]rune) []rune { return nil })
	case tcell.KeyRune:
		ch := ev.Rune()
		v.editField(st, func(r []rune) []rune { return append(r, ch) })
	}
}

func (v *Viewer) editField(st session.State, edit func([]rune) []rune) {
	if v.focus == fieldReplace {
		v.sess.SetReplacement(string(edit([]rune(st.Replacement))))
		return
	}
	v.sess.SetQuery(string(edit([]rune(st.Config.Query))))
}

func (v *Viewer) replaceCurrent(st session.State) {
	if !st.CanReplace() {
		return
	}
	if _, err := v.sess.ReplaceCurrent(st.Replacement); err != nil {
		if errors.Is(err, session.ErrNoCurrentMatch) {
			v.setStatus("No match selected", false)
			return
		}
		v.setStatus(replaceError(err), true)
	}
}

func (v *Viewer) replaceAll(st session.State) {
	if !st.CanReplace() {
		return
	}
	v.setStatus("Replacing…", false)
	ctx := v.ctx
	go func() {
		v.post(replaceDone{err: v.sess.ReplaceAll(ctx)})
	}()
}

func (v *Viewer) flush() {
	if err := v.ed.Flush(v.ctx); err != nil {
		v.setStatus("Save failed: "+err.Error(), true)
		return
	}
	if !v.ed.Content().Dirty() {
		v.setStatus("Saved", false)
	}
}

func (v *Viewer) bodyHeight() int {
	_, h := v.screen.Size()
	footer := 1
	if v.sess.State().Open {
		footer = 2
	}
	return max(h-footer, 0)
}

func (v *Viewer) scrollBy(delta int) {
	v.scroll += delta
	v.clampScroll()
}

func (v *Viewer) clampScroll() {
	maxScroll := max(len(v.lines)-v.bodyHeight(), 0)
	v.scroll = min(max(v.scroll, 0), maxScroll)
}

// syncDocument refreshes the cached runs and lines from the session's
// document.
func (v *Viewer) syncDocument() {
	doc := v.sess.Document()
	runs := document.Scan(doc)
	text := document.Flatten(runs)
	if text == v.docText && v.lines != nil {
		return
	}
	v.docText = text
	v.runs = runs
	v.lines = document.Lines(runs)
	if textutil.HasFormattingRunes(text) && v.status == "" {
		v.setStatus("Notes contain hidden formatting characters (shown as ·)", false)
	}
}

// followCurrent scrolls the selected match into view once per selection.
func (v *Viewer) followCurrent(st session.State) {
	m, ok := st.CurrentMatch()
	if !ok {
		v.following = false
		return
	}
	if v.following && m == v.followed {
		return
	}
	v.following = true
	v.followed = m

	line := lineIndex(v.lines, m.Start)
	height := v.bodyHeight()
	switch {
	case line < v.scroll:
		v.scroll = line
	case line >= v.scroll+height:
		v.scroll = line - height/2
	}
	v.clampScroll()
}

// lineIndex returns the line containing rune offset.
func lineIndex(lines []document.Line, offset int) int {
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Start > offset })
	return max(i-1, 0)
}
