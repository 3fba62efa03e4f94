// Package editor keeps the locally edited notes text, saves it after a quiet
// period, and filters out change notifications that merely echo its own saves.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
)

// DefaultDebounce is the quiet period before an edit is saved.
const DefaultDebounce = time.Second

// Content is the editor's view of the notes. Local is what the user sees and
// what search operates on; LastSaved is the last value the store confirmed.
type Content struct {
	Local     string
	LastSaved string
}

// Dirty reports whether Local has not been saved yet.
func (c Content) Dirty() bool {
	return c.Local != c.LastSaved
}

// Saver persists notes content.
type Saver interface {
	Save(ctx context.Context, content string) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, content string) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, content string) error {
	return f(ctx, content)
}

// SaveEvent is published on the bus after every save attempt.
type SaveEvent struct {
	Content string
	Err     error
	At      time.Time
}

// Option configures an Editor.
type Option func(*Editor)

// WithDebounce sets the save delay. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithOnChange registers a callback fired whenever Local changes. The same
// text is published on the bus as TopicContentChanged.
func WithOnChange(fn func(string)) Option {
	return func(e *Editor) { e.onChange = fn }
}

// WithBus publishes content changes and save results on bus.
func WithBus(bus *eventbus.Bus) Option {
	return func(e *Editor) { e.bus = bus }
}

// WithLogger sets the editor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor owns the local notes text and its debounced persistence.
type Editor struct {
	mu       sync.Mutex
	content  Content
	pending  bool
	gen      uint64
	timer    *time.Timer
	inFlight *string
	closed   bool

	saveMu   sync.Mutex
	saver    Saver
	debounce time.Duration
	onChange func(string)
	bus      *eventbus.Bus
	logger   *slog.Logger
}

// New creates an editor whose content starts as initial, already saved.
func New(saver Saver, initial string, opts ...Option) *Editor {
	e := &Editor{
		content:  Content{Local: initial, LastSaved: initial},
		saver:    saver,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Content returns the current local and saved values.
func (e *Editor) Content() Content {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Pending reports whether a debounced save is scheduled.
func (e *Editor) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Edit replaces the local text and re-arms the save timer. Only the last
// edit inside the debounce window is saved.
func (e *Editor) Edit(text string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.content.Local = text
	e.pending = true
	e.armLocked()
	e.mu.Unlock()

	e.changed(text)
}

// Receive applies content that arrived from outside, such as a file change
// notification. Content equal to the last saved value, or to a save still in
// progress, is treated as an echo of this editor's own write and ignored.
// Otherwise it overwrites local state, drops any pending save and returns true.
func (e *Editor) Receive(text string) bool {
	e.mu.Lock()
	if e.closed || e.isEchoLocked(text) {
		e.mu.Unlock()
		e.logger.Debug("ignoring echoed content", "bytes", len(text))
		return false
	}
	e.content = Content{Local: text, LastSaved: text}
	e.pending = false
	e.gen++
	e.stopTimerLocked()
	e.mu.Unlock()

	e.logger.Info("notes changed externally", "bytes", len(text))
	e.changed(text)
	return true
}

// changed notifies the change callback and bus subscribers. Called without
// the lock held.
func (e *Editor) changed(text string) {
	if e.onChange != nil {
		e.onChange(text)
	}
	e.bus.Publish(eventbus.TopicContentChanged, text)
}

func (e *Editor) isEchoLocked(text string) bool {
	if text == e.content.LastSaved {
		return true
	}
	return e.inFlight != nil && *e.inFlight == text
}

// Flush saves pending content immediately.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	if !e.pending {
		e.mu.Unlock()
		return nil
	}
	e.pending = false
	e.gen++
	e.stopTimerLocked()
	value := e.content.Local
	e.mu.Unlock()

	return e.save(ctx, value)
}

// Close stops the save timer. Pending content is not saved; call Flush first
// to keep it.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.stopTimerLocked()
	e.mu.Unlock()
}

// FindAndReplace replaces every occurrence of query in the local text and
// schedules a save like any other edit.
func (e *Editor) FindAndReplace(ctx context.Context, query, replacement string, opts search.ReplaceOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	local := e.Content().Local
	out, n, err := search.ReplaceText(local, query, replacement, opts)
	if err != nil {
		return fmt.Errorf("replace in notes: %w", err)
	}
	e.logger.Info("replaced in notes", "count", n)
	if n > 0 {
		e.Edit(out)
	}
	return nil
}

func (e *Editor) fire(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen || !e.pending {
		e.mu.Unlock()
		return
	}
	e.pending = false
	value := e.content.Local
	e.mu.Unlock()

	_ = e.save(context.Background(), value)
}

func (e *Editor) save(ctx context.Context, value string) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	e.inFlight = &value
	e.mu.Unlock()

	var err error
	if e.saver != nil {
		err = e.saver.Save(ctx, value)
	}

	e.mu.Lock()
	e.inFlight = nil
	switch {
	case err == nil:
		// The store now holds value. Content received while the save was in
		// flight was overwritten on disk, so it is scheduled again.
		e.content.LastSaved = value
		if e.content.Local != value && !e.pending {
			e.pending = true
			e.armLocked()
		}
	case e.content.Local == value && !e.pending:
		e.pending = true
	}
	e.mu.Unlock()

	evt := SaveEvent{Content: value, Err: err, At: time.Now()}
	if err != nil {
		e.logger.Warn("saving notes failed", "error", err)
		e.bus.Publish(eventbus.TopicSaveFailed, evt)
		return fmt.Errorf("save notes: %w", err)
	}
	e.logger.Debug("notes saved", "bytes", len(value))
	e.bus.Publish(eventbus.TopicContentSaved, evt)
	return nil
}

// armLocked restarts the debounce timer for the current generation.
func (e *Editor) armLocked() {
	e.gen++
	gen := e.gen
	e.stopTimerLocked()
	if e.closed {
		return
	}
	e.timer = time.AfterFunc(e.debounce, func() { e.fire(gen) })
}

func (e *Editor) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
