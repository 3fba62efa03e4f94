package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/notefind/internal/eventbus"
	"github.com/kk-code-lab/notefind/internal/search"
)

type fakeSaver struct {
	mu    sync.Mutex
	saves []string
	err   error
	block chan struct{}
	saved chan string
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{saved: make(chan string, 16)}
}

func (f *fakeSaver) Save(_ context.Context, content string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.saves = append(f.saves, content)
	err := f.err
	f.mu.Unlock()
	f.saved <- content
	return err
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func waitSave(t *testing.T, f *fakeSaver) string {
	t.Helper()
	select {
	case v := <-f.saved:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
		return ""
	}
}

func TestDebounceSavesLastEditOnce(t *testing.T) {
	saver := newFakeSaver()
	e := New(saver, "", WithDebounce(30*time.Millisecond))
	defer e.Close()

	e.Edit("a")
	e.Edit("ab")
	e.Edit("abc")

	assert.Equal(t, "abc", waitSave(t, saver))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, saver.count())

	c := e.Content()
	assert.Equal(t, "abc", c.Local)
	assert.Equal(t, "abc", c.LastSaved)
	assert.False(t, c.Dirty())
}

func TestEditFiresOnChange(t *testing.T) {
	var got []string
	e := New(nil, "", WithDebounce(time.Hour), WithOnChange(func(s string) { got = append(got, s) }))
	defer e.Close()

	e.Edit("x")
	e.Edit("y")
	assert.Equal(t, []string{"x", "y"}, got)
	assert.True(t, e.Pending())
}

func TestReceiveIgnoresEchoOfLastSave(t *testing.T) {
	saver := newFakeSaver()
	changes := 0
	e := New(saver, "", WithDebounce(time.Hour), WithOnChange(func(string) { changes++ }))
	defer e.Close()

	e.Edit("draft")
	require.NoError(t, e.Flush(context.Background()))
	<-saver.saved
	changes = 0

	assert.False(t, e.Receive("draft"))
	assert.Zero(t, changes)

	assert.True(t, e.Receive("remote edit"))
	assert.Equal(t, 1, changes)
	assert.Equal(t, Content{Local: "remote edit", LastSaved: "remote edit"}, e.Content())
}

func TestReceiveIgnoresEchoOfInFlightSave(t *testing.T) {
	saver := newFakeSaver()
	saver.block = make(chan struct{})
	e := New(saver, "old", WithDebounce(time.Hour))
	defer e.Close()

	e.Edit("new")
	done := make(chan error, 1)
	go func() { done <- e.Flush(context.Background()) }()

	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.inFlight != nil
	}, time.Second, 5*time.Millisecond)

	assert.False(t, e.Receive("new"))
	assert.Equal(t, "new", e.Content().Local)

	close(saver.block)
	require.NoError(t, <-done)
	assert.Equal(t, "new", e.Content().LastSaved)
}

func TestReceiveDuringSaveIsWrittenBack(t *testing.T) {
	saver := newFakeSaver()
	saver.block = make(chan struct{})
	e := New(saver, "A", WithDebounce(time.Hour))
	defer e.Close()

	e.Edit("B")
	done := make(chan error, 1)
	go func() { done <- e.Flush(context.Background()) }()

	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.inFlight != nil
	}, time.Second, 5*time.Millisecond)

	assert.True(t, e.Receive("C"))
	close(saver.block)
	require.NoError(t, <-done)
	assert.Equal(t, "B", waitSave(t, saver))

	assert.Equal(t, Content{Local: "C", LastSaved: "B"}, e.Content())
	assert.True(t, e.Pending())
	assert.False(t, e.Receive("B"), "write of B echoes back")

	require.NoError(t, e.Flush(context.Background()))
	assert.Equal(t, "C", waitSave(t, saver))
	assert.Equal(t, Content{Local: "C", LastSaved: "C"}, e.Content())
	assert.False(t, e.Pending())
}

func TestReceiveCancelsPendingSave(t *testing.T) {
	saver := newFakeSaver()
	e := New(saver, "base", WithDebounce(30*time.Millisecond))
	defer e.Close()

	e.Edit("local change")
	assert.True(t, e.Receive("remote change"))
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, saver.count())
	assert.False(t, e.Pending())
	assert.Equal(t, "remote change", e.Content().Local)
}

func TestFlushWithoutPendingIsNoop(t *testing.T) {
	saver := newFakeSaver()
	e := New(saver, "x")
	require.NoError(t, e.Flush(context.Background()))
	assert.Zero(t, saver.count())
}

func TestSaveFailurePublishesAndStaysPending(t *testing.T) {
	saver := newFakeSaver()
	saver.err = errors.New("disk full")
	bus := eventbus.New(nil)
	var failed []SaveEvent
	bus.Subscribe(eventbus.TopicSaveFailed, func(ev eventbus.Event) {
		failed = append(failed, ev.Payload.(SaveEvent))
	})

	e := New(saver, "", WithDebounce(time.Hour), WithBus(bus))
	defer e.Close()
	e.Edit("draft")

	err := e.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, saver.err))
	require.Len(t, failed, 1)
	assert.Equal(t, "draft", failed[0].Content)
	assert.True(t, e.Pending())
	assert.True(t, e.Content().Dirty())
}

func TestSavePublishesContentSaved(t *testing.T) {
	saver := newFakeSaver()
	bus := eventbus.New(nil)
	saved := make(chan SaveEvent, 1)
	bus.Subscribe(eventbus.TopicContentSaved, func(ev eventbus.Event) {
		saved <- ev.Payload.(SaveEvent)
	})

	e := New(saver, "", WithDebounce(10*time.Millisecond), WithBus(bus))
	defer e.Close()
	e.Edit("hello")

	select {
	case ev := <-saved:
		assert.Equal(t, "hello", ev.Content)
		assert.NoError(t, ev.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no save event")
	}
}

func TestFindAndReplaceEditsLocal(t *testing.T) {
	saver := newFakeSaver()
	e := New(saver, "Bob met bob", WithDebounce(time.Hour))
	defer e.Close()

	err := e.FindAndReplace(context.Background(), "bob", "Rob", search.ReplaceOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Rob met Rob", e.Content().Local)
	assert.True(t, e.Pending())

	err = e.FindAndReplace(context.Background(), "(", "x", search.ReplaceOptions{UseRegex: true})
	assert.True(t, errors.Is(err, search.ErrInvalidPattern))
	assert.Equal(t, "Rob met Rob", e.Content().Local)
}

func TestCloseStopsPendingSave(t *testing.T) {
	saver := newFakeSaver()
	e := New(saver, "", WithDebounce(20*time.Millisecond))
	e.Edit("never saved")
	e.Close()
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, saver.count())
}

func TestEditAndReceivePublishContentChanged(t *testing.T) {
	bus := eventbus.New(nil)
	var got []string
	bus.Subscribe(eventbus.TopicContentChanged, func(ev eventbus.Event) {
		got = append(got, ev.Payload.(string))
	})
	e := New(nil, "saved", WithDebounce(time.Hour), WithBus(bus))
	defer e.Close()

	e.Edit("local")
	e.Receive("saved")
	e.Receive("remote")
	assert.Equal(t, []string{"local", "remote"}, got)
}
