package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := New(nil)
	var got []string
	bus.Subscribe(TopicContentSaved, func(e Event) { got = append(got, "a:"+e.Payload.(string)) })
	bus.Subscribe(TopicContentSaved, func(e Event) { got = append(got, "b:"+e.Payload.(string)) })
	bus.Subscribe(TopicSaveFailed, func(e Event) { got = append(got, "other") })

	n := bus.Publish(TopicContentSaved, "x")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestUnsubscribe(t *testing.T) {
	bus := New(nil)
	calls := 0
	sub := bus.Subscribe(TopicNotesUpdated, func(Event) { calls++ })
	require.NotEmpty(t, sub.ID)

	bus.Publish(TopicNotesUpdated, nil)
	bus.Unsubscribe(sub)
	bus.Unsubscribe(sub)
	bus.Publish(TopicNotesUpdated, nil)
	assert.Equal(t, 1, calls)
}

func TestSubscriptionIDsAreUnique(t *testing.T) {
	bus := New(nil)
	a := bus.Subscribe(TopicNotesUpdated, func(Event) {})
	b := bus.Subscribe(TopicNotesUpdated, func(Event) {})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := New(nil)
	delivered := false
	bus.Subscribe(TopicSaveFailed, func(Event) { panic("boom") })
	bus.Subscribe(TopicSaveFailed, func(Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(TopicSaveFailed, nil) })
	assert.True(t, delivered)
}

func TestPublishOnNilBus(t *testing.T) {
	var bus *Bus
	assert.Zero(t, bus.Publish(TopicContentSaved, nil))
}
