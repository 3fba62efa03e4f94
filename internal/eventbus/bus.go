// Package eventbus provides an explicit publish/subscribe service for
// cross-component notifications such as "notes saved" or "notes updated".
// Handlers run synchronously on the publishing goroutine.
package eventbus

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Topic names a stream of events.
type Topic string

const (
	TopicContentChanged Topic = "content-changed"
	TopicContentSaved   Topic = "content-saved"
	TopicSaveFailed     Topic = "save-failed"
	TopicNotesUpdated   Topic = "notes-updated"
)

// Event is delivered to subscribers.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler receives events for a topic.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID    string
	Topic Topic
}

type subscriber struct {
	id      string
	handler Handler
}

// Bus dispatches events to subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscriber
	logger *slog.Logger
}

// New creates an empty bus. A nil logger discards output.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		subs:   make(map[Topic][]subscriber),
		logger: logger,
	}
}

// Subscribe registers h for topic.
func (b *Bus) Subscribe(topic Topic, h Handler) Subscription {
	sub := Subscription{ID: uuid.NewString(), Topic: topic}
	if h == nil {
		return sub
	}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], subscriber{id: sub.ID, handler: h})
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.Topic]
	for i, s := range list {
		if s.id == sub.ID {
			b.subs[sub.Topic] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every subscriber of topic and returns the
// number of handlers invoked. A panicking handler is logged and skipped.
func (b *Bus) Publish(topic Topic, payload any) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	list := append([]subscriber(nil), b.subs[topic]...)
	b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, s := range list {
		b.deliver(s, evt)
	}
	return len(list)
}

func (b *Bus) deliver(s subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic", "topic", string(evt.Topic), "subscription", s.id, "panic", r)
		}
	}()
	s.handler(evt)
}
