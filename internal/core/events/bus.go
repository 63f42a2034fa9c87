// Package events carries engine lifecycle notifications between the core
// and its collaborators. Delivery is synchronous and in-process; the bus is
// not a frame-ordered queue, just a fan-out.
package events

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine event types published by the core.
const (
	EngineStarted = "engine.started"
	EngineStopped = "engine.stopped"
	StageSwitched = "stage.switched"
)

var ErrBusClosed = errors.New("event bus is closed")

// Event is a typed notification with an optional payload.
type Event struct {
	Type      string
	Source    string
	Timestamp time.Time
	Data      any
}

// New builds an event stamped with the current time.
func New(eventType, source string, data any) Event {
	return Event{Type: eventType, Source: source, Timestamp: time.Now(), Data: data}
}

// Handler receives published events. Handlers run on the publisher's
// goroutine and should return quickly.
type Handler func(Event)

// Subscription identifies one registered handler.
type Subscription struct {
	id        string
	eventType string
	bus       *Bus
}

// ID returns the subscription's unique id.
func (s *Subscription) ID() string { return s.id }

// Cancel removes the handler. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.bus.remove(s.eventType, s.id)
}

// Bus is a thread-safe event fan-out keyed by event type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
	closed   bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[string]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	id := uuid.NewString()
	b.handlers[eventType][id] = h
	return &Subscription{id: id, eventType: eventType, bus: b}, nil
}

// Publish delivers the event to every handler subscribed to its type,
// synchronously, in unspecified order.
func (b *Bus) Publish(ev Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	subs := b.handlers[ev.Type]
	handlers := make([]Handler, 0, len(subs))
	for _, h := range subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

// Close drops all subscriptions; further Subscribe and Publish calls fail
// with ErrBusClosed. Closing twice is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string]map[string]Handler)
}

func (b *Bus) remove(eventType, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.handlers[eventType]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.handlers, eventType)
		}
	}
}
