// Package events carries in-process notifications about stream lifecycle
// changes, decoupling the bridge pipelines from the consumers (metrics,
// logging) that react to them.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(StreamConnectedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event's Publish is generic over the concrete type, so
	// dispatch through a type switch.
	switch e := ev.(type) {
	case StreamConnectedEvent:
		event.Publish(b.dispatcher, e)
	case StreamDisconnectedEvent:
		event.Publish(b.dispatcher, e)
	case StreamAuthFailedEvent:
		event.Publish(b.dispatcher, e)
	case FormatCommittedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes a handler function; the handler's argument type
// selects which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e StreamConnectedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(StreamConnectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamDisconnectedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StreamAuthFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FormatCommittedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
