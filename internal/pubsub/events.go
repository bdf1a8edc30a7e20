// Package pubsub fans typed events out to any number of subscribers. The
// engine's notifications and the debug log both travel over it, and tea.go
// turns a subscription into Bubble Tea messages.
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to the payload.
type EventType string

const (
	// LoggedEvent carries a new log entry.
	LoggedEvent EventType = "logged"
	// StartedEvent marks the start of something with a lifetime, such as
	// the command line opening.
	StartedEvent EventType = "started"
	// ChangedEvent reports a new value for existing state: a mode switch or
	// an edit to the command line.
	ChangedEvent EventType = "changed"
)

// Event is one delivery. Timestamp is set by the broker at publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels that close with ctx.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher is the write side of a broker.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
