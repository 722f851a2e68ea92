// Package pubsub fans sheet and log events out to asynchronous subscribers.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the published payload.
type EventType string

const (
	// ChangedEvent follows a completed sheet mutation. The payload is the new text.
	ChangedEvent EventType = "changed"
	// ReloadedEvent follows a full replace triggered from outside the editor (file reload).
	ReloadedEvent EventType = "reloaded"
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published payload stamped with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
