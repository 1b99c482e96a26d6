// Package eventbus carries lifecycle and domain events between classflow processes.
//
// The engine publishes execution lifecycle events keyed by workflow id, so every event of
// one workflow lands on the same Kafka partition. The worker subscribes to domain events
// and hands them to the dispatcher.
package eventbus

import (
	"context"

	"github.com/dukex/classflow/pkg/events"
)

// Event is anything with a registered events.EventType.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes events. key is the workflow id the event belongs to.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// EventSubscriber routes incoming events to handlers registered per type.
// Handlers must be registered before Subscribe.
type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

// EventHandler receives a pointer to the decoded event, e.g. *events.DomainEventReceived.
// A returned error nacks the message.
type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
