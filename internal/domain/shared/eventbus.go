package shared

import (
	"context"
	"sync"
)

// EventPublisher publishes domain events to interested subscribers
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler handles a published domain event
type EventHandler func(ctx context.Context, event DomainEvent) error

// InProcessEventBus is a synchronous, in-process EventPublisher.
// Handler errors are swallowed; event handling must not fail the
// operation that produced the event.
type InProcessEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewInProcessEventBus creates a new in-process event bus
func NewInProcessEventBus() *InProcessEventBus {
	return &InProcessEventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for the given event type
func (b *InProcessEventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches events to all handlers registered for their type
func (b *InProcessEventBus) Publish(ctx context.Context, events ...DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, event := range events {
		for _, handler := range b.handlers[event.EventType()] {
			_ = handler(ctx, event)
		}
	}
	return nil
}

var _ EventPublisher = (*InProcessEventBus)(nil)
