package event

import (
	"sync"

	"go.uber.org/zap"

	"github.com/inventra/backend/internal/domain/shared"
)

// Handler processes one published domain event
type Handler func(event shared.DomainEvent)

// InMemoryEventBus fans published events out to subscribed handlers in
// process. Publication happens after the producing transaction commits, so
// handlers observe committed state only. A failing or panicking handler
// never affects the publisher or other handlers.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish delivers events to all registered handlers synchronously
func (b *InMemoryEventBus) Publish(events ...shared.DomainEvent) {
	for _, e := range events {
		b.mu.RLock()
		handlers := b.handlers[e.EventType()]
		b.mu.RUnlock()

		b.logger.Info("domain event published",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.String("tenant_id", e.TenantID().String()),
		)

		for _, h := range handlers {
			b.dispatch(h, e)
		}
	}
}

// dispatch runs one handler, recovering panics so the rest still fire
func (b *InMemoryEventBus) dispatch(handler Handler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()
	handler(event)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
