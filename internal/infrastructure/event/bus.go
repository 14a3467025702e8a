package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// retryBackoff spaces out redelivery attempts after a handler error
const retryBackoff = 100 * time.Millisecond

// InMemoryEventBus implements EventBus with a buffered in-process queue.
// Publish never blocks the caller on handler work, a background worker
// dispatches events in publication order and retries failed handlers.
type InMemoryEventBus struct {
	registry   *HandlerRegistry
	logger     *zap.Logger
	queue      chan shared.DomainEvent
	maxRetries int
	running    atomic.Bool
	wg         sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(cfg config.EventConfig, logger *zap.Logger) *InMemoryEventBus {
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 256
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &InMemoryEventBus{
		registry:   NewHandlerRegistry(),
		logger:     logger,
		queue:      make(chan shared.DomainEvent, bufferSize),
		maxRetries: maxRetries,
	}
}

// Publish enqueues events for asynchronous dispatch. When the queue is
// full the event is dispatched synchronously instead of being dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		if !b.running.Load() {
			b.dispatch(ctx, event)
			continue
		}

		select {
		case b.queue <- event:
		default:
			b.logger.Warn("event queue full, dispatching synchronously",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
			)
			b.dispatch(ctx, event)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	// If handler specifies its own event types, use those
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the dispatch worker
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}

	b.wg.Add(1)
	go b.run()

	b.logger.Info("event bus started")
	return nil
}

// Stop drains the queue and stops the worker
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}

	close(b.queue)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stopped before the queue drained")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) run() {
	defer b.wg.Done()

	// Handlers outlive the publisher's request context
	ctx := context.Background()

	for event := range b.queue {
		b.dispatch(ctx, event)
	}
}

// dispatch delivers an event to every registered handler, retrying
// each failed handler up to maxRetries times
func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	handlers := b.registry.GetHandlers(event.EventType())

	for _, handler := range handlers {
		var err error
		for attempt := 0; attempt <= b.maxRetries; attempt++ {
			if attempt > 0 {
				time.Sleep(retryBackoff)
			}
			if err = b.dispatchToHandler(ctx, handler, event); err == nil {
				break
			}
		}
		if err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Int("attempts", b.maxRetries+1),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
