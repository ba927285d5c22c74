package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultQueueSize is the number of events buffered while the bus runs
const DefaultQueueSize = 256

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus implements EventBus with in-process pub/sub.
// Before Start, and after Stop, events are dispatched synchronously on the
// publishing goroutine. While running, a single worker drains a buffered
// queue so handlers such as mail delivery do not hold up requests.
type InMemoryEventBus struct {
	subs     *subscriptions
	logger   *zap.Logger

	mu      sync.RWMutex
	queue   chan envelope
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		subs:     newSubscriptions(),
		logger:   logger,
	}
}

// Publish hands events to the registered handlers. Handler failures are
// logged and never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		if !b.running.Load() {
			b.dispatch(ctx, event)
			continue
		}
		select {
		case b.queue <- envelope{ctx: context.WithoutCancel(ctx), event: event}:
		case <-ctx.Done():
			return fmt.Errorf("publish %s: %w", event.EventType(), ctx.Err())
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.subs.add(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.subs.remove(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start switches the bus to queued delivery
func (b *InMemoryEventBus) Start(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running.Load() {
		return nil
	}
	b.queue = make(chan envelope, DefaultQueueSize)
	b.running.Store(true)

	b.wg.Add(1)
	go b.worker(b.queue)

	b.logger.Info("event bus started")
	return nil
}

// Stop drains the queue and returns to synchronous delivery. It gives up
// waiting when ctx is done.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	close(b.queue)
	b.mu.Unlock()

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
		b.logger.Warn("event bus stop timed out, pending events dropped")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		b.dispatch(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.subs.forType(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
