package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/logger"
)

// Handler consumes a published event.
type Handler func(ctx context.Context, e Event) error

// Bus is a single-process publish/subscribe fan-out. Handlers run
// asynchronously so a slow consumer never blocks the write path that
// published the event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers the event to all subscribed handlers in the background.
// Handler errors are logged, never propagated to the publisher.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	hs := b.handlers[e.Type]
	b.mu.RUnlock()

	for _, h := range hs {
		h := h
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := h(context.WithoutCancel(ctx), e); err != nil {
				logger.Error("event handler failed",
					zap.String("event_type", e.Type),
					zap.String("event_id", e.ID.String()),
					zap.Error(err),
				)
			}
		}()
	}
}

// Wait blocks until all in-flight handlers have finished. Used by shutdown
// and tests.
func (b *Bus) Wait() {
	b.wg.Wait()
}
