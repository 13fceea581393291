package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/mercato/internal/telemetry"
)

// Handler reacts to an event. A returned error is logged by the bus and
// never reaches the publisher.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type subscription struct {
	name    string
	handler Handler
}

// Bus is a synchronous in-process event bus. Publish returns after every
// handler has run, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []subscription
	logger   *slog.Logger
}

var _ Publisher = (*Bus)(nil)

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers h under name. Names appear in logs and metrics.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, subscription{name: name, handler: h})
}

// Publish delivers e to every handler. Handler errors and panics are
// contained per handler.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers))
	copy(subs, b.handlers)
	b.mu.RUnlock()

	if telemetry.Business != nil {
		telemetry.Business.EventsPublished.WithLabelValues(string(e.Kind())).Inc()
	}

	for _, s := range subs {
		if err := b.dispatch(ctx, s, e); err != nil {
			b.logger.Error("event handler failed",
				"handler", s.name,
				"kind", e.Kind(),
				"product_id", e.ProductID(),
				"error", err,
			)
			if telemetry.Business != nil {
				telemetry.Business.HandlerFailures.WithLabelValues(s.name).Inc()
			}
			telemetry.CaptureError(err, map[string]any{
				"handler":    s.name,
				"kind":       string(e.Kind()),
				"product_id": e.ProductID().String(),
			})
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return s.handler(ctx, e)
}
