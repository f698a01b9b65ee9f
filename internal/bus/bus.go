// Package bus fans events out to in-process subscribers.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var (
	_ctx   = context.Background()
	_subMu sync.RWMutex
	subs   = make(map[string][]func(ctx context.Context, T any))
)

func SetContext(ctx context.Context) {
	_subMu.Lock()
	_ctx = ctx
	_subMu.Unlock()
}

func topic[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}

func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) {
	_subMu.Lock()
	defer _subMu.Unlock()

	t := topic[T]()
	subs[t] = append(subs[t], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
		}
	})
}

func Publish[T any](event T) {
	_subMu.RLock()
	ctx := _ctx
	fns := subs[topic[T]()]
	_subMu.RUnlock()

	for _, fn := range fns {
		fn(ctx, event)
	}
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[*chan T]struct{}),
	}
}

// Hub hands the latest event to every subscriber. A subscriber that has not
// consumed the previous event sees only the newest one.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
}

func (h *Hub[T]) Broadcast(ctx context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case <-*sub:
		default:
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case *sub <- event:
		}
	}

	return nil
}

// Register subscribes the hub to published events of type T.
func (h *Hub[T]) Register() *Hub[T] {
	Subscribe("bus.Hub", h.Broadcast)
	return h
}

func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	c := make(chan T, 1)
	key := &c

	h.mu.Lock()
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		delete(h.subs, key)
		h.mu.Unlock()
	}
}

// Next waits for the next event after the call.
func (h *Hub[T]) Next(ctx context.Context) (T, error) {
	c, unsubscribe := h.Subscribe()
	defer unsubscribe()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case event := <-c:
		return event, nil
	}
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
