// Package objstore holds the plumbing shared by the embedded graph stores:
// subscription fan-out, field validation and result ordering.
package objstore

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"jade/internal/domain"
	"jade/internal/ports"
)

type subscription struct {
	query   domain.Query
	handler ports.EventHandler
}

// Hub tracks subscriptions and delivers object events to the matching ones
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]subscription
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger falls back to slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]subscription),
		logger: logger,
	}
}

// Add registers handler for events matching q and returns the subscription ID
func (h *Hub) Add(q domain.Query, handler ports.EventHandler) string {
	id := uuid.NewString()

	h.mu.Lock()
	h.subs[id] = subscription{query: q, handler: handler}
	h.mu.Unlock()

	return id
}

// Remove drops a subscription. It reports false if the ID was unknown.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[id]; !ok {
		return false
	}
	delete(h.subs, id)
	return true
}

// Len returns the number of live subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Clear drops every subscription
func (h *Hub) Clear() {
	h.mu.Lock()
	h.subs = make(map[string]subscription)
	h.mu.Unlock()
}

// Publish delivers events to every matching subscription.
// Handlers are called without the lock held so they may unsubscribe.
func (h *Hub) Publish(events ...domain.ObjectEvent) {
	for _, ev := range events {
		h.mu.RLock()
		var targets []ports.EventHandler
		for _, sub := range h.subs {
			if sub.query.Matches(ev.Object) {
				targets = append(targets, sub.handler)
			}
		}
		h.mu.RUnlock()

		for _, handler := range targets {
			h.deliver(handler, ev)
		}
	}
}

func (h *Hub) deliver(handler ports.EventHandler, ev domain.ObjectEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("subscription handler panicked",
				"uid", ev.Object.UID, "schema", ev.Object.Schema, "panic", r)
		}
	}()
	handler(ev)
}
