// Package notify carries the session-changed broadcast between independent
// session manager instances. Delivery is at-least-once and best-effort with no
// ordering guarantee; subscribers must be idempotent.
package notify

import "sync"

// Handler is invoked when a session-changed signal is delivered.
type Handler func()

// Source delivers session-changed signals to subscribers. The returned cancel
// function removes the subscription and is safe to call more than once.
type Source interface {
	Subscribe(h Handler) (cancel func())
}

// Notifier is a Source that can also originate broadcasts.
type Notifier interface {
	Source

	// Broadcast delivers a session-changed signal to every subscriber,
	// including the caller's own.
	Broadcast()

	Close() error
}

// Hub is an in-process Notifier. Broadcast delivers synchronously in the
// caller's goroutine, so a manager mutating state must not hold its lock while
// broadcasting.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]Handler
	nextID int
	closed bool
}

var _ Notifier = (*Hub)(nil)

// NewHub creates an in-process notification hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]Handler)}
}

// Subscribe registers h for future broadcasts.
func (h *Hub) Subscribe(handler Handler) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Broadcast invokes every subscribed handler.
func (h *Hub) Broadcast() {
	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs))
	if !h.closed {
		for _, handler := range h.subs {
			handlers = append(handlers, handler)
		}
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler()
	}
}

// Close drops all subscriptions. Subsequent broadcasts are no-ops.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = make(map[int]Handler)
	h.closed = true
	return nil
}
