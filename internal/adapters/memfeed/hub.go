// Package memfeed is an in-process change feed. It serves a single process that both
// writes and watches, and tests that need a real feed without a broker.
package memfeed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/roomsync/internal/ports/secondary"
)

// Hub implements secondary.ChangeFeed and secondary.ChangePublisher in memory.
// Handlers run synchronously on the publishing goroutine.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	logger *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[int]*subscription), logger: logger}
}

// Subscribe registers handler for every change matching any of bindings.
func (h *Hub) Subscribe(ctx context.Context, name string, bindings []secondary.Binding, handler secondary.ChangeHandler) (secondary.Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscription{
		hub:      h,
		id:       id,
		name:     name,
		bindings: append([]secondary.Binding(nil), bindings...),
		handler:  handler,
	}
	h.subs[id] = sub
	h.logger.Debug("subscribed", zap.String("name", name), zap.Int("bindings", len(bindings)))
	return sub, nil
}

// Publish delivers a change to every matching subscription.
func (h *Hub) Publish(ctx context.Context, change secondary.Change) error {
	h.mu.RLock()
	var handlers []secondary.ChangeHandler
	for _, sub := range h.subs {
		if sub.matches(change) {
			handlers = append(handlers, sub.handler)
		}
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(change)
	}
	return nil
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

type subscription struct {
	hub      *Hub
	id       int
	name     string
	bindings []secondary.Binding
	handler  secondary.ChangeHandler
	once     sync.Once
}

func (s *subscription) matches(c secondary.Change) bool {
	for _, b := range s.bindings {
		if b.Matches(c) {
			return true
		}
	}
	return false
}

// Close removes the subscription from its hub. Closing twice is a no-op.
func (s *subscription) Close() error {
	s.once.Do(func() { s.hub.remove(s.id) })
	return nil
}

var (
	_ secondary.ChangeFeed      = (*Hub)(nil)
	_ secondary.ChangePublisher = (*Hub)(nil)
)
