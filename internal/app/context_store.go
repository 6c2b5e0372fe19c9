package app

import (
	"context"
	"sync"

	"github.com/example/roomsync/internal/ports/primary"
)

// ContextStore holds the current session context and notifies watchers when it changes.
// Writers always replace the whole value; the last write wins.
type ContextStore struct {
	mu       sync.Mutex
	current  primary.SessionContext
	watchers map[int]chan primary.SessionContext
	nextID   int
}

// NewContextStore creates a store holding the unresolved context.
func NewContextStore() *ContextStore {
	return &ContextStore{
		current:  primary.UnresolvedSession(),
		watchers: make(map[int]chan primary.SessionContext),
	}
}

// Current returns the latest context.
func (s *ContextStore) Current() primary.SessionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the context and reports whether it changed.
// Watchers only hear about changes.
func (s *ContextStore) Set(next primary.SessionContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next == s.current {
		return false
	}
	s.current = next
	for _, ch := range s.watchers {
		// Watchers get the latest value; a slow watcher loses intermediate ones.
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
	return true
}

// Watch returns a channel receiving the current context immediately and every change
// after it. The channel is closed when ctx is done.
func (s *ContextStore) Watch(ctx context.Context) <-chan primary.SessionContext {
	ch := make(chan primary.SessionContext, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.current
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}
