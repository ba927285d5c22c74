package event

import (
	"slices"
	"sync"

	"github.com/shopfront/backend/internal/domain/shared"
)

// subscriptions maps event types to handlers. A handler registered without
// types receives every event and is called after the typed handlers.
type subscriptions struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

func newSubscriptions() *subscriptions {
	return &subscriptions{byType: make(map[string][]shared.EventHandler)}
}

// add registers handler once per event type
func (s *subscriptions) add(handler shared.EventHandler, eventTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(eventTypes) == 0 {
		if !slices.Contains(s.wildcard, handler) {
			s.wildcard = append(s.wildcard, handler)
		}
		return
	}
	for _, t := range eventTypes {
		if !slices.Contains(s.byType[t], handler) {
			s.byType[t] = append(s.byType[t], handler)
		}
	}
}

func (s *subscriptions) remove(handler shared.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	same := func(h shared.EventHandler) bool { return h == handler }
	s.wildcard = slices.DeleteFunc(s.wildcard, same)
	for t, handlers := range s.byType {
		if handlers = slices.DeleteFunc(handlers, same); len(handlers) == 0 {
			delete(s.byType, t)
		} else {
			s.byType[t] = handlers
		}
	}
}

// forType returns a snapshot safe to iterate without the lock
func (s *subscriptions) forType(eventType string) []shared.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Concat(s.byType[eventType], s.wildcard)
}

func (s *subscriptions) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.wildcard)
	for _, handlers := range s.byType {
		n += len(handlers)
	}
	return n
}
