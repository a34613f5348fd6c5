package events

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository, used in
// tests and as the fallback when no persistence backend is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events EventMap
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Load returns the cached event map, or ErrNoCachedEvents.
func (r *InMemoryRepository) Load(_ context.Context) (EventMap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.events == nil {
		return nil, ErrNoCachedEvents
	}
	return r.events, nil
}

// Save replaces the cached event map.
func (r *InMemoryRepository) Save(_ context.Context, events EventMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = events
	return nil
}
