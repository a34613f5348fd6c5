package notify

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for testing
// and for running without a persistence backend.
type InMemoryRepository struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewInMemoryRepository creates a new in-memory settings repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Load returns the persisted settings, or ErrNoSettings.
func (r *InMemoryRepository) Load(_ context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return Settings{}, ErrNoSettings
	}
	return *r.settings, nil
}

// Save replaces the persisted settings.
func (r *InMemoryRepository) Save(_ context.Context, settings Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = &settings
	return nil
}
