package phrase

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	catalogs map[string][]TriggerPhrase
}

// NewInMemoryRepository creates a new in-memory phrase repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{catalogs: make(map[string][]TriggerPhrase)}
}

// LoadAll returns the catalog for a user in insertion order.
func (r *InMemoryRepository) LoadAll(_ context.Context, userID string) ([]TriggerPhrase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.catalogs[userID]
	out := make([]TriggerPhrase, len(stored))
	copy(out, stored)
	return out, nil
}

// ReplaceAll atomically replaces the user's catalog.
func (r *InMemoryRepository) ReplaceAll(_ context.Context, userID string, phrases []TriggerPhrase) error {
	stored := make([]TriggerPhrase, len(phrases))
	copy(stored, phrases)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs[userID] = stored
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
