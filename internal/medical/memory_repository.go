package medical

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile // user ID -> profile
}

// NewInMemoryRepository creates a new in-memory profile repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{profiles: make(map[string]*Profile)}
}

// Get retrieves a user's medical profile.
func (r *InMemoryRepository) Get(_ context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *p
	return &copied, nil
}

// Upsert creates or replaces a user's medical profile.
func (r *InMemoryRepository) Upsert(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *p
	r.profiles[p.UserID] = &copied
	return nil
}

// Delete removes a user's medical profile.
func (r *InMemoryRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.profiles, userID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
