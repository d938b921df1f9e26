package contact

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]*Contact // contact ID -> contact
}

// NewInMemoryRepository creates a new in-memory contact repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{contacts: make(map[string]*Contact)}
}

// Get retrieves a contact by user and contact ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, contactID string) (*Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[contactID]
	if !ok || c.UserID != userID {
		return nil, ErrContactNotFound
	}
	copied := *c
	return &copied, nil
}

// List retrieves a user's contacts in dispatch order.
func (r *InMemoryRepository) List(_ context.Context, userID string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var contacts []Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			contacts = append(contacts, *c)
		}
	}
	sort.SliceStable(contacts, func(a, b int) bool {
		if contacts[a].Tier != contacts[b].Tier {
			return contacts[a].Tier == TierPrimary
		}
		if contacts[a].Priority != contacts[b].Priority {
			return contacts[a].Priority < contacts[b].Priority
		}
		if !contacts[a].CreatedAt.Equal(contacts[b].CreatedAt) {
			return contacts[a].CreatedAt.Before(contacts[b].CreatedAt)
		}
		// Map iteration order is random; the ID keeps ties deterministic.
		return contacts[a].ID < contacts[b].ID
	})
	return contacts, nil
}

// Create creates a new contact.
func (r *InMemoryRepository) Create(_ context.Context, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *c
	r.contacts[c.ID] = &copied
	return nil
}

// Update updates an existing contact.
func (r *InMemoryRepository) Update(_ context.Context, c *Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[c.ID]; !ok {
		return ErrContactNotFound
	}
	copied := *c
	r.contacts[c.ID] = &copied
	return nil
}

// Delete deletes a contact by user and contact ID.
func (r *InMemoryRepository) Delete(_ context.Context, userID, contactID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.contacts[contactID]; ok && c.UserID == userID {
		delete(r.contacts, contactID)
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
