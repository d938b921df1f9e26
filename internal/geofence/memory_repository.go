package geofence

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu    sync.RWMutex
	zones map[string]*Zone // zone ID -> zone
	order []string         // registration order
}

// NewInMemoryRepository creates a new in-memory zone repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{zones: make(map[string]*Zone)}
}

// Get retrieves a zone by user and zone ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, zoneID string) (*Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zone, ok := r.zones[zoneID]
	if !ok || zone.UserID != userID {
		return nil, ErrZoneNotFound
	}
	copied := *zone
	return &copied, nil
}

// List retrieves all zones for a user in registration order.
func (r *InMemoryRepository) List(_ context.Context, userID string) ([]Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zones []Zone
	for _, id := range r.order {
		if zone, ok := r.zones[id]; ok && zone.UserID == userID {
			zones = append(zones, *zone)
		}
	}
	sort.SliceStable(zones, func(a, b int) bool {
		return zones[a].CreatedAt.Before(zones[b].CreatedAt)
	})
	return zones, nil
}

// Create creates a new zone.
func (r *InMemoryRepository) Create(_ context.Context, zone *Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *zone
	r.zones[zone.ID] = &copied
	r.order = append(r.order, zone.ID)
	return nil
}

// Update updates an existing zone.
func (r *InMemoryRepository) Update(_ context.Context, zone *Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.zones[zone.ID]; !ok {
		return ErrZoneNotFound
	}
	copied := *zone
	r.zones[zone.ID] = &copied
	return nil
}

// Delete deletes a zone by user and zone ID.
func (r *InMemoryRepository) Delete(_ context.Context, userID, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if zone, ok := r.zones[zoneID]; ok && zone.UserID == userID {
		delete(r.zones, zoneID)
		for i, id := range r.order {
			if id == zoneID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
