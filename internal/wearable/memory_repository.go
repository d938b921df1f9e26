package wearable

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository for
// testing and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{devices: make(map[string]*Device)}
}

// Get retrieves a device by user and device ID.
func (r *InMemoryRepository) Get(_ context.Context, userID, deviceID string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[deviceID]
	if !ok || device.UserID != userID {
		return nil, ErrDeviceNotFound
	}
	copied := *device
	return &copied, nil
}

// ListByUser retrieves all devices for a user.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []*Device
	for _, d := range r.devices {
		if d.UserID == userID {
			copied := *d
			devices = append(devices, &copied)
		}
	}
	sort.Slice(devices, func(a, b int) bool {
		return devices[a].CreatedAt.Before(devices[b].CreatedAt)
	})
	return devices, nil
}

// Upsert creates or updates a device registration.
func (r *InMemoryRepository) Upsert(_ context.Context, device *Device) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.devices[device.ID]
	copied := *device
	r.devices[device.ID] = &copied
	return !existed, nil
}

// Delete removes a device registration.
func (r *InMemoryRepository) Delete(_ context.Context, userID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[deviceID]
	if !ok || device.UserID != userID {
		return ErrDeviceNotFound
	}
	delete(r.devices, deviceID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
