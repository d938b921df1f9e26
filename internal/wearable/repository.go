package wearable

import "context"

// Repository is the durable store for paired wearable devices.
type Repository interface {
	// Get retrieves a device by user and device ID.
	Get(ctx context.Context, userID, deviceID string) (*Device, error)

	// ListByUser retrieves all devices for a user.
	ListByUser(ctx context.Context, userID string) ([]*Device, error)

	// Upsert creates or updates a device registration.
	// Returns true when the device was newly created.
	Upsert(ctx context.Context, device *Device) (bool, error)

	// Delete removes a device registration.
	Delete(ctx context.Context, userID, deviceID string) error
}
