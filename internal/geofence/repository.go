package geofence

import "context"

// Repository is the durable store for geofence zones.
type Repository interface {
	// Get retrieves a zone by user and zone ID.
	Get(ctx context.Context, userID, zoneID string) (*Zone, error)

	// List retrieves all zones for a user in registration order.
	List(ctx context.Context, userID string) ([]Zone, error)

	// Create creates a new zone.
	Create(ctx context.Context, zone *Zone) error

	// Update updates an existing zone.
	Update(ctx context.Context, zone *Zone) error

	// Delete deletes a zone by user and zone ID.
	Delete(ctx context.Context, userID, zoneID string) error
}
