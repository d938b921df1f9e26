package medical

import "context"

// Repository persists medical profiles, one per user.
type Repository interface {
	// Get retrieves a user's medical profile.
	Get(ctx context.Context, userID string) (*Profile, error)

	// Upsert creates or replaces a user's medical profile.
	Upsert(ctx context.Context, p *Profile) error

	// Delete removes a user's medical profile.
	Delete(ctx context.Context, userID string) error
}
