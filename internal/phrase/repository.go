package phrase

import "context"

// Repository is the durable store for the trigger-phrase catalog.
type Repository interface {
	// LoadAll returns the catalog for a user in insertion order.
	LoadAll(ctx context.Context, userID string) ([]TriggerPhrase, error)

	// ReplaceAll atomically replaces the user's catalog.
	ReplaceAll(ctx context.Context, userID string, phrases []TriggerPhrase) error
}
