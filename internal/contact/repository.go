package contact

import "context"

// Repository persists emergency contacts.
type Repository interface {
	// Get retrieves a contact by user and contact ID.
	Get(ctx context.Context, userID, contactID string) (*Contact, error)

	// List retrieves a user's contacts ordered by tier (primaries first)
	// then ascending priority.
	List(ctx context.Context, userID string) ([]Contact, error)

	// Create creates a new contact.
	Create(ctx context.Context, c *Contact) error

	// Update updates an existing contact.
	Update(ctx context.Context, c *Contact) error

	// Delete deletes a contact by user and contact ID.
	Delete(ctx context.Context, userID, contactID string) error
}
