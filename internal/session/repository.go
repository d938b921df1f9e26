package session

import "context"

// Repository archives session lifecycles for history and audit.
type Repository interface {
	// Save upserts a session snapshot. Called on creation and on every
	// terminal transition.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by user and session ID.
	Get(ctx context.Context, userID, sessionID string) (*Session, error)

	// History lists a user's sessions, most recent first, up to limit.
	History(ctx context.Context, userID string, limit int) ([]Session, error)
}
