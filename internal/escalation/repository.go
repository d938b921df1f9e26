package escalation

import "context"

// Repository persists escalation runs and delivery attempts.
type Repository interface {
	// SaveRun upserts a run record.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves the run for a session.
	GetRun(ctx context.Context, sessionID string) (*Run, error)

	// SaveAttempt appends a delivery attempt.
	SaveAttempt(ctx context.Context, attempt *Attempt) error

	// ListAttempts retrieves a session's attempts in insertion order.
	ListAttempts(ctx context.Context, sessionID string) ([]Attempt, error)
}
