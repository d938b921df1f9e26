package escalation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL escalation repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveRun upserts a run record.
func (r *PostgresRepository) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO escalation_runs (session_id, user_id, started_at, secondary_at, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			secondary_at = EXCLUDED.secondary_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err := r.pool.Exec(ctx, query,
		run.SessionID,
		run.UserID,
		run.StartedAt,
		run.SecondaryAt,
		run.CompletedAt,
	)
	return err
}

// GetRun retrieves the run for a session.
func (r *PostgresRepository) GetRun(ctx context.Context, sessionID string) (*Run, error) {
	query := `
		SELECT session_id, user_id, started_at, secondary_at, completed_at
		FROM escalation_runs WHERE session_id = $1
	`

	var run Run
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&run.SessionID,
		&run.UserID,
		&run.StartedAt,
		&run.SecondaryAt,
		&run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// SaveAttempt appends a delivery attempt.
func (r *PostgresRepository) SaveAttempt(ctx context.Context, attempt *Attempt) error {
	query := `
		INSERT INTO notify_attempts (id, session_id, contact_id, tier, notice_kind, succeeded, error, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.SessionID,
		attempt.ContactID,
		attempt.Tier,
		attempt.NoticeKind,
		attempt.Succeeded,
		attempt.Error,
		attempt.At,
	)
	return err
}

// ListAttempts retrieves a session's attempts in insertion order.
func (r *PostgresRepository) ListAttempts(ctx context.Context, sessionID string) ([]Attempt, error) {
	query := `
		SELECT id, session_id, contact_id, tier, notice_kind, succeeded, error, at
		FROM notify_attempts WHERE session_id = $1 ORDER BY at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.ContactID,
			&a.Tier,
			&a.NoticeKind,
			&a.Succeeded,
			&a.Error,
			&a.At,
		)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
