package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadieapp/roadie/internal/location"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const sessionColumns = `
	id, user_id, kind, source, confidence, state,
	location_lat, location_lon, location_accuracy, location_at,
	started_at, activated_at, ended_at, emergency_services_called
`

// Save upserts a session snapshot.
func (r *PostgresRepository) Save(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sos_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			confidence = EXCLUDED.confidence,
			state = EXCLUDED.state,
			location_lat = EXCLUDED.location_lat,
			location_lon = EXCLUDED.location_lon,
			location_accuracy = EXCLUDED.location_accuracy,
			location_at = EXCLUDED.location_at,
			activated_at = EXCLUDED.activated_at,
			ended_at = EXCLUDED.ended_at,
			emergency_services_called = EXCLUDED.emergency_services_called
	`

	var lat, lon, accuracy *float64
	var locatedAt *time.Time
	if s.Location != nil {
		lat, lon = &s.Location.Lat, &s.Location.Lon
		accuracy = s.Location.Accuracy
		locatedAt = &s.Location.Timestamp
	}

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Kind,
		s.Source,
		s.Confidence,
		s.State,
		lat,
		lon,
		accuracy,
		locatedAt,
		s.StartedAt,
		s.ActivatedAt,
		s.EndedAt,
		s.EmergencyServicesCalled,
	)
	return err
}

// Get retrieves a session by user and session ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sos_sessions WHERE id = $1 AND user_id = $2`

	s, err := scanSession(r.pool.QueryRow(ctx, query, sessionID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// History lists a user's sessions, most recent first.
func (r *PostgresRepository) History(ctx context.Context, userID string, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sos_sessions WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var lat, lon, accuracy *float64
	var locatedAt *time.Time
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Kind,
		&s.Source,
		&s.Confidence,
		&s.State,
		&lat,
		&lon,
		&accuracy,
		&locatedAt,
		&s.StartedAt,
		&s.ActivatedAt,
		&s.EndedAt,
		&s.EmergencyServicesCalled,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil && locatedAt != nil {
		s.Location = &location.Sample{
			Lat:       *lat,
			Lon:       *lon,
			Accuracy:  accuracy,
			Timestamp: *locatedAt,
		}
	}
	return &s, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
