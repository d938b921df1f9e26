package medical

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

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a user's medical profile.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, blood_type, allergies, medications, conditions, emergency_notes, updated_at
		FROM medical_profiles WHERE user_id = $1
	`

	var p Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.BloodType,
		&p.Allergies,
		&p.Medications,
		&p.Conditions,
		&p.EmergencyNotes,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Upsert creates or replaces a user's medical profile.
func (r *PostgresRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO medical_profiles (user_id, blood_type, allergies, medications, conditions, emergency_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			blood_type = EXCLUDED.blood_type,
			allergies = EXCLUDED.allergies,
			medications = EXCLUDED.medications,
			conditions = EXCLUDED.conditions,
			emergency_notes = EXCLUDED.emergency_notes,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		p.UserID,
		p.BloodType,
		p.Allergies,
		p.Medications,
		p.Conditions,
		p.EmergencyNotes,
		p.UpdatedAt,
	)
	return err
}

// Delete removes a user's medical profile.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM medical_profiles WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
