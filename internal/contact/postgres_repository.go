package contact

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

// NewPostgresRepository creates a new PostgreSQL contact repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const contactColumns = `
	id, user_id, name, phone, email, relationship,
	tier, notify_via, can_see_medical_info, priority, created_at, updated_at
`

// Get retrieves a contact by user and contact ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, contactID string) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM emergency_contacts WHERE id = $1 AND user_id = $2`

	var c Contact
	err := r.pool.QueryRow(ctx, query, contactID, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Relationship,
		&c.Tier,
		&c.NotifyVia,
		&c.CanSeeMedicalInfo,
		&c.Priority,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List retrieves a user's contacts in dispatch order: primaries first,
// ascending priority within each tier.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM emergency_contacts
		WHERE user_id = $1
		ORDER BY (tier = 'primary') DESC, priority ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		var c Contact
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Phone,
			&c.Email,
			&c.Relationship,
			&c.Tier,
			&c.NotifyVia,
			&c.CanSeeMedicalInfo,
			&c.Priority,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Create creates a new contact.
func (r *PostgresRepository) Create(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO emergency_contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Phone,
		c.Email,
		c.Relationship,
		c.Tier,
		c.NotifyVia,
		c.CanSeeMedicalInfo,
		c.Priority,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// Update updates an existing contact.
func (r *PostgresRepository) Update(ctx context.Context, c *Contact) error {
	query := `
		UPDATE emergency_contacts SET
			name = $2,
			phone = $3,
			email = $4,
			relationship = $5,
			tier = $6,
			notify_via = $7,
			can_see_medical_info = $8,
			priority = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Relationship,
		c.Tier,
		c.NotifyVia,
		c.CanSeeMedicalInfo,
		c.Priority,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

// Delete deletes a contact by user and contact ID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, contactID string) error {
	query := `DELETE FROM emergency_contacts WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, contactID, userID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
