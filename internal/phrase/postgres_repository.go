package phrase

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL phrase repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LoadAll returns the catalog for a user in insertion order.
func (r *PostgresRepository) LoadAll(ctx context.Context, userID string) ([]TriggerPhrase, error) {
	query := `
		SELECT phrase, language, protocol
		FROM trigger_phrases
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phrases []TriggerPhrase
	for rows.Next() {
		var p TriggerPhrase
		if err := rows.Scan(&p.Phrase, &p.Language, &p.Protocol); err != nil {
			return nil, err
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

// ReplaceAll atomically replaces the user's catalog inside one transaction,
// so a concurrent LoadAll never observes a half-written table.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, userID string, phrases []TriggerPhrase) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM trigger_phrases WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("clear phrase catalog: %w", err)
		}

		query := `
			INSERT INTO trigger_phrases (user_id, position, phrase, language, protocol)
			VALUES ($1, $2, $3, $4, $5)
		`
		for i, p := range phrases {
			if _, err := tx.Exec(ctx, query, userID, i, p.Phrase, p.Language, p.Protocol); err != nil {
				return fmt.Errorf("insert phrase %d: %w", i, err)
			}
		}
		return nil
	})
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
