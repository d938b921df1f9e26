package geofence

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

// NewPostgresRepository creates a new PostgreSQL zone repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const zoneColumns = `
	id, user_id, name, center_lat, center_lon, radius_meters,
	kind, active, notify, created_at, updated_at
`

// Get retrieves a zone by user and zone ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, zoneID string) (*Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM geofence_zones WHERE id = $1 AND user_id = $2`

	var zone Zone
	err := r.pool.QueryRow(ctx, query, zoneID, userID).Scan(
		&zone.ID,
		&zone.UserID,
		&zone.Name,
		&zone.CenterLat,
		&zone.CenterLon,
		&zone.RadiusMeters,
		&zone.Kind,
		&zone.Active,
		&zone.Notify,
		&zone.CreatedAt,
		&zone.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return &zone, nil
}

// List retrieves all zones for a user in registration order.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM geofence_zones WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []Zone
	for rows.Next() {
		var zone Zone
		err := rows.Scan(
			&zone.ID,
			&zone.UserID,
			&zone.Name,
			&zone.CenterLat,
			&zone.CenterLon,
			&zone.RadiusMeters,
			&zone.Kind,
			&zone.Active,
			&zone.Notify,
			&zone.CreatedAt,
			&zone.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

// Create creates a new zone.
func (r *PostgresRepository) Create(ctx context.Context, zone *Zone) error {
	query := `
		INSERT INTO geofence_zones (` + zoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		zone.ID,
		zone.UserID,
		zone.Name,
		zone.CenterLat,
		zone.CenterLon,
		zone.RadiusMeters,
		zone.Kind,
		zone.Active,
		zone.Notify,
		zone.CreatedAt,
		zone.UpdatedAt,
	)
	return err
}

// Update updates an existing zone.
func (r *PostgresRepository) Update(ctx context.Context, zone *Zone) error {
	query := `
		UPDATE geofence_zones SET
			name = $2,
			center_lat = $3,
			center_lon = $4,
			radius_meters = $5,
			kind = $6,
			active = $7,
			notify = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		zone.ID,
		zone.Name,
		zone.CenterLat,
		zone.CenterLon,
		zone.RadiusMeters,
		zone.Kind,
		zone.Active,
		zone.Notify,
		zone.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrZoneNotFound
	}
	return nil
}

// Delete deletes a zone by user and zone ID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, zoneID string) error {
	query := `DELETE FROM geofence_zones WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, zoneID, userID)
	return err
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
