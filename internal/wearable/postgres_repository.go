package wearable

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

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const deviceColumns = `
	id, user_id, name, type, connected, battery_level,
	last_sync_at, created_at, updated_at
`

// Get retrieves a device by user and device ID.
func (r *PostgresRepository) Get(ctx context.Context, userID, deviceID string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM wearable_devices WHERE id = $1 AND user_id = $2`

	var device Device
	err := r.pool.QueryRow(ctx, query, deviceID, userID).Scan(
		&device.ID,
		&device.UserID,
		&device.Name,
		&device.Type,
		&device.Connected,
		&device.BatteryLevel,
		&device.LastSyncAt,
		&device.CreatedAt,
		&device.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

// ListByUser retrieves all devices for a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM wearable_devices WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		var device Device
		err := rows.Scan(
			&device.ID,
			&device.UserID,
			&device.Name,
			&device.Type,
			&device.Connected,
			&device.BatteryLevel,
			&device.LastSyncAt,
			&device.CreatedAt,
			&device.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &device)
	}
	return devices, rows.Err()
}

// Upsert creates or updates a device registration.
func (r *PostgresRepository) Upsert(ctx context.Context, device *Device) (bool, error) {
	query := `
		INSERT INTO wearable_devices (` + deviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			connected = EXCLUDED.connected,
			battery_level = EXCLUDED.battery_level,
			last_sync_at = EXCLUDED.last_sync_at,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)
	`

	var created bool
	err := r.pool.QueryRow(ctx, query,
		device.ID,
		device.UserID,
		device.Name,
		device.Type,
		device.Connected,
		device.BatteryLevel,
		device.LastSyncAt,
		device.CreatedAt,
		device.UpdatedAt,
	).Scan(&created)
	return created, err
}

// Delete removes a device registration.
func (r *PostgresRepository) Delete(ctx context.Context, userID, deviceID string) error {
	query := `DELETE FROM wearable_devices WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, deviceID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
