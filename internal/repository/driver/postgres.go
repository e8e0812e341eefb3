package driver

import (
	"context"
	"errors"

	"coastalhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Upsert replaces the order's location wholesale, but only with a
// newer observation. A stale or duplicate record is dropped here so it
// never reaches subscribers through the change feed either.
func (r *postgresRepo) Upsert(ctx context.Context, loc domain.DriverLocation) error {
	const q = `
INSERT INTO driver_locations (order_id, latitude, longitude, driver_name, observed_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (order_id) DO UPDATE
SET latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    driver_name = EXCLUDED.driver_name,
    observed_at = EXCLUDED.observed_at
WHERE driver_locations.observed_at < EXCLUDED.observed_at
`
	_, err := r.pool.Exec(ctx, q, loc.OrderID, loc.Latitude, loc.Longitude, loc.DriverName, loc.ObservedAt)
	return err
}

func (r *postgresRepo) GetByOrder(ctx context.Context, orderID string) (*domain.DriverLocation, error) {
	const q = `
SELECT order_id::text, latitude, longitude, driver_name, observed_at
FROM driver_locations
WHERE order_id = $1
`
	var loc domain.DriverLocation
	err := r.pool.QueryRow(ctx, q, orderID).Scan(
		&loc.OrderID,
		&loc.Latitude,
		&loc.Longitude,
		&loc.DriverName,
		&loc.ObservedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}
