package driver

import (
	"context"

	"coastalhub/internal/domain"
)

// Repository holds the single current driver location per order.
type Repository interface {
	Upsert(ctx context.Context, loc domain.DriverLocation) error
	GetByOrder(ctx context.Context, orderID string) (*domain.DriverLocation, error)
}
