package order

import (
	"context"

	"coastalhub/internal/domain"
)

// Repository is the durable Order Store contract. Orders are owned by
// the store after insertion; callers only hold read projections.
type Repository interface {
	Insert(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	QueryByEmail(ctx context.Context, email string) ([]domain.Order, error)
	AdvanceStatus(ctx context.Context, id string, next domain.Status) (*domain.Order, error)
	MarkPaidBySession(ctx context.Context, sessionID string) (*domain.Order, error)
	DiscardPendingBySession(ctx context.Context, sessionID string) error
}
