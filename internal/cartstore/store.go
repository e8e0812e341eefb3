package cartstore

import (
	"context"

	"coastalhub/internal/domain"
)

// Store persists one cart per session. A session that has never added
// an item has no stored cart; Get returns domain.ErrNotFound for it.
//
// Update is an atomic read-modify-write: fn receives the current cart
// (or a fresh one for a new session) and the result is saved only if
// no concurrent write to the same session intervened, so two
// overlapping mutations cannot lose each other's lines. An error from
// fn aborts the update with nothing written.
type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}
