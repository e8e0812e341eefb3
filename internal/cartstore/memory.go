package cartstore

import (
	"context"
	"sync"

	"coastalhub/internal/domain"
)

type memoryStore struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

// NewMemory builds an in-process Store. Used in tests and single-node
// dev setups where Redis is not running.
func NewMemory() Store {
	return &memoryStore{carts: make(map[string]domain.Cart)}
}

func (s *memoryStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cart.Lines = cart.Snapshot()
	return &cart, nil
}

// Update holds the store lock across the read-modify-write, giving the
// same no-lost-update guarantee the Redis implementation gets from
// WATCH.
func (s *memoryStore) Update(_ context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := domain.Cart{SessionID: sessionID}
	if stored, ok := s.carts[sessionID]; ok {
		cart = stored
		cart.Lines = stored.Snapshot()
	}

	if err := fn(&cart); err != nil {
		return nil, err
	}

	stored := cart
	stored.Lines = cart.Snapshot()
	s.carts[sessionID] = stored
	return &cart, nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
