package cart

import (
	"context"
	"errors"

	"coastalhub/internal/cartstore"
	"coastalhub/internal/domain"
)

// Service is the cart aggregator. Each session owns exactly one cart;
// mutations run through the store's atomic Update, so overlapping
// requests for the same session (two tabs, a double-tap) merge instead
// of losing writes.
type Service struct {
	store cartstore.Store
}

func New(store cartstore.Store) *Service {
	return &Service{store: store}
}

// AddItemInput carries the product fields the caller selected. The
// catalog is external static data, so the line is described inline.
type AddItemInput struct {
	ProductID       string            `json:"productId"`
	ProductName     string            `json:"productName"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	Quantity        int               `json:"quantity"`
}

// Get returns the session cart, or a fresh empty cart if the session
// has not stored one yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Cart{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem merges the item into the session cart and returns the
// updated cart.
func (s *Service) AddItem(ctx context.Context, sessionID string, in AddItemInput) (*domain.Cart, error) {
	if in.UnitPriceCents < 0 {
		return nil, &domain.ValidationError{Field: "unitPriceCents"}
	}
	line := domain.CartLine{
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		UnitPriceCents:  in.UnitPriceCents,
		SelectedOptions: in.SelectedOptions,
		Quantity:        in.Quantity,
	}
	return s.store.Update(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.AddLine(line)
	})
}

// RemoveItem removes the line with the given identity key.
func (s *Service) RemoveItem(ctx context.Context, sessionID, lineKey string) (*domain.Cart, error) {
	return s.store.Update(ctx, sessionID, func(cart *domain.Cart) error {
		cart.RemoveLine(lineKey)
		return nil
	})
}

// UpdateQuantity sets the quantity on the line with the given identity
// key; a quantity <= 0 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineKey string, quantity int) (*domain.Cart, error) {
	return s.store.Update(ctx, sessionID, func(cart *domain.Cart) error {
		return cart.SetQuantity(lineKey, quantity)
	})
}

// Clear empties the session cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
