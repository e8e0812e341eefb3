package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coastalhub/internal/cartstore"
	"coastalhub/internal/domain"
)

func newService() *Service {
	return New(cartstore.NewMemory())
}

func TestAddItemNewSession(t *testing.T) {
	svc := newService()
	cart, err := svc.AddItem(context.Background(), "s1", AddItemInput{
		ProductID: "p1", ProductName: "Pilau", UnitPriceCents: 1299, Quantity: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", cart.Lines)
	}
	if cart.TotalCents() != 2598 {
		t.Fatalf("unexpected total: %d", cart.TotalCents())
	}
}

func TestAddItemMergesAcrossCalls(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	opts := map[string]string{"Spice": "Hot"}

	if _, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: opts, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: map[string]string{"Spice": "Hot"}, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line qty 3, got %+v", cart.Lines)
	}

	cart, err = svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: map[string]string{"Spice": "Mild"}, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected two distinct lines, got %+v", cart.Lines)
	}
}

func TestAddItemValidation(t *testing.T) {
	svc := newService()
	_, err := svc.AddItem(context.Background(), "s1", AddItemInput{ProductID: "p1", Quantity: 0})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	cart, err := svc.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("rejected add left state behind: %+v", cart.Lines)
	}
}

func TestCartsAreSessionScoped(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 100, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, err := svc.Get(ctx, "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.IsEmpty() {
		t.Fatalf("cart leaked across sessions: %+v", other.Lines)
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	cart, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 100, Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := cart.Lines[0].Key()

	cart, err = svc.UpdateQuantity(ctx, "s1", key, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", cart.Lines[0].Quantity)
	}

	cart, err = svc.UpdateQuantity(ctx, "s1", key, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Lines)
	}

	if _, err := svc.UpdateQuantity(ctx, "s1", "missing", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClear(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 100, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected cleared cart, got %+v", cart.Lines)
	}
}

func TestAddItemConcurrentSameKey(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	// Overlapping requests for one session (two open tabs) must not
	// lose each other's writes.
	const adds = 20
	var wg sync.WaitGroup
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddItem(ctx, "s1", AddItemInput{ProductID: "p1", UnitPriceCents: 399, Quantity: 1}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	cart, err := svc.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != adds {
		t.Fatalf("expected one line with quantity %d, got %+v", adds, cart.Lines)
	}
}
