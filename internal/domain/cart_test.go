package domain

import (
	"errors"
	"testing"
)

func TestCartLineKeyOrderIndependent(t *testing.T) {
	a := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Spice": "Hot", "Size": "Large"}, Quantity: 1}
	b := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Size": "Large", "Spice": "Hot"}, Quantity: 1}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	c := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Spice": "Mild"}, Quantity: 1}
	if a.Key() == c.Key() {
		t.Fatalf("different options produced same key %q", a.Key())
	}
}

func TestCartAddLineMergesSameKey(t *testing.T) {
	var cart Cart
	if err := cart.AddLine(CartLine{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: map[string]string{"Spice": "Hot"}, Quantity: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cart.AddLine(CartLine{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: map[string]string{"Spice": "Hot"}, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", cart.Lines[0].Quantity)
	}

	if err := cart.AddLine(CartLine{ProductID: "p1", UnitPriceCents: 399, SelectedOptions: map[string]string{"Spice": "Mild"}, Quantity: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", len(cart.Lines))
	}
}

func TestCartAddLineRejectsNonPositiveQuantity(t *testing.T) {
	var cart Cart
	err := cart.AddLine(CartLine{ProductID: "p1", Quantity: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "quantity" {
		t.Fatalf("expected quantity validation error, got %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("cart mutated on rejected add: %+v", cart.Lines)
	}
}

func TestCartTotalRecomputed(t *testing.T) {
	var cart Cart
	_ = cart.AddLine(CartLine{ProductID: "p1", UnitPriceCents: 399, Quantity: 2})
	_ = cart.AddLine(CartLine{ProductID: "p2", UnitPriceCents: 599, Quantity: 1})
	if got := cart.TotalCents(); got != 1397 {
		t.Fatalf("expected total 1397, got %d", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Fatalf("expected item count 3, got %d", got)
	}

	cart.Lines[0].Quantity = 5
	if got := cart.TotalCents(); got != 2594 {
		t.Fatalf("total went stale after direct mutation: %d", got)
	}
}

func TestCartSetQuantity(t *testing.T) {
	var cart Cart
	line := CartLine{ProductID: "p1", UnitPriceCents: 100, Quantity: 2}
	_ = cart.AddLine(line)

	if err := cart.SetQuantity(line.Key(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Lines[0].Quantity)
	}

	if err := cart.SetQuantity(line.Key(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart after zero quantity, got %+v", cart.Lines)
	}

	if err := cart.SetQuantity("missing", 3); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCartRemoveLineByKey(t *testing.T) {
	var cart Cart
	hot := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Spice": "Hot"}, Quantity: 1}
	mild := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Spice": "Mild"}, Quantity: 1}
	_ = cart.AddLine(hot)
	_ = cart.AddLine(mild)

	cart.RemoveLine(hot.Key())
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line after remove, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Key() != mild.Key() {
		t.Fatalf("wrong line removed, kept %q", cart.Lines[0].Key())
	}

	cart.RemoveLine("missing")
	if len(cart.Lines) != 1 {
		t.Fatalf("remove of missing key mutated cart")
	}
}

func TestCartSnapshotIsDeepCopy(t *testing.T) {
	var cart Cart
	_ = cart.AddLine(CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Spice": "Hot"}, Quantity: 1})

	snap := cart.Snapshot()
	cart.Lines[0].Quantity = 99
	cart.Lines[0].SelectedOptions["Spice"] = "Mild"

	if snap[0].Quantity != 1 {
		t.Fatalf("snapshot quantity mutated: %d", snap[0].Quantity)
	}
	if snap[0].SelectedOptions["Spice"] != "Hot" {
		t.Fatalf("snapshot options mutated: %v", snap[0].SelectedOptions)
	}
}

func TestCartLineOptionsSummary(t *testing.T) {
	line := CartLine{ProductID: "p1", SelectedOptions: map[string]string{"Size": "Large", "Spice": "Hot"}}
	if got := line.OptionsSummary(); got != "Size: Large, Spice: Hot" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := (CartLine{ProductID: "p1"}).OptionsSummary(); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}
