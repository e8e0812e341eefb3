package domain

import (
	"sort"
	"strings"
)

// CartLine is one product+options+quantity tuple in a session cart.
type CartLine struct {
	ProductID       string            `json:"productId"`
	ProductName     string            `json:"productName"`
	UnitPriceCents  int64             `json:"unitPriceCents"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	Quantity        int               `json:"quantity"`
}

// Key returns the line identity key: product ID plus a canonical,
// order-independent serialization of the selected options. Two lines
// with the same key are the same logical line and must be merged.
func (l CartLine) Key() string {
	if len(l.SelectedOptions) == 0 {
		return l.ProductID
	}
	names := make([]string, 0, len(l.SelectedOptions))
	for name := range l.SelectedOptions {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(l.ProductID)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(l.SelectedOptions[name])
	}
	return b.String()
}

// TotalCents is the line subtotal.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// OptionsSummary renders the selected options for display and for
// gateway line items, e.g. "Spice: Hot, Size: Large".
func (l CartLine) OptionsSummary() string {
	if len(l.SelectedOptions) == 0 {
		return ""
	}
	names := make([]string, 0, len(l.SelectedOptions))
	for name := range l.SelectedOptions {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+l.SelectedOptions[name])
	}
	return strings.Join(parts, ", ")
}

// Cart is session-local shopping state. Lines keep insertion order for
// display; totals do not depend on it.
//
// Invariants held by every mutation: no two lines share an identity
// key, and no line has quantity <= 0.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Lines     []CartLine `json:"lines"`
}

// AddLine merges the given line into the cart. A line with the same
// identity key has its quantity incremented; otherwise the line is
// appended. Quantity must be positive.
func (c *Cart) AddLine(line CartLine) error {
	if line.Quantity <= 0 {
		return &ValidationError{Field: "quantity"}
	}
	if strings.TrimSpace(line.ProductID) == "" {
		return &ValidationError{Field: "productId"}
	}
	key := line.Key()
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	return nil
}

// RemoveLine removes the line with the given identity key. Removing a
// key that is not present is a no-op.
func (c *Cart) RemoveLine(key string) {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity on the line with the given identity
// key. A quantity <= 0 removes the line instead.
func (c *Cart) SetQuantity(key string, quantity int) error {
	if quantity <= 0 {
		c.RemoveLine(key)
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity = quantity
			return nil
		}
	}
	return ErrNotFound
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalCents recomputes the cart total from current lines on every
// call; it is never cached.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.TotalCents()
	}
	return total
}

// ItemCount recomputes the summed quantity across lines.
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Snapshot returns a deep copy of the lines, safe to hand to an order
// after the cart is cleared or mutated.
func (c Cart) Snapshot() []CartLine {
	if len(c.Lines) == 0 {
		return nil
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if len(lines[i].SelectedOptions) == 0 {
			continue
		}
		opts := make(map[string]string, len(lines[i].SelectedOptions))
		for k, v := range lines[i].SelectedOptions {
			opts[k] = v
		}
		lines[i].SelectedOptions = opts
	}
	return lines
}
