package domain

import "time"

// Status is the closed order lifecycle enum. Transitions move forward
// only; StatusDelivered is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusPreparing Status = "preparing"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusReceived:  1,
	StatusPreparing: 2,
	StatusInTransit: 3,
	StatusDelivered: 4,
}

// ParseStatus maps a raw string onto the closed status set. Anything
// outside the set degrades to StatusReceived, the lowest-trust display
// state, with ok=false. It never fails.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	if _, known := statusRank[s]; known {
		return s, true
	}
	return StatusReceived, false
}

// Rank returns the position of the status in the forward-only chain.
// Unknown statuses rank as StatusReceived.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return statusRank[StatusReceived]
}

// CanAdvanceTo reports whether moving from s to next is a valid
// forward transition. Equal or backward moves are rejected, as is any
// move out of the terminal state.
func (s Status) CanAdvanceTo(next Status) bool {
	if s == StatusDelivered {
		return false
	}
	if _, known := statusRank[next]; !known {
		return false
	}
	return next.Rank() > s.Rank()
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered
}

// Order is an immutable-total record of a purchase. TotalCents is
// computed once at placement from the cart snapshot and never
// recomputed from live prices. Version is the ordering signal bumped
// by the store on every update.
type Order struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	Lines            []CartLine      `json:"lines"`
	TotalCents       int64           `json:"totalCents"`
	Status           Status          `json:"status"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod"`
	Customer         CustomerDetails `json:"customer"`
	GatewaySessionID string          `json:"gatewaySessionId,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
