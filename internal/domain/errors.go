package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart indicates placement was attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStatusRegression indicates an attempted backward or
	// out-of-terminal status transition.
	ErrStatusRegression = errors.New("invalid status transition")
)

// ValidationError reports a missing or invalid input field. It is
// recovered locally and never leaves side effects behind.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid field: %s", e.Field)
}

// PaymentSetupError wraps a failed payment gateway session creation.
type PaymentSetupError struct {
	Err error
}

func (e *PaymentSetupError) Error() string {
	return fmt.Sprintf("payment setup failed: %v", e.Err)
}

func (e *PaymentSetupError) Unwrap() error { return e.Err }

// OrderPersistenceError wraps a failed order store write. Placement
// must not be reported successful, and the cart must not be cleared,
// when this occurs.
type OrderPersistenceError struct {
	Err error
}

func (e *OrderPersistenceError) Error() string {
	return fmt.Sprintf("order persistence failed: %v", e.Err)
}

func (e *OrderPersistenceError) Unwrap() error { return e.Err }
