package services

import (
	"errors"
	"fmt"
)

// Caller-facing error taxonomy for the checkout and cancellation flows.
// Validation-phase failures guarantee zero side effects; mid-saga failures
// are reported after their compensating actions have run.
var (
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrInvalidCartState          = errors.New("cart references no existing products")
	ErrInsufficientFunds         = errors.New("insufficient wallet balance")
	ErrMissingReference          = errors.New("payment reference is required")
	ErrDuplicateReference        = errors.New("payment reference already processed")
	ErrPaymentNotSettled         = errors.New("payment is not settled")
	ErrPaymentGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrOrderNotFound             = errors.New("order not found")
	ErrNotCancellable            = errors.New("order can no longer be cancelled")
)

// Registration and login failures.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientStockError names the offending item of a failed reservation.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d)", e.ProductID, e.Requested)
}

// AmountMismatchError surfaces both sides of a failed payment amount check,
// in minor currency units.
type AmountMismatchError struct {
	Paid     int64
	Expected int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount mismatch (paid: %d, expected: %d)", e.Paid, e.Expected)
}
