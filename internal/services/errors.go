package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ValidationError names the offending input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error()}
}

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrImageNotFound           = errors.New("image not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// InsufficientStockError reports the first cart line that cannot be served.
// Available is 0 for products that are no longer sold.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): requested %d, available %d", e.ProductName, e.ProductID, e.Requested, e.Available)
}

// OrderPlacementFailedError wraps any failure after validation passed. The
// transaction has been rolled back when this is returned.
type OrderPlacementFailedError struct {
	Cause error
}

func (e *OrderPlacementFailedError) Error() string {
	return fmt.Sprintf("order placement failed: %v", e.Cause)
}

func (e *OrderPlacementFailedError) Unwrap() error {
	return e.Cause
}

var ErrCartItemNotFound = errors.New("cart item not found")
