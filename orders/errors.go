package orders

import "errors"

// Failure classes the placement and status workflows surface. Handlers
// translate these to HTTP statuses; anything else is a store error (500).
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrIncompleteAddress = errors.New("delivery address is incomplete")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// InsufficientStockError names the first under-stocked product so the
// caller knows what to fix. Unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID string
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for: " + e.Name
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
