package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"mjolnir/models"
	"mjolnir/utils"

	"github.com/google/uuid"
)

// The placement workflow runs against these narrow store contracts so the
// saga can be exercised with in-process fakes.

// ProductStore reserves and releases stock. Reserve must be atomic per
// product: it either decrements quantityInStock by qty while the stock
// covers it, or fails with ErrInsufficientStock without changing anything.
type ProductStore interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

// OrderStore persists the immutable order record.
type OrderStore interface {
	Insert(ctx context.Context, order models.Order) error
}

// CartStore empties (not deletes) the owner's cart.
type CartStore interface {
	Clear(ctx context.Context, userID string) error
}

// Outbox records the durable dispatch intent for a placed order.
type Outbox interface {
	Enqueue(ctx context.Context, orderID string) error
}

// Saga sequences order placement: reserve stock, write the order, clear
// the cart, enqueue dispatch. Reservation is the serialization point — it
// decides before the order insert, so two placements racing for the last
// unit cannot both produce an order. Steps after the insert are
// best-effort and never roll the order back.
type Saga struct {
	Products ProductStore
	Orders   OrderStore
	Carts    CartStore
	Outbox   Outbox
}

// PlacementInput is a resolved cart snapshot plus the delivery address.
type PlacementInput struct {
	UserID  string
	Lines   []models.ResolvedCartLine
	Address models.DeliveryAddress
}

// PlacementResult reports the created order and whether the non-fatal
// tail steps landed. CartCleared=false means "order placed, cart not
// cleared" and is surfaced to the caller.
type PlacementResult struct {
	Order       models.Order
	CartCleared bool
	Dispatched  bool
}

// ValidateAddress checks all eight delivery address fields are non-empty
// after trimming.
func ValidateAddress(a models.DeliveryAddress) error {
	fields := []string{
		a.FirstName, a.LastName, a.Address, a.City,
		a.PostalCode, a.Province, a.Country, a.Phone,
	}
	for _, f := range fields {
		if utils.TrimmedEmpty(f) {
			return ErrIncompleteAddress
		}
	}
	return nil
}

// Place runs the placement saga. Validation failures return before any
// mutation. A reservation failure mid-list releases the lines already
// reserved. An order insert failure releases the whole reservation. Cart
// clear and outbox enqueue failures are logged and reported, never fatal.
func (s *Saga) Place(ctx context.Context, in PlacementInput) (PlacementResult, error) {
	if len(in.Lines) == 0 {
		return PlacementResult{}, ErrEmptyCart
	}
	if err := ValidateAddress(in.Address); err != nil {
		return PlacementResult{}, err
	}
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return PlacementResult{}, fmt.Errorf("%w: invalid quantity for %s", ErrEmptyCart, line.Product.ProductID)
		}
	}

	reserved, err := s.reserve(ctx, in.Lines)
	if err != nil {
		return PlacementResult{}, err
	}

	order := buildOrder(in)
	if err := s.Orders.Insert(ctx, order); err != nil {
		s.release(ctx, reserved)
		return PlacementResult{}, fmt.Errorf("order insert failed: %w", err)
	}

	result := PlacementResult{Order: order, CartCleared: true, Dispatched: true}

	if err := s.Carts.Clear(ctx, in.UserID); err != nil {
		log.Printf("order %s placed but cart not cleared: %v", order.OrderID, err)
		result.CartCleared = false
	}

	if err := s.Outbox.Enqueue(ctx, order.OrderID); err != nil {
		log.Printf("order %s placed but dispatch not enqueued: %v", order.OrderID, err)
		result.Dispatched = false
	}

	return result, nil
}

// reserve conditionally decrements stock line by line. On failure the
// already-reserved prefix is released before returning.
func (s *Saga) reserve(ctx context.Context, lines []models.ResolvedCartLine) ([]models.ResolvedCartLine, error) {
	for i, line := range lines {
		err := s.Products.Reserve(ctx, line.Product.ProductID, line.Quantity)
		if err == nil {
			continue
		}
		s.release(ctx, lines[:i])
		if err == ErrInsufficientStock {
			return nil, &InsufficientStockError{
				ProductID: line.Product.ProductID,
				Name:      line.Product.Name,
			}
		}
		return nil, fmt.Errorf("stock reservation failed: %w", err)
	}
	return lines, nil
}

func (s *Saga) release(ctx context.Context, lines []models.ResolvedCartLine) {
	for _, line := range lines {
		if err := s.Products.Release(ctx, line.Product.ProductID, line.Quantity); err != nil {
			// Stock is now stale until an operator reconciles; the order
			// itself is unaffected.
			log.Printf("failed to release %d unit(s) of %s: %v",
				line.Quantity, line.Product.ProductID, err)
		}
	}
}

// buildOrder snapshots the cart into an immutable order. Unit prices come
// from the live product documents, not any cart-cached figure.
func buildOrder(in PlacementInput) models.Order {
	items := make([]models.OrderItem, 0, len(in.Lines))
	total := 0.0
	for _, line := range in.Lines {
		items = append(items, models.OrderItem{
			ProductID: line.Product.ProductID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
		total += float64(line.Quantity) * line.Product.Price
	}
	return models.Order{
		OrderID:         uuid.New().String(),
		UserID:          in.UserID,
		Items:           items,
		TotalPrice:      total,
		DeliveryAddress: in.Address,
		Status:          models.StatusProcessing,
		CreatedAt:       time.Now(),
	}
}
