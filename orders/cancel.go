package orders

import (
	"context"

	"mjolnir/models"
)

// CancelOrderStore looks up and conditionally flips orders for the
// cancellation workflow.
type CancelOrderStore interface {
	Find(ctx context.Context, orderID string) (models.Order, error)
	MarkCancelled(ctx context.Context, orderID string) error
}

// InvoiceStore cancels the invoice attached to an order, when the
// dispatcher already wrote one.
type InvoiceStore interface {
	Cancel(ctx context.Context, orderID string) error
}

// TxnRunner executes fn atomically. The Mongo implementation runs fn
// inside a multi-document transaction.
type TxnRunner interface {
	Run(ctx context.Context, fn func(context.Context) error) error
}

// Canceller reverses a processing order: the status flips to cancelled,
// every line's stock is restored and the invoice is cancelled, all or
// nothing. The conditional status flip means a concurrent cancel or
// transition loses the race instead of double-restoring stock.
type Canceller struct {
	Products ProductStore
	Orders   CancelOrderStore
	Invoices InvoiceStore
	Txn      TxnRunner
}

// Cancel flips a processing order to cancelled and restores its stock.
// Orders past processing are rejected with ErrIllegalTransition and left
// untouched.
func (c *Canceller) Cancel(ctx context.Context, orderID string) (models.Order, error) {
	order, err := c.Orders.Find(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status != models.StatusProcessing {
		return models.Order{}, ErrIllegalTransition
	}

	err = c.Txn.Run(ctx, func(tc context.Context) error {
		if err := c.Orders.MarkCancelled(tc, order.OrderID); err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := c.Products.Release(tc, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return c.Invoices.Cancel(tc, order.OrderID)
	})
	if err != nil {
		return models.Order{}, err
	}

	order.Status = models.StatusCancelled
	return order, nil
}
