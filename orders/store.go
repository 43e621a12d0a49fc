package orders

import (
	"context"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/rdx"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OutboxChannel is the Redis channel the dispatch worker listens on.
const OutboxChannel = "order-events"

// Mongo-backed implementations of the saga's store contracts.

type MongoProductStore struct{}

// Reserve is the per-product atomic conditional decrement: it only
// matches while quantityInStock covers the request, so stock never goes
// negative and concurrent placements for the last unit admit one winner.
func (MongoProductStore) Reserve(ctx context.Context, productID string, qty int) error {
	res, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"productId": productID, "quantityInStock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantityInStock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (MongoProductStore) Release(ctx context.Context, productID string, qty int) error {
	_, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"productId": productID},
		bson.M{"$inc": bson.M{"quantityInStock": qty}},
	)
	return err
}

type MongoOrderStore struct{}

func (MongoOrderStore) Insert(ctx context.Context, order models.Order) error {
	_, err := db.OrderCollection.InsertOne(ctx, order)
	return err
}

func (MongoOrderStore) Find(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// MarkCancelled only matches while the order is still processing; a miss
// means a concurrent cancel or transition got there first.
func (MongoOrderStore) MarkCancelled(ctx context.Context, orderID string) error {
	res, err := db.OrderCollection.UpdateOne(ctx,
		bson.M{"orderId": orderID, "status": models.StatusProcessing},
		bson.M{"$set": bson.M{"status": models.StatusCancelled}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrIllegalTransition
	}
	return nil
}

type MongoInvoiceStore struct{}

func (MongoInvoiceStore) Cancel(ctx context.Context, orderID string) error {
	_, err := db.InvoiceCollection.UpdateOne(ctx,
		bson.M{"orderId": orderID},
		bson.M{"$set": bson.M{"status": "cancelled"}},
	)
	return err
}

// MongoTxn runs fn inside one multi-document transaction.
type MongoTxn struct{}

func (MongoTxn) Run(ctx context.Context, fn func(context.Context) error) error {
	session, err := db.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

type MongoCartStore struct{}

// Clear empties the cart document rather than deleting it.
func (MongoCartStore) Clear(ctx context.Context, userID string) error {
	_, err := db.CartCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.CartLine{}, "updatedAt": time.Now()}},
	)
	return err
}

type MongoOutbox struct{}

// Enqueue writes the durable intent record, then nudges the worker over
// Redis. The nudge is best-effort; the ticker sweep picks up anything the
// nudge misses.
func (MongoOutbox) Enqueue(ctx context.Context, orderID string) error {
	entry := models.OutboxEntry{
		EntryID:   uuid.New().String(),
		OrderID:   orderID,
		Kind:      "order-placed",
		Status:    models.OutboxPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := db.OutboxCollection.InsertOne(ctx, entry); err != nil {
		return err
	}
	rdx.Publish(OutboxChannel, entry.EntryID)
	return nil
}

// NewSaga wires the placement saga to MongoDB.
func NewSaga() *Saga {
	return &Saga{
		Products: MongoProductStore{},
		Orders:   MongoOrderStore{},
		Carts:    MongoCartStore{},
		Outbox:   MongoOutbox{},
	}
}

// NewCanceller wires the cancellation workflow to MongoDB.
func NewCanceller() *Canceller {
	return &Canceller{
		Products: MongoProductStore{},
		Orders:   MongoOrderStore{},
		Invoices: MongoInvoiceStore{},
		Txn:      MongoTxn{},
	}
}
