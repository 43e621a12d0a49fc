package invoices

import (
	"context"
	"time"

	"mjolnir/db"
	"mjolnir/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordSale writes the invoice document for a placed order, capturing
// sale price and unit cost at time of sale for later revenue reporting.
// Idempotent per order: a rerun for an already-invoiced order returns the
// existing record.
func RecordSale(ctx context.Context, order models.Order) (models.Invoice, error) {
	var existing models.Invoice
	err := db.InvoiceCollection.FindOne(ctx, bson.M{"orderId": order.OrderID}).Decode(&existing)
	if err == nil {
		return existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Invoice{}, err
	}

	items := make([]models.InvoiceItem, 0, len(order.Items))
	for _, item := range order.Items {
		cost := 0.0
		var product models.Product
		if err := db.ProductCollection.FindOne(ctx, bson.M{"productId": item.ProductID}).Decode(&product); err == nil {
			cost = product.Cost
		}
		items = append(items, models.InvoiceItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Cost:      cost,
			Quantity:  item.Quantity,
		})
	}

	invoice := models.Invoice{
		InvoiceID:     uuid.New().String(),
		OrderID:       order.OrderID,
		Customer:      order.UserID,
		Items:         items,
		Total:         order.TotalPrice,
		PaymentStatus: "paid",
		Status:        "active",
		CreatedAt:     time.Now(),
	}
	if _, err := db.InvoiceCollection.InsertOne(ctx, invoice); err != nil {
		return models.Invoice{}, err
	}
	return invoice, nil
}

// FindByDateRange returns invoices created inside [start, end], newest
// first.
func FindByDateRange(ctx context.Context, start, end time.Time) ([]models.Invoice, error) {
	cursor, err := db.InvoiceCollection.Find(ctx,
		bson.M{"createdAt": bson.M{"$gte": start, "$lte": end}},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}
