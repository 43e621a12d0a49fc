package db

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	Client *mongo.Client

	UserCollection     *mongo.Collection
	ProductCollection  *mongo.Collection
	CategoryCollection *mongo.Collection
	CartCollection     *mongo.Collection
	OrderCollection    *mongo.Collection
	InvoiceCollection  *mongo.Collection
	RefundCollection   *mongo.Collection
	OutboxCollection   *mongo.Collection
)

// Connect dials MongoDB and binds the named collections. Called once from
// main; packages that only touch pure logic stay importable without a
// running mongod.
func Connect(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "guitarstore"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	Client = client

	database := client.Database(dbName)
	UserCollection = database.Collection("users")
	ProductCollection = database.Collection("products")
	CategoryCollection = database.Collection("categories")
	CartCollection = database.Collection("carts")
	OrderCollection = database.Collection("orders")
	InvoiceCollection = database.Collection("invoices")
	RefundCollection = database.Collection("refunds")
	OutboxCollection = database.Collection("outbox")

	return nil
}

// EnsureIndexes creates the indexes the queries rely on. Sparse unique
// owner indexes keep one cart per user and one per guest session.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := CartCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "guestSession", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return err
	}

	if _, err = ProductCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "brand", Value: "text"}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}); err != nil {
		return err
	}

	if _, err = OrderCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return err
	}

	if _, err = InvoiceCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: 1}},
	}); err != nil {
		return err
	}

	_, err = OutboxCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}
