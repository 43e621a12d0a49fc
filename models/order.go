package models

import "time"

// Order statuses. Transitions only move forward along
// processing → in-transit → delivered, with the single exception of
// processing → cancelled.
const (
	StatusProcessing = "processing"
	StatusInTransit  = "in-transit"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// DeliveryAddress must be complete (all eight fields non-empty after
// trimming) before an order is accepted.
type DeliveryAddress struct {
	FirstName  string `json:"firstName" bson:"firstName"`
	LastName   string `json:"lastName" bson:"lastName"`
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Province   string `json:"province" bson:"province"`
	Country    string `json:"country" bson:"country"`
	Phone      string `json:"phone" bson:"phone"`
}

// OrderItem captures the product reference, name and unit price at
// placement time. Later catalog edits never touch it.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// Order is immutable once written except for Status.
type Order struct {
	OrderID         string          `json:"orderId" bson:"orderId"`
	UserID          string          `json:"userId" bson:"userId"`
	Items           []OrderItem     `json:"items" bson:"items"`
	TotalPrice      float64         `json:"totalPrice" bson:"totalPrice"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress" bson:"deliveryAddress"`
	Status          string          `json:"status" bson:"status"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
}
