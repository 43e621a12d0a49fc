package models

import "time"

// InvoiceItem captures sale price and cost per unit at time of sale, so
// revenue and profit reports stay correct after catalog price changes.
type InvoiceItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Cost      float64 `json:"cost" bson:"cost"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// Invoice has a lifecycle independent of its order: it can be marked
// refunded or cancelled on its own.
type Invoice struct {
	InvoiceID     string        `json:"invoiceId" bson:"invoiceId"`
	OrderID       string        `json:"orderId" bson:"orderId"`
	Customer      string        `json:"customer" bson:"customer"`
	Items         []InvoiceItem `json:"items" bson:"items"`
	Total         float64       `json:"total" bson:"total"`
	PaymentStatus string        `json:"paymentStatus" bson:"paymentStatus"` // paid, pending, refunded
	Status        string        `json:"status" bson:"status"`               // active, refunded, cancelled
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// RefundRequest is raised by a customer against a delivered order line and
// resolved by a sales manager.
type RefundRequest struct {
	RefundID  string    `json:"refundId" bson:"refundId"`
	OrderID   string    `json:"orderId" bson:"orderId"`
	ProductID string    `json:"productId" bson:"productId"`
	Customer  string    `json:"customer" bson:"customer"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Status    string    `json:"status" bson:"status"` // pending, approved, rejected
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
