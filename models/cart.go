package models

import "time"

// CartLine is one (product, quantity) pair. A product appears at most once
// per cart; re-adding bumps the quantity.
type CartLine struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Cart belongs to exactly one of a logged-in user or a guest session.
type Cart struct {
	UserID       string     `json:"userId,omitempty" bson:"userId,omitempty"`
	GuestSession string     `json:"guestSession,omitempty" bson:"guestSession,omitempty"`
	Items        []CartLine `json:"items" bson:"items"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ResolvedCartLine is a cart line joined with its live product document,
// used for display and at checkout.
type ResolvedCartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
