package models

import "time"

// Product is the catalog entry. Price is only visible to plain customers
// once a sales manager has set it (PriceSet). Cost defaults to half the
// price when not supplied. OriginalPrice is captured the first time a
// discount is applied so later price math never compounds on an already
// discounted figure.
type Product struct {
	ProductID          string    `json:"productId" bson:"productId"`
	Name               string    `json:"name" bson:"name"`
	Model              string    `json:"model,omitempty" bson:"model,omitempty"`
	Description        string    `json:"description,omitempty" bson:"description,omitempty"`
	Category           string    `json:"category" bson:"category"`
	Brand              string    `json:"brand,omitempty" bson:"brand,omitempty"`
	Image              string    `json:"image,omitempty" bson:"image,omitempty"`
	QuantityInStock    int       `json:"quantityInStock" bson:"quantityInStock"`
	Price              float64   `json:"price" bson:"price"`
	PriceSet           bool      `json:"priceSet" bson:"priceSet"`
	Cost               float64   `json:"cost" bson:"cost"`
	DiscountPercentage float64   `json:"discountPercentage" bson:"discountPercentage"`
	OriginalPrice      float64   `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Category struct {
	CategoryID string    `json:"categoryId" bson:"categoryId"`
	Name       string    `json:"name" bson:"name"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
