package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplyPricing returns the product with a new base price and/or discount
// applied. A new base price becomes the product's original price and
// clears any discount. A discount always derives from OriginalPrice —
// applying 10% twice yields the same price as applying it once, never a
// compounded cut. Cost defaults to half the base price when unset.
func ApplyPricing(p models.Product, basePrice, discountPct float64) models.Product {
	if basePrice > 0 {
		p.Price = basePrice
		p.OriginalPrice = basePrice
		p.DiscountPercentage = 0
		if p.Cost == 0 {
			p.Cost = basePrice / 2
		}
	}
	if discountPct > 0 {
		if p.OriginalPrice == 0 {
			p.OriginalPrice = p.Price
		}
		p.DiscountPercentage = discountPct
		p.Price = p.OriginalPrice * (1 - discountPct/100)
	}
	p.PriceSet = true
	return p
}

// SetPrice is the sales-manager pricing route. Body carries a base price,
// a discount percentage, or both. Pricing a product makes it visible to
// customers.
func SetPrice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Price              float64 `json:"price"`
		DiscountPercentage float64 `json:"discountPercentage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if input.Price < 0 || input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		utils.RespondWithError(w, http.StatusBadRequest, "Price must be non-negative and discount between 0 and 100")
		return
	}
	if input.Price == 0 && input.DiscountPercentage == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Provide a price or a discount percentage")
		return
	}

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productId": ps.ByName("id")}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		log.Println("SetPrice lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update price")
		return
	}

	priced := ApplyPricing(product, input.Price, input.DiscountPercentage)

	res := db.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"productId": product.ProductID},
		bson.M{"$set": bson.M{
			"price":              priced.Price,
			"originalPrice":      priced.OriginalPrice,
			"discountPercentage": priced.DiscountPercentage,
			"cost":               priced.Cost,
			"priceSet":           true,
			"updatedAt":          time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Product
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, updated)
}
