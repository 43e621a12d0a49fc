package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ownerFilter identifies the caller's cart: logged-in users by userId,
// guests by the X-Guest-Session header. Exactly one owner, never both.
func ownerFilter(r *http.Request) bson.M {
	if userID := utils.GetUserIDFromRequest(r); userID != "" {
		return bson.M{"userId": userID}
	}
	if guest := r.Header.Get("X-Guest-Session"); guest != "" {
		return bson.M{"guestSession": guest}
	}
	return nil
}

// GetCart returns the caller's cart with resolved product references.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := ownerFilter(r)
	if filter == nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": []models.ResolvedCartLine{}})
		return
	}

	var c models.Cart
	err := db.CartCollection.FindOne(ctx, filter).Decode(&c)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": []models.ResolvedCartLine{}})
		return
	}
	if err != nil {
		log.Println("GetCart FindOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	resolved, err := Resolve(ctx, c.Items)
	if err != nil {
		log.Println("GetCart resolve error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"items": resolved})
}

// AddToCart adds a (product, quantity) line, bumping the quantity when the
// product is already present. Guests without a session get one minted and
// echoed back in the X-Guest-Session response header.
func AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if input.ProductID == "" || input.Quantity < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "Please provide a valid product and quantity")
		return
	}

	filter := ownerFilter(r)
	var mintedSession string
	if filter == nil {
		mintedSession = uuid.New().String()
		filter = bson.M{"guestSession": mintedSession}
	}

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productId": input.ProductID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		log.Println("AddToCart product lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}

	var existing models.Cart
	if err := db.CartCollection.FindOne(ctx, filter).Decode(&existing); err != nil && err != mongo.ErrNoDocuments {
		log.Println("AddToCart cart lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}

	current := 0
	for _, line := range existing.Items {
		if line.ProductID == input.ProductID {
			current = line.Quantity
			break
		}
	}
	if product.QuantityInStock < current+input.Quantity {
		utils.RespondWithError(w, http.StatusBadRequest, "Insufficient stock for requested quantity")
		return
	}

	// Bump the existing line, or push a new one (upserting the cart).
	res, err := db.CartCollection.UpdateOne(ctx,
		mergeFilters(filter, bson.M{"items.productId": input.ProductID}),
		bson.M{
			"$inc": bson.M{"items.$.quantity": input.Quantity},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		log.Println("AddToCart UpdateOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add product to cart")
		return
	}
	if res.MatchedCount == 0 {
		_, err = db.CartCollection.UpdateOne(ctx, filter,
			bson.M{
				"$push": bson.M{"items": models.CartLine{ProductID: input.ProductID, Quantity: input.Quantity}},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			log.Println("AddToCart upsert error:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add product to cart")
			return
		}
	}

	if mintedSession != "" {
		w.Header().Set("X-Guest-Session", mintedSession)
	}
	resp := utils.M{"status": "added"}
	if mintedSession != "" {
		resp["guestSession"] = mintedSession
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// RemoveFromCart drops a product line entirely.
func RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := ownerFilter(r)
	if filter == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "User or guest session required")
		return
	}

	productID := ps.ByName("productId")
	res, err := db.CartCollection.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"items": bson.M{"productId": productID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		log.Println("RemoveFromCart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove product from cart")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Cart not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Resolve joins cart lines with their live product documents. Lines whose
// product vanished from the catalog are dropped.
func Resolve(ctx context.Context, lines []models.CartLine) ([]models.ResolvedCartLine, error) {
	resolved := make([]models.ResolvedCartLine, 0, len(lines))
	for _, line := range lines {
		var product models.Product
		err := db.ProductCollection.FindOne(ctx, bson.M{"productId": line.ProductID}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, models.ResolvedCartLine{Product: product, Quantity: line.Quantity})
	}
	return resolved, nil
}

// MergeGuestCart folds a guest cart into the user's cart at login:
// quantities for the same product sum, duplicate lines collapse, and the
// guest cart is deleted.
func MergeGuestCart(ctx context.Context, guestSession, userID string) error {
	var guest models.Cart
	err := db.CartCollection.FindOne(ctx, bson.M{"guestSession": guestSession}).Decode(&guest)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}

	var user models.Cart
	err = db.CartCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}

	merged := MergeLines(user.Items, guest.Items)
	_, err = db.CartCollection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": merged, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	_, err = db.CartCollection.DeleteOne(ctx, bson.M{"guestSession": guestSession})
	return err
}

// MergeLines sums quantities per product, preserving first-seen order.
func MergeLines(a, b []models.CartLine) []models.CartLine {
	index := make(map[string]int, len(a))
	out := make([]models.CartLine, 0, len(a)+len(b))
	for _, line := range append(append([]models.CartLine{}, a...), b...) {
		if line.Quantity < 1 {
			continue
		}
		if i, seen := index[line.ProductID]; seen {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

func mergeFilters(a, b bson.M) bson.M {
	merged := bson.M{}
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
