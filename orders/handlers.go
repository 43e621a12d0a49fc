package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"mjolnir/cart"
	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlaceOrder turns the caller's cart into an order. The response reports
// whether the cart was also cleared; dispatcher work (invoice, email,
// delivery webhook) happens asynchronously and never affects the outcome.
func PlaceOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order payload")
		return
	}

	var c models.Cart
	err := db.CartCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Println("PlaceOrder cart lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	lines, err := cart.Resolve(ctx, c.Items)
	if err != nil {
		log.Println("PlaceOrder cart resolve error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	result, err := NewSaga().Place(ctx, PlacementInput{
		UserID:  userID,
		Lines:   lines,
		Address: body.DeliveryAddress,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":     "Order placed successfully",
		"order":       result.Order,
		"cartCleared": result.CartCleared,
	})
}

// GetOrder fetches a single order owned by the caller. Managers can fetch
// any order.
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := findOrder(ctx, ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	role := utils.GetRoleFromRequest(r)
	if order.UserID != utils.GetUserIDFromRequest(r) &&
		role != models.RoleProductManager && role != models.RoleSalesManager {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, order)
}

// OrderHistory lists the caller's orders, newest first.
func OrderHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	cursor, err := db.OrderCollection.Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		log.Println("OrderHistory Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve order history")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		log.Println("OrderHistory cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve order history")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// AllOrders lists every order. Route is gated to managers.
func AllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.OrderCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		log.Println("AllOrders Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		log.Println("AllOrders cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateStatus moves an order forward along the fulfilment lattice. The
// update is filtered on the status the decision was made against, so a
// concurrent transition loses cleanly.
func UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !ValidStatus(body.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	order, err := findOrder(ctx, ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !CanTransition(order.Status, body.Status) {
		utils.RespondWithError(w, http.StatusConflict,
			"Illegal status transition from "+order.Status+" to "+body.Status)
		return
	}

	res := db.OrderCollection.FindOneAndUpdate(ctx,
		bson.M{"orderId": order.OrderID, "status": order.Status},
		bson.M{"$set": bson.M{"status": body.Status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Order
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusConflict, "Order status changed concurrently")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Order status updated successfully",
		"order":   updated,
	})
}

// CancelOrder cancels a processing order and restores its stock.
func CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := findOrder(ctx, ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	role := utils.GetRoleFromRequest(r)
	if order.UserID != utils.GetUserIDFromRequest(r) &&
		role != models.RoleProductManager && role != models.RoleSalesManager {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	order, err = NewCanceller().Cancel(ctx, order.OrderID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Order successfully cancelled",
		"order":   order,
	})
}

func findOrder(ctx context.Context, orderID string) (models.Order, error) {
	return MongoOrderStore{}.Find(ctx, orderID)
}

// writeError maps workflow errors onto the HTTP taxonomy.
func writeError(w http.ResponseWriter, err error) {
	var stockErr *InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.RespondWithError(w, http.StatusBadRequest, stockErr.Error())
	case errors.Is(err, ErrEmptyCart):
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty. Order could not be created.")
	case errors.Is(err, ErrIncompleteAddress):
		utils.RespondWithError(w, http.StatusBadRequest, "Delivery address is incomplete.")
	case errors.Is(err, ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrIllegalTransition):
		utils.RespondWithError(w, http.StatusConflict, "Only orders with status \"processing\" can be cancelled")
	default:
		log.Println("order workflow error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process order")
	}
}
