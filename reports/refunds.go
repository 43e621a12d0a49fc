package reports

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/orders"
	"mjolnir/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrRefundNotPending means the request is unknown or already resolved.
var ErrRefundNotPending = errors.New("refund request not found or already processed")

// RequestRefund lets a customer raise a refund for a product on one of
// their delivered orders.
func RequestRefund(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)

	var input struct {
		OrderID   string `json:"orderId"`
		ProductID string `json:"productId"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.OrderID == "" || input.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Order and product are required")
		return
	}

	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": input.OrderID, "userId": userID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create refund request")
		return
	}
	if order.Status != models.StatusDelivered {
		utils.RespondWithError(w, http.StatusConflict, "Only delivered orders can be refunded")
		return
	}

	found := false
	for _, item := range order.Items {
		if item.ProductID == input.ProductID {
			found = true
			break
		}
	}
	if !found {
		utils.RespondWithError(w, http.StatusNotFound, "Product not part of this order")
		return
	}

	refund := models.RefundRequest{
		RefundID:  uuid.New().String(),
		OrderID:   input.OrderID,
		ProductID: input.ProductID,
		Customer:  userID,
		Reason:    input.Reason,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
	if _, err := db.RefundCollection.InsertOne(ctx, refund); err != nil {
		log.Println("RequestRefund InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create refund request")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, refund)
}

// PendingRefunds lists open refund requests for the sales manager.
func PendingRefunds(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.RefundCollection.Find(ctx,
		bson.M{"status": "pending"},
		options.Find().SetSort(bson.M{"createdAt": 1}),
	)
	if err != nil {
		log.Println("PendingRefunds Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve refund requests")
		return
	}
	defer cursor.Close(ctx)

	refunds := []models.RefundRequest{}
	if err := cursor.All(ctx, &refunds); err != nil {
		log.Println("PendingRefunds cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve refund requests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, refunds)
}

// RefundStore resolves pending requests; a request past pending is
// rejected with ErrRefundNotPending.
type RefundStore interface {
	Approve(ctx context.Context, refundID string) (models.RefundRequest, error)
	Reject(ctx context.Context, refundID string) (models.RefundRequest, error)
}

// StockRestorer returns units to the catalog.
type StockRestorer interface {
	Release(ctx context.Context, productID string, qty int) error
}

// InvoiceMarker flips the order's invoice to refunded.
type InvoiceMarker interface {
	MarkRefunded(ctx context.Context, orderID string) error
}

// Approver resolves refund requests. Approval restores one unit of stock
// and marks the invoice refunded in the same transaction as the status
// flip, so a double approval cannot restore stock twice.
type Approver struct {
	Refunds  RefundStore
	Products StockRestorer
	Invoices InvoiceMarker
	Txn      orders.TxnRunner
}

func (a *Approver) Approve(ctx context.Context, refundID string) (models.RefundRequest, error) {
	var refund models.RefundRequest
	err := a.Txn.Run(ctx, func(tc context.Context) error {
		var err error
		refund, err = a.Refunds.Approve(tc, refundID)
		if err != nil {
			return err
		}
		if err := a.Products.Release(tc, refund.ProductID, 1); err != nil {
			return err
		}
		return a.Invoices.MarkRefunded(tc, refund.OrderID)
	})
	if err != nil {
		return models.RefundRequest{}, err
	}
	return refund, nil
}

type MongoRefundStore struct{}

func (MongoRefundStore) resolve(ctx context.Context, refundID, status string) (models.RefundRequest, error) {
	res := db.RefundCollection.FindOneAndUpdate(ctx,
		bson.M{"refundId": refundID, "status": "pending"},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var refund models.RefundRequest
	if err := res.Decode(&refund); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.RefundRequest{}, ErrRefundNotPending
		}
		return models.RefundRequest{}, err
	}
	return refund, nil
}

func (s MongoRefundStore) Approve(ctx context.Context, refundID string) (models.RefundRequest, error) {
	return s.resolve(ctx, refundID, "approved")
}

func (s MongoRefundStore) Reject(ctx context.Context, refundID string) (models.RefundRequest, error) {
	return s.resolve(ctx, refundID, "rejected")
}

type MongoInvoiceMarker struct{}

func (MongoInvoiceMarker) MarkRefunded(ctx context.Context, orderID string) error {
	_, err := db.InvoiceCollection.UpdateOne(ctx,
		bson.M{"orderId": orderID},
		bson.M{"$set": bson.M{"paymentStatus": "refunded", "status": "refunded"}},
	)
	return err
}

// NewApprover wires refund approval to MongoDB.
func NewApprover() *Approver {
	return &Approver{
		Refunds:  MongoRefundStore{},
		Products: orders.MongoProductStore{},
		Invoices: MongoInvoiceMarker{},
		Txn:      orders.MongoTxn{},
	}
}

// ApproveRefund resolves a pending request: one unit of the product goes
// back into stock and the order's invoice is marked refunded.
func ApproveRefund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	refund, err := NewApprover().Approve(ctx, ps.ByName("id"))
	if errors.Is(err, ErrRefundNotPending) {
		utils.RespondWithError(w, http.StatusNotFound, "Refund request not found or already processed")
		return
	}
	if err != nil {
		log.Println("ApproveRefund error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to approve refund")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Refund approved, stock updated",
		"refund":  refund,
	})
}

// RejectRefund closes a pending request without side effects.
func RejectRefund(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	refund, err := MongoRefundStore{}.Reject(ctx, ps.ByName("id"))
	if errors.Is(err, ErrRefundNotPending) {
		utils.RespondWithError(w, http.StatusNotFound, "Refund request not found or already processed")
		return
	}
	if err != nil {
		log.Println("RejectRefund error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to reject refund")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Refund rejected",
		"refund":  refund,
	})
}
