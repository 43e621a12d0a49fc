package invoices

import (
	"context"
	"log"
	"net/http"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DownloadInvoice renders the invoice PDF for an order and streams it as
// an attachment.
func DownloadInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("id")

	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Println("DownloadInvoice lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate invoice PDF")
		return
	}

	role := utils.GetRoleFromRequest(r)
	if order.UserID != utils.GetUserIDFromRequest(r) &&
		role != models.RoleProductManager && role != models.RoleSalesManager {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	pdfBytes, err := RenderPDF(order)
	if err != nil {
		log.Println("DownloadInvoice render error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate invoice PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+orderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
