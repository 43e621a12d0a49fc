package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"mjolnir/db"
	"mjolnir/models"
	"mjolnir/rdx"
	"mjolnir/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const listCacheKey = "products:list"
const listCacheTTL = 60 * time.Second

// SearchProducts lists the catalog with optional ?q= text search and
// ?category= filter. Products without a sales-manager price are hidden
// from plain customers. The unfiltered customer listing is served from
// Redis when fresh.
func SearchProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	role := utils.GetRoleFromRequest(r)
	isManager := role == models.RoleProductManager || role == models.RoleSalesManager

	if q == "" && category == "" && !isManager && rdx.Conn != nil {
		if cached, err := rdx.RdxGet(listCacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	filter := bson.M{}
	if q != "" {
		filter["$text"] = bson.M{"$search": q}
	}
	if category != "" {
		filter["category"] = category
	}
	if !isManager {
		filter["priceSet"] = true
	}

	cursor, err := db.ProductCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "quantityInStock", Value: -1}, {Key: "name", Value: 1}}),
	)
	if err != nil {
		log.Println("SearchProducts Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	defer cursor.Close(ctx)

	items := []models.Product{}
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("SearchProducts cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching products")
		return
	}

	if q == "" && category == "" && !isManager && rdx.Conn != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := rdx.RdxSet(listCacheKey, string(payload), listCacheTTL); err != nil {
				log.Println("SearchProducts cache set error:", err)
			}
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

func GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err := db.ProductCollection.FindOne(ctx, bson.M{"productId": ps.ByName("id")}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		log.Println("GetProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error retrieving product")
		return
	}

	role := utils.GetRoleFromRequest(r)
	if !product.PriceSet && role != models.RoleProductManager && role != models.RoleSalesManager {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct adds a catalog entry without a price; the product stays
// hidden from customers until a sales manager prices it. Route is gated
// to product managers.
func CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Name            string `json:"name"`
		Model           string `json:"model"`
		Description     string `json:"description"`
		Category        string `json:"category"`
		Brand           string `json:"brand"`
		QuantityInStock int    `json:"quantityInStock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if utils.TrimmedEmpty(input.Name) || utils.TrimmedEmpty(input.Category) || input.QuantityInStock < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, category and a non-negative stock are required")
		return
	}

	product := models.Product{
		ProductID:       uuid.New().String(),
		Name:            input.Name,
		Model:           input.Model,
		Description:     input.Description,
		Category:        input.Category,
		Brand:           input.Brand,
		QuantityInStock: input.QuantityInStock,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if _, err := db.ProductCollection.InsertOne(ctx, product); err != nil {
		log.Println("CreateProduct InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct edits descriptive fields and stock. Price fields are
// deliberately excluded; pricing goes through the sales-manager route.
func UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Name            *string `json:"name"`
		Model           *string `json:"model"`
		Description     *string `json:"description"`
		Category        *string `json:"category"`
		Brand           *string `json:"brand"`
		QuantityInStock *int    `json:"quantityInStock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		if utils.TrimmedEmpty(*input.Name) {
			utils.RespondWithError(w, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		set["name"] = *input.Name
	}
	if input.Model != nil {
		set["model"] = *input.Model
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.QuantityInStock != nil {
		if *input.QuantityInStock < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Stock cannot be negative")
			return
		}
		set["quantityInStock"] = *input.QuantityInStock
	}

	res := db.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"productId": ps.ByName("id")},
		bson.M{"$set": set},
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

func DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := db.ProductCollection.DeleteOne(ctx, bson.M{"productId": ps.ByName("id")})
	if err != nil {
		log.Println("DeleteProduct error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadProductImage stores a product photo plus thumbnail and records
// the file name on the product.
func UploadProductImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Image file missing")
		return
	}
	defer file.Close()

	dir := os.Getenv("STATIC_DIR")
	if dir == "" {
		dir = "static/productpic"
	}
	fileName, err := utils.SaveProductImage(file, dir)
	if err != nil {
		log.Println("UploadProductImage save error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Unable to save file")
		return
	}

	res, err := db.ProductCollection.UpdateOne(ctx,
		bson.M{"productId": ps.ByName("id")},
		bson.M{"$set": bson.M{"image": fileName, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Println("UploadProductImage update error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	invalidateListCache()
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"image": fileName})
}

func invalidateListCache() {
	if rdx.Conn == nil {
		return
	}
	if err := rdx.RdxDel(listCacheKey); err != nil {
		log.Println("product cache invalidation error:", err)
	}
}
