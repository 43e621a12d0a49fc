package categories

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ListCategories(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := db.CategoryCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"name": 1}),
	)
	if err != nil {
		log.Println("ListCategories Find error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching categories")
		return
	}
	defer cursor.Close(ctx)

	items := []models.Category{}
	if err := cursor.All(ctx, &items); err != nil {
		log.Println("ListCategories cursor error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching categories")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, items)
}

// CreateCategory is gated to product managers.
func CreateCategory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || utils.TrimmedEmpty(input.Name) {
		utils.RespondWithError(w, http.StatusBadRequest, "Category name is required")
		return
	}

	count, err := db.CategoryCollection.CountDocuments(ctx, bson.M{"name": input.Name})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Category already exists")
		return
	}

	category := models.Category{
		CategoryID: uuid.New().String(),
		Name:       input.Name,
		CreatedAt:  time.Now(),
	}
	if _, err := db.CategoryCollection.InsertOne(ctx, category); err != nil {
		log.Println("CreateCategory InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, category)
}

// DeleteCategory refuses to remove a category still referenced by
// products.
func DeleteCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var category models.Category
	err := db.CategoryCollection.FindOne(ctx, bson.M{"categoryId": ps.ByName("id")}).Decode(&category)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Category not found")
		return
	}

	inUse, err := db.ProductCollection.CountDocuments(ctx, bson.M{"category": category.Name})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if inUse > 0 {
		utils.RespondWithError(w, http.StatusConflict, "Category still has products")
		return
	}

	if _, err := db.CategoryCollection.DeleteOne(ctx, bson.M{"categoryId": category.CategoryID}); err != nil {
		log.Println("DeleteCategory error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
