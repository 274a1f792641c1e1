package services

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

type ProductEndpoints struct {
	store *repository.Store
}

type CreateProductRequest struct {
	Name            string  `json:"name"`
	ValueWeight     float64 `json:"value_weight"`
	StandardSeconds int     `json:"standard_seconds"`
	DifficultyLevel int     `json:"difficulty_level"`
	Active          *bool   `json:"active,omitempty"`
}

func NewProductEndpoints(store *repository.Store) *ProductEndpoints {
	return &ProductEndpoints{store: store}
}

func (e *ProductEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", e.ListProductsHandler)
		r.Post("/", e.CreateProductHandler)
		r.Get("/{id}", e.GetProductHandler)
		r.Put("/{id}", e.UpdateProductHandler)
		r.Delete("/{id}", e.DeleteProductHandler)
	})
}

func productID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (e *ProductEndpoints) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	products, err := e.store.ListProducts(r.Context(), activeOnly)
	if err != nil {
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

func (e *ProductEndpoints) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.StandardSeconds <= 0 {
		// A non-positive standard duration would make every velocity ratio
		// meaningless.
		http.Error(w, "standard_seconds must be positive", http.StatusBadRequest)
		return
	}
	if req.ValueWeight <= 0 {
		http.Error(w, "value_weight must be positive", http.StatusBadRequest)
		return
	}
	if req.DifficultyLevel < 1 || req.DifficultyLevel > 5 {
		http.Error(w, "difficulty_level must be between 1 and 5", http.StatusBadRequest)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	product := models.Product{
		Name:            req.Name,
		ValueWeight:     req.ValueWeight,
		StandardSeconds: req.StandardSeconds,
		DifficultyLevel: req.DifficultyLevel,
		Active:          active,
	}
	if err := e.store.CreateProduct(r.Context(), &product); err != nil {
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

func (e *ProductEndpoints) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	product, err := e.store.GetProduct(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to get product", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}

func (e *ProductEndpoints) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	var patch repository.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if patch.StandardSeconds != nil && *patch.StandardSeconds <= 0 {
		http.Error(w, "standard_seconds must be positive", http.StatusBadRequest)
		return
	}

	if err := e.store.UpdateProduct(r.Context(), id, patch); err != nil {
		http.Error(w, "Failed to update product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *ProductEndpoints) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	if err := e.store.DeleteProduct(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete product", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
