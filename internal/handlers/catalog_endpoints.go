package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/api/internal/platform/httpx"
	"github.com/menuboard/api/internal/services"
)

// catalogEndpoints implements the product and category routes shared by the
// two panels. The panels differ only in the duplicate check on category
// creation: the client panel enforces it, the developer panel does not.
type catalogEndpoints struct {
	catalog              services.CatalogService
	ensureUniqueCategory bool
}

func (e *catalogEndpoints) register(r chi.Router) {
	r.Get("/products", e.listProducts)
	r.Post("/products", e.createProduct)
	r.Put("/products/{productID}", e.updateProduct)
	r.Delete("/products/{productID}", e.deleteProduct)

	r.Get("/categories", e.listCategories)
	r.Post("/categories", e.createCategory)
	r.Delete("/categories/{categoryID}", e.deleteCategory)
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       any      `json:"price"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	ImageBase64 string   `json:"imageBase64"`
}

func (req productRequest) command() services.ProductCommand {
	return services.ProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceRaw:    req.Price,
		Tags:        req.Tags,
		ImageURL:    req.Image,
		ImageData:   req.ImageBase64,
	}
}

func (e *catalogEndpoints) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := e.catalog.ListProducts(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]any{"products": products})
}

func (e *catalogEndpoints) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed product payload", http.StatusBadRequest))
		return
	}
	created, err := e.catalog.CreateProduct(ctx, req.command())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusCreated, created)
}

func (e *catalogEndpoints) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed product payload", http.StatusBadRequest))
		return
	}
	if err := e.catalog.UpdateProduct(ctx, chi.URLParam(r, "productID"), req.command()); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "updated"})
}

func (e *catalogEndpoints) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := e.catalog.DeleteProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *catalogEndpoints) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := e.catalog.ListCategories(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]any{"categories": categories})
}

func (e *catalogEndpoints) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed category payload", http.StatusBadRequest))
		return
	}
	created, err := e.catalog.AddCategory(ctx, req.Name, e.ensureUniqueCategory)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusCreated, created)
}

func (e *catalogEndpoints) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := e.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeServiceError maps the services error taxonomy onto the JSON error
// envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCategoryExists):
		httpx.WriteError(ctx, w, httpx.NewError("category_exists", "a category with this name already exists", http.StatusConflict))
	case errors.Is(err, services.ErrBackgroundExists):
		httpx.WriteError(ctx, w, httpx.NewError("background_exists", "a background record already exists", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("store_failure", "store operation failed", http.StatusInternalServerError))
	}
}
