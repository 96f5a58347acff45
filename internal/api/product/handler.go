package product

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// ProductService defines the contract the Handler expects from the service layer.
type ProductService interface {
	Create(ctx domain.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx domain.Context, id string) (domain.Product, error)
	List(ctx domain.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx domain.Context, product domain.Product) (domain.Product, error)
	Delete(ctx domain.Context, id string) error
}

// Handler groups the product HTTP handlers.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler creates a new Handler instance, injecting the Service and the Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse translates service errors and writes standardized responses.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Failed to encode JSON response", jsonErr)
				http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Server error: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Request rejected with status %d. Category: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// CollectionHandler dispatches GET and POST on /v1/products.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		h.createProduct(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createProduct handles POST /v1/products.
// @Summary Create a new product
// @Description Adds a product to the catalog.
// @Tags products
// @Accept json
// @Produce json
// @Param product body domain.Product true "Product to create"
// @Success 201 {object} domain.Product "Product created"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /products [post]
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(ctx, product)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// listProducts handles GET /v1/products.
// @Summary List products
// @Description Returns a paginated product listing, optionally filtered by name.
// @Tags products
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20)"
// @Param name query string false "Filter by name (partial match)"
// @Success 200 {array} domain.Product "List of products"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /products [get]
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := domain.ProductFilter{
		Page:  1,
		Limit: 20,
		Name:  query.Get("name"),
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	products, err := h.Service.List(ctx, filter)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// ItemHandler dispatches GET, PUT and DELETE on /v1/products/{id}.
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getProductByID(w, r, id)
	case http.MethodPut:
		h.updateProduct(w, r, id)
	case http.MethodDelete:
		h.deleteProduct(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getProductByID handles GET /v1/products/{id}.
// @Summary Get a product by ID
// @Description Fetches a single product by its ID. Reads go through the cache.
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product "Product found"
// @Failure 404 {object} domain.ErrorResponse "Product not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /products/{id} [get]
func (h *Handler) getProductByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	product, err := h.Service.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, product, nil, http.StatusOK)
}

// updateProduct handles PUT /v1/products/{id}.
// @Summary Update a product
// @Description Updates an existing product. The ID from the path wins over the one in the body.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body domain.Product true "New product data"
// @Success 200 {object} domain.Product "Product updated"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload"
// @Failure 404 {object} domain.ErrorResponse "Product not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}
	product.ID = id

	updated, err := h.Service.Update(ctx, product)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// deleteProduct handles DELETE /v1/products/{id}.
// @Summary Delete a product
// @Description Removes a product from the catalog.
// @Tags products
// @Param id path string true "Product ID"
// @Success 204 "No content"
// @Failure 404 {object} domain.ErrorResponse "Product not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if err := h.Service.Delete(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}
