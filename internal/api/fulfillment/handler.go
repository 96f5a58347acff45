package fulfillment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// FulfillmentService defines the contract the Handler expects from the service layer.
type FulfillmentService interface {
	Create(ctx domain.Context, req domain.FulfillmentRequest) (domain.Fulfillment, error)
	Delete(ctx domain.Context, req domain.FulfillmentRequest) error
	ListAll(ctx domain.Context) ([]domain.Fulfillment, error)
	ListByStore(ctx domain.Context, storeID string) ([]domain.Fulfillment, error)
	ListByProduct(ctx domain.Context, productID string) ([]domain.Fulfillment, error)
	ListByWarehouse(ctx domain.Context, warehouseBusinessUnit string) ([]domain.Fulfillment, error)
	StoreStats(ctx domain.Context, storeID string) (domain.FulfillmentStats, error)
	ProductStats(ctx domain.Context, productID string) (domain.FulfillmentStats, error)
	WarehouseStats(ctx domain.Context, warehouseBusinessUnit string) (domain.FulfillmentStats, error)
}

// Handler groups the fulfillment association HTTP handlers.
type Handler struct {
	Service FulfillmentService
	Logger  logger.Logger
}

// NewHandler creates a new Handler instance, injecting the Service and the Logger.
func NewHandler(svc FulfillmentService, log logger.Logger) *Handler {
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

// CollectionHandler dispatches GET, POST and DELETE on /v1/fulfillments.
// DELETE carries the association triple in the body, mirroring POST: the
// triple is the identity, there is no surrogate key to put in the path.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listFulfillments(w, r)
	case http.MethodPost:
		h.createFulfillment(w, r)
	case http.MethodDelete:
		h.deleteFulfillment(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createFulfillment handles POST /v1/fulfillments.
// @Summary Create a fulfillment association
// @Description Associates a product, a warehouse and a store, enforcing the cardinality constraints of the fulfilment network.
// @Tags fulfillments
// @Accept json
// @Produce json
// @Param fulfillment body domain.FulfillmentRequest true "Association triple"
// @Success 201 {object} domain.Fulfillment "Association created"
// @Failure 400 {object} domain.ErrorResponse "Constraint violations"
// @Failure 404 {object} domain.ErrorResponse "Referenced entity not found"
// @Failure 409 {object} domain.ErrorResponse "Association already exists"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /fulfillments [post]
func (h *Handler) createFulfillment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.FulfillmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(ctx, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// deleteFulfillment handles DELETE /v1/fulfillments.
// @Summary Delete a fulfillment association
// @Description Removes the association identified by the product/warehouse/store triple.
// @Tags fulfillments
// @Accept json
// @Param fulfillment body domain.FulfillmentRequest true "Association triple"
// @Success 204 "No content"
// @Failure 404 {object} domain.ErrorResponse "Association or referenced entity not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /fulfillments [delete]
func (h *Handler) deleteFulfillment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req domain.FulfillmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(ctx, req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// listFulfillments handles GET /v1/fulfillments.
// At most one of the query parameters store_id, product_id and warehouse
// narrows the listing to a single dimension.
// @Summary List fulfillment associations
// @Description Lists associations, optionally filtered by store, product or warehouse.
// @Tags fulfillments
// @Produce json
// @Param store_id query string false "Filter by store ID"
// @Param product_id query string false "Filter by product ID"
// @Param warehouse query string false "Filter by warehouse business unit code"
// @Success 200 {array} domain.Fulfillment "List of associations"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /fulfillments [get]
func (h *Handler) listFulfillments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var (
		fulfillments []domain.Fulfillment
		err          error
	)
	switch {
	case query.Get("store_id") != "":
		fulfillments, err = h.Service.ListByStore(ctx, query.Get("store_id"))
	case query.Get("product_id") != "":
		fulfillments, err = h.Service.ListByProduct(ctx, query.Get("product_id"))
	case query.Get("warehouse") != "":
		fulfillments, err = h.Service.ListByWarehouse(ctx, query.Get("warehouse"))
	default:
		fulfillments, err = h.Service.ListAll(ctx)
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, fulfillments, nil, http.StatusOK)
}

// StatsHandler handles GET /v1/fulfillments/stats/{dimension}/{id}.
// @Summary Get fulfillment capacity stats
// @Description Reports how close a store, product or warehouse is to its association limit.
// @Tags fulfillments
// @Produce json
// @Param dimension path string true "One of: stores, products, warehouses"
// @Param id path string true "Entity identifier (store ID, product ID or warehouse business unit code)"
// @Success 200 {object} domain.FulfillmentStats "Capacity stats"
// @Failure 404 {object} domain.ErrorResponse "Unknown dimension"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /fulfillments/stats/{dimension}/{id} [get]
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/fulfillments/stats/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) != 2 || segments[1] == "" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()

	var (
		stats domain.FulfillmentStats
		err   error
	)
	switch segments[0] {
	case "stores":
		stats, err = h.Service.StoreStats(ctx, segments[1])
	case "products":
		stats, err = h.Service.ProductStats(ctx, segments[1])
	case "warehouses":
		stats, err = h.Service.WarehouseStats(ctx, segments[1])
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, stats, nil, http.StatusOK)
}
