package warehouse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// WarehouseService defines the contract the Handler expects from the service layer.
type WarehouseService interface {
	Create(ctx domain.Context, warehouse domain.Warehouse) (domain.Warehouse, error)
	GetByID(ctx domain.Context, id string) (domain.Warehouse, error)
	List(ctx domain.Context) ([]domain.Warehouse, error)
	ArchiveByID(ctx domain.Context, id string) error
	Replace(ctx domain.Context, businessUnitCode string, newWarehouse domain.Warehouse) (domain.Warehouse, error)
}

// Handler groups the warehouse HTTP handlers.
type Handler struct {
	Service WarehouseService
	Logger  logger.Logger
}

// NewHandler creates a new Handler instance, injecting the Service and the Logger.
func NewHandler(svc WarehouseService, log logger.Logger) *Handler {
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

// CollectionHandler dispatches GET and POST on /v1/warehouses.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listWarehouses(w, r)
	case http.MethodPost:
		h.createWarehouse(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createWarehouse handles POST /v1/warehouses.
// @Summary Create a new warehouse
// @Description Registers a new warehouse, enforcing the location quotas (warehouse count and total capacity) and the stock/capacity invariant.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param warehouse body domain.Warehouse true "Warehouse to create"
// @Success 201 {object} domain.Warehouse "Warehouse created"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload or quota violation"
// @Failure 404 {object} domain.ErrorResponse "Location not found"
// @Failure 409 {object} domain.ErrorResponse "Business unit code already in use"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /warehouses [post]
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var warehouse domain.Warehouse
	if err := json.NewDecoder(r.Body).Decode(&warehouse); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(ctx, warehouse)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// listWarehouses handles GET /v1/warehouses.
// @Summary List all warehouses
// @Description Returns every registered warehouse, archived ones included.
// @Tags warehouses
// @Produce json
// @Success 200 {array} domain.Warehouse "List of warehouses"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /warehouses [get]
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	warehouses, err := h.Service.List(ctx)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, warehouses, nil, http.StatusOK)
}

// ItemHandler dispatches requests on /v1/warehouses/{id} and
// /v1/warehouses/{code}/replacement.
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/warehouses/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	if len(segments) == 2 && segments[1] == "replacement" {
		h.replaceWarehouse(w, r, segments[0])
		return
	}
	if len(segments) != 1 || segments[0] == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getWarehouseByID(w, r, segments[0])
	case http.MethodDelete:
		h.archiveWarehouse(w, r, segments[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getWarehouseByID handles GET /v1/warehouses/{id}.
// @Summary Get a warehouse by ID
// @Description Fetches a single warehouse by its ID.
// @Tags warehouses
// @Produce json
// @Param id path string true "Warehouse ID"
// @Success 200 {object} domain.Warehouse "Warehouse found"
// @Failure 404 {object} domain.ErrorResponse "Warehouse not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /warehouses/{id} [get]
func (h *Handler) getWarehouseByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	warehouse, err := h.Service.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, warehouse, nil, http.StatusOK)
}

// archiveWarehouse handles DELETE /v1/warehouses/{id}.
// @Summary Archive a warehouse
// @Description Soft-deletes a warehouse. The record keeps its archive timestamp and stops counting against its location's quotas.
// @Tags warehouses
// @Param id path string true "Warehouse ID"
// @Success 204 "No content"
// @Failure 404 {object} domain.ErrorResponse "Warehouse not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /warehouses/{id} [delete]
func (h *Handler) archiveWarehouse(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if err := h.Service.ArchiveByID(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// replaceWarehouse handles PUT /v1/warehouses/{code}/replacement.
// @Summary Replace a warehouse
// @Description Archives the warehouse identified by the business unit code and registers its replacement in a single transaction. The replacement must carry the exact same stock.
// @Tags warehouses
// @Accept json
// @Produce json
// @Param code path string true "Business unit code of the warehouse being replaced"
// @Param warehouse body domain.Warehouse true "Replacement warehouse"
// @Success 201 {object} domain.Warehouse "Replacement created"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload, stock mismatch or quota violation"
// @Failure 404 {object} domain.ErrorResponse "Warehouse or location not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /warehouses/{code}/replacement [put]
func (h *Handler) replaceWarehouse(w http.ResponseWriter, r *http.Request, code string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var warehouse domain.Warehouse
	if err := json.NewDecoder(r.Body).Decode(&warehouse); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	replacement, err := h.Service.Replace(ctx, code, warehouse)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, replacement, nil, http.StatusCreated)
}
