package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// StoreService defines the contract the Handler expects from the service layer.
type StoreService interface {
	Create(ctx domain.Context, store domain.Store) (domain.Store, error)
	GetByID(ctx domain.Context, id string) (domain.Store, error)
	List(ctx domain.Context) ([]domain.Store, error)
	Update(ctx domain.Context, store domain.Store) (domain.Store, error)
	Delete(ctx domain.Context, id string) error
}

// Handler groups the store HTTP handlers.
type Handler struct {
	Service StoreService
	Logger  logger.Logger
}

// NewHandler creates a new Handler instance, injecting the Service and the Logger.
func NewHandler(svc StoreService, log logger.Logger) *Handler {
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

// CollectionHandler dispatches GET and POST on /v1/stores.
func (h *Handler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listStores(w, r)
	case http.MethodPost:
		h.createStore(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createStore handles POST /v1/stores.
// @Summary Create a new store
// @Description Registers a store and notifies the legacy store manager after the record is committed.
// @Tags stores
// @Accept json
// @Produce json
// @Param store body domain.Store true "Store to create"
// @Success 201 {object} domain.Store "Store created"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload or preset ID"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /stores [post]
func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var store domain.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Create(ctx, store)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// listStores handles GET /v1/stores.
// @Summary List all stores
// @Tags stores
// @Produce json
// @Success 200 {array} domain.Store "List of stores"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /stores [get]
func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stores, err := h.Service.List(ctx)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, stores, nil, http.StatusOK)
}

// ItemHandler dispatches GET, PUT and DELETE on /v1/stores/{id}.
func (h *Handler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stores/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getStoreByID(w, r, id)
	case http.MethodPut:
		h.updateStore(w, r, id)
	case http.MethodDelete:
		h.deleteStore(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// getStoreByID handles GET /v1/stores/{id}.
// @Summary Get a store by ID
// @Tags stores
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} domain.Store "Store found"
// @Failure 404 {object} domain.ErrorResponse "Store not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /stores/{id} [get]
func (h *Handler) getStoreByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	store, err := h.Service.GetByID(ctx, id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, store, nil, http.StatusOK)
}

// updateStore handles PUT /v1/stores/{id}.
// @Summary Update a store
// @Description Updates a store and notifies the legacy store manager after the record is committed.
// @Tags stores
// @Accept json
// @Produce json
// @Param id path string true "Store ID"
// @Param store body domain.Store true "New store data"
// @Success 200 {object} domain.Store "Store updated"
// @Failure 400 {object} domain.ErrorResponse "Invalid payload"
// @Failure 404 {object} domain.ErrorResponse "Store not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /stores/{id} [put]
func (h *Handler) updateStore(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	var store domain.Store
	if err := json.NewDecoder(r.Body).Decode(&store); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}
	store.ID = id

	updated, err := h.Service.Update(ctx, store)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, updated, nil, http.StatusOK)
}

// deleteStore handles DELETE /v1/stores/{id}.
// @Summary Delete a store
// @Tags stores
// @Param id path string true "Store ID"
// @Success 204 "No content"
// @Failure 404 {object} domain.ErrorResponse "Store not found"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Security ApiKeyAuth
// @Router /stores/{id} [delete]
func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	if err := h.Service.Delete(ctx, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}
