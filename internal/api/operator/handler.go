package operator

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gofulfil/internal/domain"
	apperror "gofulfil/internal/errors"
	"gofulfil/internal/pkg/logger"
)

// OperatorService defines the contract the Handler expects from the service layer.
type OperatorService interface {
	Register(ctx domain.Context, registration domain.OperatorRegistration) (domain.Operator, error)
	Login(ctx domain.Context, email, password string) (string, error)
}

// Handler groups the operator account HTTP handlers.
type Handler struct {
	Service OperatorService
	Logger  logger.Logger
}

// NewHandler creates a new Handler instance, injecting the Service and the Logger.
func NewHandler(svc OperatorService, log logger.Logger) *Handler {
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

// RegisterHandler handles POST /v1/operators/register.
// @Summary Register an operator
// @Description Creates an operator account. The password is stored as a bcrypt hash.
// @Tags operators
// @Accept json
// @Produce json
// @Param registration body domain.OperatorRegistration true "Email and password"
// @Success 201 {object} domain.Operator "Operator created"
// @Failure 400 {object} domain.ErrorResponse "Invalid email or weak password"
// @Failure 409 {object} domain.ErrorResponse "Email already registered"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /operators/register [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var registration domain.OperatorRegistration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.Register(ctx, registration)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// LoginHandler handles POST /v1/operators/login.
// @Summary Log an operator in
// @Description Verifies the credentials and returns a signed JWT.
// @Tags operators
// @Accept json
// @Produce json
// @Param credentials body domain.OperatorRegistration true "Email and password"
// @Success 200 {object} map[string]string "Bearer token"
// @Failure 401 {object} domain.ErrorResponse "Invalid credentials"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /operators/login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	var credentials domain.OperatorRegistration
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Invalid payload. Check the JSON format."), http.StatusBadRequest)
		return
	}

	token, err := h.Service.Login(ctx, credentials.Email, credentials.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, map[string]string{"token": token}, nil, http.StatusOK)
}
