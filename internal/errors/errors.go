package errors

import (
	"fmt"
	"net/http"
)

// AppError is the central interface for every custom error in the service.
// It lets the outer layers (Handlers) access the Category and suggested HTTP status.
type AppError interface {
	Error() string    // Implements Go's standard error interface
	Category() string // Error category (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
	HTTPStatus() int  // Suggested HTTP status for the Handler
	Unwrap() error    // Allows wrapping an underlying error (original error)
}

// --- Domain error types ---

// ValidationError represents a well-formed request that violates a business invariant
// (constraint cardinality exceeded, stock/capacity mismatch, bad input data).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError creates a new validation error.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError represents the absence of a referenced entity
// (product, store, warehouse, location, association).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError represents an identity that already exists
// (duplicate business unit code, duplicate association triple).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return e.Msg }
func (e *ConflictError) Category() string { return "DUPLICATE_RESOURCE" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError creates a new conflict error.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError represents a missing or invalid credential.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return e.Msg }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError creates a new unauthorized error.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Infrastructure error types ---

// InternalError represents unexpected failures in the server, service or repository.
type InternalError struct {
	Msg string
	Err error // Underlying original error (e.g., SQL driver error)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Internal error: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError creates a server error (for unexpected failures).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError is a shortcut for creating an InternalError for DB failures.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Handler helper (final translation) ---

// MapToHTTPStatus translates an error into an HTTP status code, category and message.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Untyped error (plain Go error that does not implement AppError).
	// Treat as a generic internal error.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "An unexpected error occurred."
}
