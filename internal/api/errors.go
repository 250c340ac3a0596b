package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/johnwards/menuseed/internal/blob"
	"github.com/johnwards/menuseed/internal/store"
)

// Error categories carried in the error envelope.
const (
	CategoryValidationError = "VALIDATION_ERROR"
	CategoryObjectNotFound  = "OBJECT_NOT_FOUND"
	CategoryConflict        = "CONFLICT"
	CategoryUnauthorized    = "UNAUTHORIZED"
	CategoryInternal        = "INTERNAL_ERROR"
	CategoryUnavailable     = "SERVICE_UNAVAILABLE"
)

// Error is the JSON body of every non-2xx response.
type Error struct {
	Status        string        `json:"status"`
	Message       string        `json:"message"`
	CorrelationID string        `json:"correlationId"`
	Category      string        `json:"category"`
	Errors        []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single error within an Error.
type ErrorDetail struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	In      string              `json:"in,omitempty"`
	Context map[string][]string `json:"context,omitempty"`
}

// Detail codes.
const (
	CodeDuplicateValue = "DUPLICATE_VALUE"
	CodeRequired       = "REQUIRED"
)

func (e *Error) Error() string {
	return e.Category + ": " + e.Message
}

// NewNotFoundError creates a 404 error with the OBJECT_NOT_FOUND category.
func NewNotFoundError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryObjectNotFound,
	}
}

// NewValidationError creates a 400 error with the VALIDATION_ERROR category.
func NewValidationError(message, correlationID string, details []ErrorDetail) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryValidationError,
		Errors:        details,
	}
}

// NewConflictError creates a 409 error with the CONFLICT category.
func NewConflictError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryConflict,
	}
}

// NewInternalError creates a 500 error with the INTERNAL_ERROR category.
func NewInternalError(message, correlationID string) *Error {
	return &Error{
		Status:        "error",
		Message:       message,
		CorrelationID: correlationID,
		Category:      CategoryInternal,
	}
}

// WriteError writes an Error as a JSON response with the given HTTP status code.
func WriteError(w http.ResponseWriter, statusCode int, apiErr *Error) {
	WriteJSON(w, statusCode, apiErr)
}

// WriteStoreError maps a row store or blob store error onto the envelope.
// Anything unrecognised is logged and reported as a 500.
func WriteStoreError(w http.ResponseWriter, r *http.Request, err error) {
	corrID := CorrelationID(r.Context())

	var (
		conflict   *store.ConflictError
		validation *store.ValidationError
	)
	switch {
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, NewValidationError(validation.Message, corrID, nil))
	case errors.As(err, &conflict):
		apiErr := NewConflictError(conflict.Error(), corrID)
		apiErr.Errors = []ErrorDetail{{
			Message: conflict.Error(),
			Code:    CodeDuplicateValue,
			In:      conflict.Column,
			Context: map[string][]string{
				"table": {conflict.Table},
				"value": {conflict.Value},
			},
		}}
		WriteError(w, http.StatusConflict, apiErr)
	case errors.Is(err, store.ErrConflict), errors.Is(err, blob.ErrExists):
		WriteError(w, http.StatusConflict, NewConflictError(err.Error(), corrID))
	case errors.Is(err, blob.ErrInvalidName):
		WriteError(w, http.StatusBadRequest, NewValidationError(err.Error(), corrID, nil))
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		WriteError(w, http.StatusNotFound, NewNotFoundError(err.Error(), corrID))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusServiceUnavailable, &Error{
			Status:        "error",
			Message:       err.Error(),
			CorrelationID: corrID,
			Category:      CategoryUnavailable,
		})
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"correlation_id", corrID,
			"error", err,
		)
		WriteError(w, http.StatusInternalServerError, NewInternalError(err.Error(), corrID))
	}
}
