// Package errors maps domain failures to structured API error responses.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/render"

	"fiscaldash/internal/forecast"
	"fiscaldash/internal/ledger"
)

// APIError is a structured API error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer for chi/render.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes a failed request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError with additional details.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for common scenarios
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ErrValidation creates a validation error with field details.
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// FromDomain translates ledger and forecast failures into API errors. Data
// curation problems come back as 422 with the underlying detail so the
// offending file or cell is visible to the analyst.
func FromDomain(err error) *APIError {
	var insufficient *forecast.InsufficientDataError
	var parseErr *ledger.ParseError
	var filenameErr *ledger.FilenameError

	switch {
	case stderrors.Is(err, ledger.ErrDirectoryNotFound),
		stderrors.Is(err, ledger.ErrNoMatchingFiles):
		return NewWithDetails(http.StatusNotFound, "DATA_NOT_FOUND", "Revenue data not found", err.Error())
	case stderrors.Is(err, ledger.ErrEmptyDataset),
		stderrors.Is(err, ledger.ErrLabelColumnMissing):
		return NewWithDetails(http.StatusUnprocessableEntity, "MALFORMED_DATASET", "Source file could not be processed", err.Error())
	case stderrors.As(err, &parseErr), stderrors.As(err, &filenameErr):
		return NewWithDetails(http.StatusUnprocessableEntity, "MALFORMED_DATASET", "Source file could not be processed", err.Error())
	case stderrors.As(err, &insufficient):
		return NewWithDetails(http.StatusUnprocessableEntity, "INSUFFICIENT_DATA",
			"Not enough history for a reliable forecast; pick another specification or wait for more months",
			err.Error())
	default:
		return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
	}
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse wraps an APIError in the response envelope.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
