package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes used in API responses
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeTimeout      = "TIMEOUT"
)

// Error kinds. Typed errors below match these through errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("concurrent modification")
	ErrUnauthorized = errors.New("unauthorized access")
)

// ValidationError reports malformed input. Never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports a missing comment, parent, highlight or notification
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a store-level concurrency violation. The whole
// operation is safe to retry.
type ConflictError struct {
	Op  string
	Err error
}

func NewConflictError(op string, err error) *ConflictError {
	return &ConflictError{Op: op, Err: err}
}

func (e *ConflictError) Error() string {
	if e.Err == nil {
		return "conflict during " + e.Op
	}
	return fmt.Sprintf("conflict during %s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConflict}
	}
	return []error{ErrConflict, e.Err}
}

// AppError is the protocol-facing shape of an error
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToHTTPError converts to the response envelope
func (e *AppError) ToHTTPError() *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     e.Message,
		Code:      e.Code,
		Timestamp: time.Now(),
	}
}

// ToAppError classifies any error returned by the services
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return &AppError{Code: ErrCodeValidation, Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, ErrNotFound):
		return &AppError{Code: ErrCodeNotFound, Message: err.Error(), StatusCode: http.StatusNotFound}
	case errors.Is(err, ErrConflict):
		return &AppError{Code: ErrCodeConflict, Message: "please try again", StatusCode: http.StatusConflict}
	case errors.Is(err, ErrUnauthorized):
		return &AppError{Code: ErrCodeUnauthorized, Message: err.Error(), StatusCode: http.StatusUnauthorized}
	}

	return &AppError{
		Code:       ErrCodeInternal,
		Message:    "internal error",
		StatusCode: http.StatusInternalServerError,
		Details:    map[string]interface{}{"original_error": err.Error()},
	}
}

// NewHTTPError builds an AppError for a transport-level failure
func NewHTTPError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}
