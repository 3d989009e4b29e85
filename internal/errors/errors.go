package errors

import (
	"fmt"
)

// APIError is the error body every handler responds with
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Status  int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  code.StatusCode(),
	}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newAPIError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	e := newAPIError(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newAPIError(ErrBadRequest, message)
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return newAPIError(ErrUnauthorized, message)
}

// ContentTooLarge is returned when a post exceeds the configured length
func ContentTooLarge(limit int) *APIError {
	e := newAPIError(ErrContentTooLarge, fmt.Sprintf("content exceeds %d characters", limit))
	e.Field = "content"
	return e
}

// UnknownJurisdiction is only produced when strict jurisdiction mode is enabled.
func UnknownJurisdiction(code string) *APIError {
	e := newAPIError(ErrUnknownJurisdiction, fmt.Sprintf("unknown jurisdiction %q", code))
	e.Field = "country"
	return e
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newAPIError(ErrInternalError, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return newAPIError(ErrRateLimited, message)
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *APIError {
	return newAPIError(ErrServiceUnavail, fmt.Sprintf("%s is temporarily unavailable", service))
}

// Timeout creates a TIMEOUT error
func Timeout(operation string) *APIError {
	return newAPIError(ErrTimeout, fmt.Sprintf("%s timed out", operation))
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}
