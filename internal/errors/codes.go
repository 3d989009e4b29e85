package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrValidation          ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest          ErrorCode = "BAD_REQUEST"
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrContentTooLarge     ErrorCode = "CONTENT_TOO_LARGE"
	ErrUnknownJurisdiction ErrorCode = "UNKNOWN_JURISDICTION"
	ErrInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited         ErrorCode = "RATE_LIMITED"
	ErrServiceUnavail      ErrorCode = "SERVICE_UNAVAILABLE"
	ErrTimeout             ErrorCode = "TIMEOUT"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:            http.StatusNotFound,
	ErrValidation:          http.StatusUnprocessableEntity,
	ErrBadRequest:          http.StatusBadRequest,
	ErrUnauthorized:        http.StatusUnauthorized,
	ErrContentTooLarge:     http.StatusRequestEntityTooLarge,
	ErrUnknownJurisdiction: http.StatusUnprocessableEntity,
	ErrInternalError:       http.StatusInternalServerError,
	ErrRateLimited:         http.StatusTooManyRequests,
	ErrServiceUnavail:      http.StatusServiceUnavailable,
	ErrTimeout:             http.StatusGatewayTimeout,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
