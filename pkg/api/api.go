// Package api calls the postcheck HTTP API.
package api

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// ErrorResponse is the error half of the response envelope
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
	Details string `json:"details"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorResponse  `json:"error"`
}

// APIError represents an API error response
type APIError struct {
	Code       string
	Message    string
	Field      string
	StatusCode int
	RetryAfter string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.RetryAfter != "" {
		msg += fmt.Sprintf(", retry after %ss", e.RetryAfter)
	}
	return msg
}

// ParseError parses an error response from the API
func ParseError(resp *resty.Response) error {
	apiErr := &APIError{
		Code:       "unknown_error",
		Message:    string(resp.Body()),
		StatusCode: resp.StatusCode(),
		RetryAfter: resp.Header().Get("Retry-After"),
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err == nil && env.Error != nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Field = env.Error.Field
	}
	return apiErr
}

// IsRateLimited reports whether err is a 429
func IsRateLimited(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode == 429
	}
	return false
}

// decode unwraps a successful envelope into out
func decode(resp *resty.Response, out interface{}) error {
	if resp.IsError() {
		return ParseError(resp)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !env.Success {
		return ParseError(resp)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}
