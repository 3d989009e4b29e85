// Package llm is the text-in/text-out boundary to a hosted language model.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Params are per-call model parameters
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
}

// Client completes a prompt. Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// ErrMissingCredential is returned before any network call when no API key
// is configured.
var ErrMissingCredential = errors.New("llm: missing API credential")

// ErrEmptyResponse means the provider answered 2xx with no usable text
var ErrEmptyResponse = errors.New("llm: empty response")

// ErrMalformedResponse means the provider's envelope could not be decoded
var ErrMalformedResponse = errors.New("llm: malformed response")

// StatusError is a non-2xx reply from the provider
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: provider returned status %d: %s", e.StatusCode, e.Body)
}
