package llm

import (
	"context"
	"sync"
)

// StaticClient always answers with Reply. It records every prompt.
type StaticClient struct {
	Reply string

	mu      sync.Mutex
	prompts []string
	params  []Params
}

// Complete implements Client
func (s *StaticClient) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.params = append(s.params, params)
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Reply, nil
}

// Prompts returns the prompts seen so far
func (s *StaticClient) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Calls is the number of Complete calls
func (s *StaticClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

// FailingClient always returns Err
type FailingClient struct {
	Err error
}

// Complete implements Client
func (f FailingClient) Complete(context.Context, string, Params) (string, error) {
	return "", f.Err
}
