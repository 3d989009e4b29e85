package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"risk_score\": 80}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL + "/v1/", APIKey: "sk-test", Model: "gpt-test"})
	reply, err := client.Complete(context.Background(), "score this", Params{Temperature: 0.2, MaxTokens: 500, System: "be strict"})

	require.NoError(t, err)
	assert.Equal(t, `{"risk_score": 80}`, reply)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "score this", got.Messages[1].Content)
}

func TestCompleteModelOverride(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "default-model"})
	_, err := client.Complete(context.Background(), "p", Params{Model: "other-model"})
	require.NoError(t, err)
	assert.Equal(t, "other-model", got.Model)
	require.Len(t, got.Messages, 1)
}

func TestCompleteErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
				assert.Contains(t, se.Error(), "slow down")
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
		{
			name:   "blank content",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":"   "}}]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
		{
			name:   "garbage body",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, APIKey: "k"})
			reply, err := client.Complete(context.Background(), "p", Params{})
			require.Error(t, err)
			assert.Empty(t, reply)
			tc.check(t, err)
		})
	}
}

func TestCompleteMissingCredential(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL})
	assert.False(t, client.Configured())
	_, err := client.Complete(context.Background(), "p", Params{})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.False(t, called)
}

func TestCompleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: url, APIKey: "k"})
	_, err := client.Complete(context.Background(), "p", Params{})
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), "request failed")
}

func TestDoubles(t *testing.T) {
	static := &StaticClient{Reply: "hi"}
	out, err := static.Complete(context.Background(), "one", Params{})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
	assert.Equal(t, 1, static.Calls())
	assert.Equal(t, []string{"one"}, static.Prompts())

	boom := errors.New("boom")
	_, err = FailingClient{Err: boom}.Complete(context.Background(), "p", Params{})
	assert.ErrorIs(t, err, boom)
}
