package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/telemetry"
	"go.uber.org/zap"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIClient talks to /chat/completions. It makes exactly one request per
// Complete call.
type OpenAIClient struct {
	http  *resty.Client
	key   string
	model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient builds a client over a traced HTTP transport
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
		ServiceName: "llm",
		Timeout:     cfg.Timeout,
	})

	r := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "postcheck/1.0")

	return &OpenAIClient{http: r, key: cfg.APIKey, model: cfg.Model}
}

// Configured reports whether a credential is set
func (c *OpenAIClient) Configured() bool {
	return c.key != ""
}

// Complete implements Client
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, params Params) (string, error) {
	if c.key == "" {
		return "", ErrMissingCredential
	}

	model := params.Model
	if model == "" {
		model = c.model
	}

	messages := make([]chatMessage, 0, 2)
	if params.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.key).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}

	logger.Log.Debug("LLM response",
		zap.Int("status", resp.StatusCode()),
		zap.String("model", model),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 200)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
