// Package client holds the shared HTTP client for the postcheck API.
package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/postcheck/pkg/config"
	"github.com/zfogg/postcheck/pkg/logger"
)

// UserAgent is sent with every request
const UserAgent = "postcheck-cli/0.1.0"

var httpClient *resty.Client

// Init builds the client from config: base URL, timeout and optional API key
func Init() {
	httpClient = resty.New()
	httpClient.SetBaseURL(config.GetString("api.base_url"))
	httpClient.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	httpClient.SetHeader("User-Agent", UserAgent)
	if key := config.GetString("api.key"); key != "" {
		httpClient.SetHeader("X-API-Key", key)
	}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"engine", resp.Header().Get("X-Analysis-Engine"),
			"request_id", resp.Header().Get("X-Request-ID"),
		)
		return nil
	})
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// Reset drops the client so the next GetClient re-reads config
func Reset() {
	httpClient = nil
}
