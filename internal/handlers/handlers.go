// Package handlers exposes the scoring engine over HTTP.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/geo"
	"github.com/zfogg/postcheck/internal/history"
)

const (
	defaultMaxContentLength = 5000
	defaultMaxBatchSize     = 20
	defaultHistoryLimit     = 50
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	service  *analysis.Service
	resolver *geo.Resolver
	history  history.Store

	maxContentLength int
	maxBatchSize     int
	historyLimit     int

	checks map[string]HealthCheck
}

// NewHandlers creates a new handlers instance. A nil resolver only honours
// explicit country codes.
func NewHandlers(service *analysis.Service, resolver *geo.Resolver) *Handlers {
	if resolver == nil {
		resolver = geo.NewResolver(nil, nil)
	}
	return &Handlers{
		service:          service,
		resolver:         resolver,
		maxContentLength: defaultMaxContentLength,
		maxBatchSize:     defaultMaxBatchSize,
		historyLimit:     defaultHistoryLimit,
		checks:           make(map[string]HealthCheck),
	}
}

// SetHistoryStore enables the history endpoints
func (h *Handlers) SetHistoryStore(store history.Store, limit int) {
	h.history = store
	if limit > 0 {
		h.historyLimit = limit
	}
}

// SetLimits overrides the content length and batch size caps
func (h *Handlers) SetLimits(maxContentLength, maxBatchSize int) {
	if maxContentLength > 0 {
		h.maxContentLength = maxContentLength
	}
	if maxBatchSize > 0 {
		h.maxBatchSize = maxBatchSize
	}
}

// AddHealthCheck registers a dependency reported by /health
func (h *Handlers) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// RegisterRoutes mounts the API on r
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/analyze/batch", h.AnalyzeBatch)

		api.GET("/jurisdictions", h.ListJurisdictions)
		api.GET("/jurisdictions/:code", h.GetJurisdiction)

		api.GET("/history", h.GetHistory)
		api.DELETE("/history", h.DeleteHistory)
	}
}
