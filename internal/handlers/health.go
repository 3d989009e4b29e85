package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/util"
)

// HealthResponse reports process and dependency state
type HealthResponse struct {
	Status          string            `json:"status"`
	Jurisdictions   int               `json:"jurisdictions"`
	ModelConfigured bool              `json:"model_configured"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
}

// Health reports 200 while the process can score posts. Failing optional
// dependencies only mark the status degraded.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:          "ok",
		Jurisdictions:   h.service.Table().Len(),
		ModelConfigured: h.service.ModelEnabled(),
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		resp.Dependencies = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Dependencies[name] = "unavailable"
				resp.Status = "degraded"
				continue
			}
			resp.Dependencies[name] = "ok"
		}
	}

	util.RespondOK(c, resp)
}
