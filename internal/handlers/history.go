package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/errors"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/util"
)

// HistoryResponse is the body of GET /api/v1/history
type HistoryResponse struct {
	Records []history.Record `json:"records"`
}

// GetHistory lists the caller's recent analyses, newest first
// GET /api/v1/history?limit=20
func (h *Handlers) GetHistory(c *gin.Context) {
	if h.history == nil {
		util.RespondWithAPIError(c, errors.ServiceUnavailable("history"))
		return
	}
	limit := util.ParseBoundedInt(c.Query("limit"), 20, 1, h.historyLimit)

	records, err := h.history.List(c.Request.Context(), util.GetCallerIDFromContext(c), limit)
	if err != nil {
		_ = c.Error(err)
		util.RespondWithAPIError(c, errors.ServiceUnavailable("history"))
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	util.RespondOK(c, HistoryResponse{Records: records})
}

// DeleteHistory erases the caller's stored analyses
// DELETE /api/v1/history
func (h *Handlers) DeleteHistory(c *gin.Context) {
	if h.history == nil {
		util.RespondWithAPIError(c, errors.ServiceUnavailable("history"))
		return
	}
	if err := h.history.Delete(c.Request.Context(), util.GetCallerIDFromContext(c)); err != nil {
		_ = c.Error(err)
		util.RespondWithAPIError(c, errors.ServiceUnavailable("history"))
		return
	}
	util.RespondOK(c, gin.H{"deleted": true})
}
