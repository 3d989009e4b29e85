package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/errors"
	"github.com/zfogg/postcheck/internal/geo"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/middleware"
	"github.com/zfogg/postcheck/internal/util"
	"go.uber.org/zap"
)

// AnalyzeRequest is the body of POST /api/v1/analyze and one batch item
type AnalyzeRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
	Country  string `json:"country"`
	Engine   string `json:"engine"`
}

// BatchRequest is the body of POST /api/v1/analyze/batch
type BatchRequest struct {
	Items []AnalyzeRequest `json:"items"`
}

// BatchResponse holds results in request order
type BatchResponse struct {
	Results []analysis.Result `json:"results"`
}

// Analyze scores one post
// POST /api/v1/analyze
func (h *Handlers) Analyze(c *gin.Context) {
	var body AnalyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	if body.Country == "" {
		body.Country = c.Query("country")
	}

	req, resolution, apiErr := h.buildRequest(c, body, "")
	if apiErr != nil {
		util.RespondWithAPIError(c, apiErr)
		return
	}
	c.Set(middleware.JurisdictionKey, req.Jurisdiction)

	result, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondAnalysisError(c, err, req.Jurisdiction)
		return
	}

	h.recordHistory(c, body.Content, result)

	c.Header("X-Analysis-Engine", string(result.Engine))
	c.Header("X-Analysis-Degraded", degradedHeader(result))
	c.Header("X-Jurisdiction-Source", string(resolution.Source))
	util.RespondOK(c, result)
}

// AnalyzeBatch scores up to the configured number of posts in one call
// POST /api/v1/analyze/batch
func (h *Handlers) AnalyzeBatch(c *gin.Context) {
	var body BatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}
	if len(body.Items) == 0 {
		util.RespondBadRequest(c, "items must not be empty")
		return
	}
	if len(body.Items) > h.maxBatchSize {
		util.RespondWithAPIError(c, errors.ValidationError("items",
			fmt.Sprintf("batch exceeds %d items", h.maxBatchSize)))
		return
	}

	reqs := make([]analysis.Request, len(body.Items))
	for i, item := range body.Items {
		req, _, apiErr := h.buildRequest(c, item, fmt.Sprintf("items[%d].", i))
		if apiErr != nil {
			util.RespondWithAPIError(c, apiErr)
			return
		}
		reqs[i] = req
	}

	results, err := h.service.AnalyzeBatch(c.Request.Context(), reqs)
	if err != nil {
		h.respondAnalysisError(c, err, "")
		return
	}

	for i, result := range results {
		h.recordHistory(c, body.Items[i].Content, result)
	}
	util.RespondOK(c, BatchResponse{Results: results})
}

// buildRequest validates one item and resolves its jurisdiction. prefix
// qualifies field names inside a batch.
func (h *Handlers) buildRequest(c *gin.Context, body AnalyzeRequest, prefix string) (analysis.Request, geo.Resolution, *errors.APIError) {
	if strings.TrimSpace(body.Content) == "" {
		return analysis.Request{}, geo.Resolution{}, errors.BadRequest(prefix + "content is required")
	}
	if util.RuneLength(body.Content) > h.maxContentLength {
		apiErr := errors.ContentTooLarge(h.maxContentLength)
		apiErr.Field = prefix + "content"
		return analysis.Request{}, geo.Resolution{}, apiErr
	}

	engine, ok := analysis.ParseEngine(strings.ToLower(strings.TrimSpace(body.Engine)), "")
	if !ok {
		return analysis.Request{}, geo.Resolution{}, errors.ValidationError(prefix+"engine",
			"engine must be one of heuristic, model, auto")
	}

	resolution := h.resolver.Resolve(body.Country, c.Request)
	if h.service.Strict() && resolution.Code != "" {
		if _, ok := h.service.Table().Lookup(resolution.Code); !ok {
			apiErr := errors.UnknownJurisdiction(resolution.Code)
			apiErr.Field = prefix + "country"
			return analysis.Request{}, resolution, apiErr
		}
	}

	return analysis.Request{
		Content:      body.Content,
		Platform:     strings.TrimSpace(body.Platform),
		Jurisdiction: resolution.Code,
		Engine:       engine,
	}, resolution, nil
}

func (h *Handlers) respondAnalysisError(c *gin.Context, err error, code string) {
	if stderrors.Is(err, analysis.ErrUnknownJurisdiction) {
		util.RespondWithAPIError(c, errors.UnknownJurisdiction(code).WithDetails(err.Error()))
		return
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		util.RespondWithAPIError(c, errors.Timeout("analysis"))
		return
	}
	_ = c.Error(err)
	middleware.RecordError("analysis", c.FullPath())
	util.RespondInternalError(c, "analysis failed")
}

// recordHistory is best effort; a failing store never fails the request.
func (h *Handlers) recordHistory(c *gin.Context, content string, result analysis.Result) {
	if h.history == nil {
		return
	}
	callerID := util.GetCallerIDFromContext(c)
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.history.Append(ctx, history.NewRecord(callerID, content, result)); err != nil {
		logger.Log.Warn("Failed to record analysis history",
			logger.WithCallerID(callerID),
			logger.WithRequestID(util.GetRequestIDFromContext(c)),
			zap.Error(err),
		)
	}
}

func degradedHeader(r analysis.Result) string {
	if !r.Degraded {
		return "false"
	}
	return string(r.DegradedReason)
}
