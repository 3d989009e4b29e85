package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/internal/llm"
	"github.com/zfogg/postcheck/internal/logger"
	"go.uber.org/zap"
)

// ModelOptions carry the per-call hints for a model analysis
type ModelOptions struct {
	Platform  string
	Profile   jurisdiction.Profile
	Heuristic HeuristicOptions
}

// ModelAnalyzer delegates scoring to a language model and falls back to the
// heuristic evaluator whenever the model can't produce a usable answer.
type ModelAnalyzer struct {
	client llm.Client
	params llm.Params
}

// NewModelAnalyzer wires an analyzer around client. A nil client yields a
// permanently degraded analyzer.
func NewModelAnalyzer(client llm.Client, params llm.Params) *ModelAnalyzer {
	if params.System == "" {
		params.System = systemPrompt
	}
	return &ModelAnalyzer{client: client, params: params}
}

// Analyze never returns an error; failures produce a degraded heuristic result.
func (a *ModelAnalyzer) Analyze(ctx context.Context, content string, opts ModelOptions) Result {
	if a.client == nil {
		return a.fallback(content, opts, DegradedMissingCredential, llm.ErrMissingCredential)
	}

	reply, err := a.client.Complete(ctx, buildPrompt(content, opts.Platform, opts.Profile), a.params)
	if err != nil {
		return a.fallback(content, opts, classifyFailure(err), err)
	}
	if strings.TrimSpace(reply) == "" {
		return a.fallback(content, opts, DegradedEmptyResponse, llm.ErrEmptyResponse)
	}

	object, ok := extractJSONObject(reply)
	if !ok {
		return a.fallback(content, opts, DegradedParseFailure, errors.New("no JSON object in model reply"))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(object), &raw); err != nil {
		return a.fallback(content, opts, DegradedParseFailure, fmt.Errorf("decode model reply: %w", err))
	}

	r := coerceAssessment(raw).toResult()
	r.Jurisdiction = opts.Profile.Code
	r.Platform = opts.Platform
	return r
}

func (a *ModelAnalyzer) fallback(content string, opts ModelOptions, reason DegradedReason, cause error) Result {
	logger.Log.Warn("Model analysis degraded, using heuristic",
		zap.String("reason", string(reason)),
		zap.Error(cause),
		logger.WithJurisdiction(opts.Profile.Code),
	)

	r := EvaluateWith(content, opts.Profile, opts.Heuristic)
	r.Platform = opts.Platform
	r.Degraded = true
	r.DegradedReason = reason
	r.Reasoning = fmt.Sprintf("Model analysis unavailable (%s); local heuristic result used", reason)
	return Normalize(r)
}

func classifyFailure(err error) DegradedReason {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return DegradedMissingCredential
	case errors.Is(err, llm.ErrEmptyResponse):
		return DegradedEmptyResponse
	case errors.Is(err, llm.ErrMalformedResponse):
		return DegradedParseFailure
	case errors.As(err, &statusErr):
		return DegradedBadStatus
	default:
		return DegradedTransport
	}
}
