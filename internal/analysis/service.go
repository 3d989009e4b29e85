package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/json-iterator/go"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/internal/llm"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/metrics"
	"github.com/zfogg/postcheck/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownJurisdiction is returned only in strict mode
var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

// ResultCache stores serialized model results. *cache.RedisClient satisfies it.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Request is one post to score
type Request struct {
	Content      string
	Platform     string
	Jurisdiction string
	Engine       Engine
}

// ServiceConfig wires a Service
type ServiceConfig struct {
	Table         *jurisdiction.Table
	Model         *ModelAnalyzer
	ModelEnabled  bool
	DefaultEngine Engine
	Strict        bool
	Cache         ResultCache
	CacheTTL      time.Duration
	Heuristic     HeuristicOptions
}

// Service resolves the jurisdiction, picks an engine and records the outcome.
type Service struct {
	table         *jurisdiction.Table
	model         *ModelAnalyzer
	modelEnabled  bool
	defaultEngine Engine
	strict        bool
	cache         ResultCache
	cacheTTL      time.Duration
	heuristic     HeuristicOptions
}

// NewService builds a Service. A nil Table uses the built-in profiles and a
// nil Model yields degraded results whenever the model engine is requested.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Table == nil {
		cfg.Table = jurisdiction.Default()
	}
	if cfg.Model == nil {
		cfg.Model = NewModelAnalyzer(nil, llm.Params{})
	}
	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = EngineHeuristic
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Service{
		table:         cfg.Table,
		model:         cfg.Model,
		modelEnabled:  cfg.ModelEnabled,
		defaultEngine: cfg.DefaultEngine,
		strict:        cfg.Strict,
		cache:         cfg.Cache,
		cacheTTL:      cfg.CacheTTL,
		heuristic:     cfg.Heuristic,
	}
}

// Table exposes the profile table the service scores against
func (s *Service) Table() *jurisdiction.Table {
	return s.table
}

// Strict reports whether unknown jurisdictions are rejected
func (s *Service) Strict() bool {
	return s.strict
}

// ModelEnabled reports whether a model client is configured
func (s *Service) ModelEnabled() bool {
	return s.modelEnabled
}

// Profile resolves code to a profile. An empty code is the default
// jurisdiction, not a fallback.
func (s *Service) Profile(code string) (jurisdiction.Profile, bool, error) {
	if code == "" {
		return s.table.Get(s.table.DefaultCode()), false, nil
	}
	if p, ok := s.table.Lookup(code); ok {
		return p, false, nil
	}
	if s.strict {
		return jurisdiction.Profile{}, false, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, code)
	}
	return s.table.Get(code), true, nil
}

func (s *Service) resolveEngine(e Engine) Engine {
	if e == "" {
		e = s.defaultEngine
	}
	if e == EngineAuto {
		if s.modelEnabled {
			return EngineModel
		}
		return EngineHeuristic
	}
	return e
}

// Analyze scores one post. The only error is ErrUnknownJurisdiction in
// strict mode; model failures degrade instead of failing.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	engine := s.resolveEngine(req.Engine)

	profile, fellBack, err := s.Profile(req.Jurisdiction)
	if err != nil {
		return Result{}, err
	}

	ctx, span := telemetry.TraceAnalysis(ctx, telemetry.AnalysisAttrs{
		Engine:        string(engine),
		Jurisdiction:  profile.Code,
		Platform:      req.Platform,
		ContentLength: len(req.Content),
	})
	defer span.End()

	m := metrics.Get()
	if fellBack {
		m.JurisdictionFallbackTotal.Inc()
		logger.Log.Debug("Unknown jurisdiction, using default",
			zap.String("requested", req.Jurisdiction),
			logger.WithJurisdiction(profile.Code),
		)
	}

	var result Result
	cacheHit := false
	switch engine {
	case EngineModel:
		key := cacheKey(engine, req.Platform, profile.Code, req.Content)
		if cached, ok := s.cached(ctx, key); ok {
			result = cached
			cacheHit = true
		} else {
			result = s.model.Analyze(ctx, req.Content, ModelOptions{Platform: req.Platform, Profile: profile, Heuristic: s.heuristic})
			if !result.Degraded {
				s.store(ctx, key, result)
			}
		}
	default:
		result = EvaluateWith(req.Content, profile, s.heuristic)
		result.Platform = req.Platform
	}

	result.Jurisdiction = profile.Code
	result.JurisdictionFallback = fellBack
	result = Normalize(result)

	m.AnalysesTotal.WithLabelValues(string(result.Engine), string(result.Verdict)).Inc()
	m.AnalysisDuration.WithLabelValues(string(engine)).Observe(time.Since(start).Seconds())
	m.AnalysisRiskScore.WithLabelValues(profile.Code).Observe(float64(result.RiskScore))
	if result.Degraded {
		m.DegradedTotal.WithLabelValues(string(result.DegradedReason)).Inc()
	}
	telemetry.RecordAnalysisResult(span, result.RiskScore, string(result.Verdict), string(result.DegradedReason), cacheHit)

	return result, nil
}

// AnalyzeBatch scores every request concurrently, without a concurrency cap,
// and returns results in input order.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	metrics.Get().BatchSize.Observe(float64(len(reqs)))

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			r, err := s.Analyze(gctx, req)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) cached(ctx context.Context, key string) (Result, bool) {
	if s.cache == nil {
		return Result{}, false
	}
	m := metrics.Get()
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		m.CacheMissesTotal.WithLabelValues("analysis").Inc()
		return Result{}, false
	}
	var r Result
	if err := json.UnmarshalFromString(raw, &r); err != nil {
		logger.WarnWithFields("Discarding unreadable cached analysis", err)
		m.CacheMissesTotal.WithLabelValues("analysis").Inc()
		return Result{}, false
	}
	m.CacheHitsTotal.WithLabelValues("analysis").Inc()
	return r, true
}

func (s *Service) store(ctx context.Context, key string, r Result) {
	if s.cache == nil {
		return
	}
	raw, err := json.MarshalToString(r)
	if err != nil {
		return
	}
	if err := s.cache.SetEx(ctx, key, raw, s.cacheTTL); err != nil {
		logger.WarnWithFields("Failed to cache analysis", err)
	}
}

func cacheKey(engine Engine, platform, code, content string) string {
	h := sha256.New()
	for _, part := range []string{string(engine), platform, code, content} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}
