package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/cache"
	"github.com/zfogg/postcheck/internal/config"
	"github.com/zfogg/postcheck/internal/geo"
	"github.com/zfogg/postcheck/internal/handlers"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/jurisdiction"
	"github.com/zfogg/postcheck/internal/llm"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/metrics"
	"github.com/zfogg/postcheck/internal/middleware"
	"github.com/zfogg/postcheck/internal/telemetry"
	"go.uber.org/zap"
)

const serviceName = "postcheck"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== postcheck server starting ===", zap.String("environment", cfg.Environment))

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	metrics.Initialize()

	table, err := loadProfiles(cfg)
	if err != nil {
		logger.FatalWithFields("Failed to load jurisdiction profiles", err)
	}

	// Redis is optional: without it results are not cached, history lives in
	// memory and rate limits are per process.
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var modelClient llm.Client
	if cfg.ModelConfigured() {
		modelClient = llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.LLMTimeout,
		})
	} else {
		logger.Warn("No language model credential configured; model analyses will degrade to the heuristic")
	}

	defaultEngine, _ := analysis.ParseEngine(cfg.DefaultEngine, analysis.EngineHeuristic)
	serviceCfg := analysis.ServiceConfig{
		Table: table,
		Model: analysis.NewModelAnalyzer(modelClient, llm.Params{
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
		}),
		ModelEnabled:  modelClient != nil,
		DefaultEngine: defaultEngine,
		Strict:        cfg.JurisdictionStrict,
		CacheTTL:      cfg.CacheTTL,
		Heuristic:     analysis.HeuristicOptions{FoldWidth: cfg.HeuristicFoldWidth},
	}
	if redisClient != nil {
		serviceCfg.Cache = redisClient
	}
	service := analysis.NewService(serviceCfg)

	var locator geo.Locator
	if cfg.GeoIPDatabase != "" {
		mm, err := geo.OpenMaxMind(cfg.GeoIPDatabase)
		if err != nil {
			logger.WarnWithFields("GeoIP lookups disabled", err)
		} else {
			defer mm.Close()
			locator = mm
		}
	}

	h := handlers.NewHandlers(service, geo.NewResolver(cfg.GeoHeaders, locator))
	h.SetLimits(cfg.MaxContentLength, cfg.MaxBatchSize)

	rateLimit := middleware.RateLimitConfig{
		Limit:  cfg.RateLimitRequests,
		Window: cfg.RateLimitWindow,
	}
	if redisClient != nil {
		h.SetHistoryStore(history.NewRedisStore(redisClient, cfg.HistoryLimit, cfg.HistoryTTL), cfg.HistoryLimit)
		h.AddHealthCheck("redis", redisClient.Ping)
		rateLimit.Counter = redisClient
	} else {
		h.SetHistoryStore(history.NewMemoryStore(cfg.HistoryLimit), cfg.HistoryLimit)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxies); err != nil {
		logger.FatalWithFields("Invalid TRUSTED_PROXIES", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(serviceName))
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.TimingMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))
	r.Use(middleware.CallerIdentity(middleware.IdentityConfig{
		APIKeys:         cfg.APIKeys,
		TrustUserHeader: cfg.TrustUserHeader,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("")
	api.Use(middleware.RateLimit(rateLimit))
	h.RegisterRoutes(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("postcheck listening",
			zap.String("port", cfg.Port),
			zap.Int("jurisdictions", table.Len()),
			zap.String("default_jurisdiction", table.DefaultCode()),
			zap.Bool("model", modelClient != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGraceTime)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}

	logger.Log.Info("Server exited")
}

// loadProfiles returns the embedded table, or the override file when one is
// configured, with the configured default jurisdiction applied.
func loadProfiles(cfg *config.Config) (*jurisdiction.Table, error) {
	table := jurisdiction.Default()
	if cfg.ProfilesFile != "" {
		loaded, err := jurisdiction.LoadFile(cfg.ProfilesFile)
		if err != nil {
			return nil, err
		}
		table = loaded
		logger.Log.Info("Loaded jurisdiction profiles", zap.String("file", cfg.ProfilesFile), zap.Int("count", table.Len()))
	}
	if cfg.DefaultJurisdiction != "" && cfg.DefaultJurisdiction != table.DefaultCode() {
		return table.WithDefault(cfg.DefaultJurisdiction)
	}
	return table, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, "X-API-Key", "X-User-ID", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "X-Analysis-Engine", "X-Analysis-Degraded", "X-Jurisdiction-Source", "Retry-After", "Server-Timing"}
	return c
}
