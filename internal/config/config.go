// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zfogg/postcheck/internal/logger"
)

// Config is the fully resolved server configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogFile     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTimeout     time.Duration
	LLMTemperature float64
	LLMMaxTokens   int

	DefaultEngine       string
	DefaultJurisdiction string
	JurisdictionStrict  bool
	ProfilesFile        string
	GeoIPDatabase       string
	GeoHeaders          []string
	HeuristicFoldWidth  bool

	OTelEnabled  bool
	OTelEndpoint string

	CacheTTL          time.Duration
	HistoryLimit      int
	HistoryTTL        time.Duration
	MaxContentLength  int
	MaxBatchSize      int
	CORSAllowOrigins  []string
	TrustedProxies    []string
	APIKeys           []string
	TrustUserHeader   bool
	ShutdownGraceTime time.Duration
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env
func FromEnv() (*Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8787"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "postcheck.log"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RateLimitRequests: intVar("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   durVar("RATE_LIMIT_WINDOW", time.Minute),

		LLMBaseURL:   getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:    firstEnv("LLM_API_KEY", "OPENAI_API_KEY"),
		LLMModel:     getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:   durVar("LLM_TIMEOUT", 30*time.Second),
		LLMMaxTokens: intVar("LLM_MAX_TOKENS", 1000),

		DefaultEngine:       strings.ToLower(getEnvOrDefault("ANALYSIS_ENGINE", "heuristic")),
		DefaultJurisdiction: getEnvOrDefault("DEFAULT_JURISDICTION", "US"),
		JurisdictionStrict:  getEnvBool("JURISDICTION_STRICT", false),
		ProfilesFile:        os.Getenv("JURISDICTION_PROFILES_FILE"),
		GeoIPDatabase:       os.Getenv("GEOIP_DATABASE"),
		GeoHeaders:          splitList(getEnvOrDefault("GEO_HEADERS", "CF-IPCountry,X-Vercel-IP-Country,X-Country-Code")),
		HeuristicFoldWidth:  getEnvBool("HEURISTIC_FOLD_WIDTH", false),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),

		CacheTTL:          durVar("ANALYSIS_CACHE_TTL", 10*time.Minute),
		HistoryLimit:      intVar("HISTORY_LIMIT", 50),
		HistoryTTL:        durVar("HISTORY_TTL", 30*24*time.Hour),
		MaxContentLength:  intVar("MAX_CONTENT_LENGTH", 5000),
		MaxBatchSize:      intVar("MAX_BATCH_SIZE", 20),
		CORSAllowOrigins:  splitList(getEnvOrDefault("CORS_ALLOW_ORIGINS", "*")),
		ShutdownGraceTime: durVar("SHUTDOWN_TIMEOUT", 10*time.Second),
		TrustedProxies:    splitList(os.Getenv("TRUSTED_PROXIES")),
		APIKeys:           splitList(os.Getenv("API_KEYS")),
		TrustUserHeader:   getEnvBool("TRUST_USER_ID_HEADER", false),
	}

	temp, err := strconv.ParseFloat(getEnvOrDefault("LLM_TEMPERATURE", "0.3"), 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE: %v", err))
	}
	cfg.LLMTemperature = temp

	if err := cfg.validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DefaultEngine {
	case "heuristic", "model", "auto":
	default:
		return fmt.Errorf("ANALYSIS_ENGINE must be heuristic, model or auto, got %q", c.DefaultEngine)
	}
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ModelConfigured reports whether a language-model credential is present
func (c *Config) ModelConfigured() bool {
	return c.LLMAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
