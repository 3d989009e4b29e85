package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/errors"
	"github.com/zfogg/postcheck/internal/logger"
	"github.com/zfogg/postcheck/internal/metrics"
	"github.com/zfogg/postcheck/internal/util"
	"go.uber.org/zap"
)

// WindowCounter counts hits in a fixed window. *cache.RedisClient
// satisfies it.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// Counter is the shared store. When nil or failing, the in-process
	// window applies.
	Counter WindowCounter
}

// DefaultRateLimitConfig returns 30 requests per minute
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
	}
}

// RateLimit rejects callers that exceed Limit requests per Window, keyed by
// the caller identity.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 || config.Window <= 0 {
		def := DefaultRateLimitConfig()
		config.Limit, config.Window = def.Limit, def.Window
	}
	local := NewMemoryWindow()

	return func(c *gin.Context) {
		key := "rate_limit:" + util.GetCallerIDFromContext(c)
		backend := "memory"

		var count int64
		var remaining time.Duration
		var err error
		if config.Counter != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			count, remaining, err = config.Counter.IncrWindow(ctx, key, config.Window)
			cancel()
			if err == nil {
				backend = "redis"
			} else {
				logger.Log.Warn("Redis rate limiter unavailable, using local window",
					zap.String("key", key), zap.Error(err))
			}
		}
		if backend == "memory" {
			count, remaining, _ = local.IncrWindow(c.Request.Context(), key, config.Window)
		}

		left := int64(config.Limit) - count
		if left < 0 {
			left = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(left, 10))

		if count > int64(config.Limit) {
			retryAfter := int(math.Ceil(remaining.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			metrics.Get().RateLimitExceededTotal.WithLabelValues(backend).Inc()
			logger.Log.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("max_requests", config.Limit),
				zap.Int64("current_requests", count),
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			util.AbortWithAPIError(c, errors.RateLimited("").
				WithDetails("retry after "+strconv.Itoa(retryAfter)+"s"))
			return
		}

		c.Next()
	}
}

// MemoryWindow is an in-process fixed-window counter
type MemoryWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	sweep   time.Time
}

type window struct {
	count int64
	reset time.Time
}

// NewMemoryWindow returns an empty counter
func NewMemoryWindow() *MemoryWindow {
	return &MemoryWindow{windows: make(map[string]*window), sweep: time.Now()}
}

// IncrWindow implements WindowCounter
func (m *MemoryWindow) IncrWindow(_ context.Context, key string, d time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.sweep) > d {
		for k, w := range m.windows {
			if now.After(w.reset) {
				delete(m.windows, k)
			}
		}
		m.sweep = now
	}

	w, ok := m.windows[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(d)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.reset.Sub(now), nil
}
