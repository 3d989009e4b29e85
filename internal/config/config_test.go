package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8787", cfg.Port)
	assert.Equal(t, "heuristic", cfg.DefaultEngine)
	assert.Equal(t, "US", cfg.DefaultJurisdiction)
	assert.False(t, cfg.JurisdictionStrict)
	assert.Equal(t, 5000, cfg.MaxContentLength)
	assert.Equal(t, 20, cfg.MaxBatchSize)
	assert.Equal(t, 30, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"CF-IPCountry", "X-Vercel-IP-Country", "X-Country-Code"}, cfg.GeoHeaders)
	assert.InDelta(t, 0.3, cfg.LLMTemperature, 0.0001)
	assert.False(t, cfg.ModelConfigured())
	assert.Empty(t, cfg.TrustedProxies)
	assert.Empty(t, cfg.APIKeys)
	assert.False(t, cfg.TrustUserHeader)
	assert.False(t, cfg.HeuristicFoldWidth)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ANALYSIS_ENGINE", "Model")
	t.Setenv("JURISDICTION_STRICT", "true")
	t.Setenv("MAX_CONTENT_LENGTH", "280")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	t.Setenv("API_KEYS", "k1,k2")
	t.Setenv("TRUST_USER_ID_HEADER", "true")
	t.Setenv("HEURISTIC_FOLD_WIDTH", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "model", cfg.DefaultEngine)
	assert.True(t, cfg.JurisdictionStrict)
	assert.Equal(t, 280, cfg.MaxContentLength)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.True(t, cfg.ModelConfigured())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.True(t, cfg.TrustUserHeader)
	assert.True(t, cfg.HeuristicFoldWidth)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad int", "MAX_CONTENT_LENGTH", "lots"},
		{"zero length", "MAX_CONTENT_LENGTH", "0"},
		{"bad duration", "LLM_TIMEOUT", "soon"},
		{"bad engine", "ANALYSIS_ENGINE", "oracle"},
		{"bad temperature", "LLM_TEMPERATURE", "warm"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			cfg, err := FromEnv()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
