package handlers

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/postcheck/internal/analysis"
	"github.com/zfogg/postcheck/internal/geo"
	"github.com/zfogg/postcheck/internal/history"
	"github.com/zfogg/postcheck/internal/llm"
	"github.com/zfogg/postcheck/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const modelReply = `{"overall_risk": "low", "risk_score": 85, "confidence": 88, "recommendation": "safe",
"suggestions": ["Fine as is"], "reasoning": "harmless"}`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testServer struct {
	router  *gin.Engine
	handler *Handlers
	history *history.MemoryStore
}

func newTestServer(t *testing.T, cfg analysis.ServiceConfig) *testServer {
	t.Helper()
	h := NewHandlers(analysis.NewService(cfg), geo.NewResolver(nil, nil))
	store := history.NewMemoryStore(10)
	h.SetHistoryStore(store, 10)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.CallerIdentity(middleware.IdentityConfig{TrustUserHeader: true}))
	h.RegisterRoutes(router)
	return &testServer{router: router, handler: h, history: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestAnalyzeHeuristic(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{
		Content:  "I hate this stupid government and their rules",
		Platform: "twitter",
		Country:  "de",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "heuristic", w.Header().Get("X-Analysis-Engine"))
	assert.Equal(t, "false", w.Header().Get("X-Analysis-Degraded"))
	assert.Equal(t, "explicit", w.Header().Get("X-Jurisdiction-Source"))

	var result analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 40, result.RiskScore)
	assert.Equal(t, analysis.VerdictHighRisk, result.Verdict)
	assert.Equal(t, "DE", result.Jurisdiction)
	assert.False(t, result.JurisdictionFallback)
	assert.NotEmpty(t, result.LegalRisks)
}

func TestAnalyzeCountryFromHeader(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze",
		AnalyzeRequest{Content: "Enjoying my morning coffee"},
		map[string]string{"CF-IPCountry": "JP"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header", w.Header().Get("X-Jurisdiction-Source"))

	var result analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "JP", result.Jurisdiction)
	assert.Equal(t, 100, result.RiskScore)
	assert.Equal(t, analysis.VerdictSafe, result.Verdict)
}

func TestAnalyzeUnknownCountryFallsBack(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze?country=zz",
		AnalyzeRequest{Content: "Enjoying my morning coffee"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var result analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "US", result.Jurisdiction)
	assert.True(t, result.JurisdictionFallback)
}

func TestAnalyzeValidation(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{Strict: true})
	srv.handler.SetLimits(20, 0)

	testCases := []struct {
		name   string
		body   interface{}
		status int
		code   string
		field  string
	}{
		{"empty content", AnalyzeRequest{Content: "   "}, http.StatusBadRequest, "BAD_REQUEST", ""},
		{"too long", AnalyzeRequest{Content: strings.Repeat("é", 21)}, http.StatusRequestEntityTooLarge, "CONTENT_TOO_LARGE", "content"},
		{"bad engine", AnalyzeRequest{Content: "hi", Engine: "gpt"}, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "engine"},
		{"strict unknown country", AnalyzeRequest{Content: "hi", Country: "ZZ"}, http.StatusUnprocessableEntity, "UNKNOWN_JURISDICTION", "country"},
		{"malformed json", "not an object", http.StatusBadRequest, "BAD_REQUEST", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := srv.do(t, http.MethodPost, "/api/v1/analyze", tc.body, nil)
			assert.Equal(t, tc.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Equal(t, tc.field, env.Error.Field)
		})
	}

	exact := strings.Repeat("é", 20)
	w, _ := srv.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Content: exact}, nil)
	assert.Equal(t, http.StatusOK, w.Code, "limit counts characters, not bytes")
}

func TestAnalyzeModelDegradedHeader(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{
		Model:        analysis.NewModelAnalyzer(&llm.FailingClient{Err: stderrors.New("dial tcp: refused")}, llm.Params{}),
		ModelEnabled: true,
	})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze",
		AnalyzeRequest{Content: "Enjoying my morning coffee", Engine: "model"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "transport", w.Header().Get("X-Analysis-Degraded"))

	var result analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Degraded)
	assert.Equal(t, 100, result.RiskScore)
}

func TestAnalyzeModelEngine(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{
		Model:        analysis.NewModelAnalyzer(&llm.StaticClient{Reply: modelReply}, llm.Params{}),
		ModelEnabled: true,
	})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze",
		AnalyzeRequest{Content: "Enjoying my morning coffee", Engine: "auto", Country: "GB"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "model", w.Header().Get("X-Analysis-Engine"))

	var result analysis.Result
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 85, result.RiskScore)
	assert.Equal(t, 88, result.Confidence)
	assert.Equal(t, "GB", result.Jurisdiction)
}

func TestAnalyzeBatch(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{Items: []AnalyzeRequest{
		{Content: "I hate this stupid government and their rules", Country: "DE"},
		{Content: "Enjoying my morning coffee", Country: "US"},
	}}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "DE", resp.Results[0].Jurisdiction)
	assert.Equal(t, 40, resp.Results[0].RiskScore)
	assert.Equal(t, "US", resp.Results[1].Jurisdiction)
	assert.Equal(t, 100, resp.Results[1].RiskScore)
}

func TestAnalyzeBatchValidation(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})
	srv.handler.SetLimits(0, 2)

	w, env := srv.do(t, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	items := []AnalyzeRequest{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	w, env = srv.do(t, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{Items: items}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "items", env.Error.Field)

	items = []AnalyzeRequest{{Content: "a"}, {Content: "b", Engine: "nope"}}
	w, env = srv.do(t, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{Items: items}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "items[1].engine", env.Error.Field)
}

func TestJurisdictions(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})

	w, env := srv.do(t, http.MethodGet, "/api/v1/jurisdictions", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list JurisdictionList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, "US", list.Default)
	assert.Len(t, list.Jurisdictions, 15)

	w, env = srv.do(t, http.MethodGet, "/api/v1/jurisdictions/de", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Code         string `json:"code"`
		FreedomScore int    `json:"freedom_score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "DE", profile.Code)
	assert.Equal(t, 70, profile.FreedomScore)

	w, env = srv.do(t, http.MethodGet, "/api/v1/jurisdictions/ZZ", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHistoryRoundTrip(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})
	alice := map[string]string{"X-User-ID": "alice"}

	for _, content := range []string{"first post", "second post"} {
		w, _ := srv.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Content: content}, alice)
		require.Equal(t, http.StatusOK, w.Code)
	}
	srv.do(t, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Content: "bob's post"}, map[string]string{"X-User-ID": "bob"})

	w, env := srv.do(t, http.MethodGet, "/api/v1/history?limit=5", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "second post", resp.Records[0].Preview)
	assert.Equal(t, "US", resp.Records[0].Jurisdiction)

	w, _ = srv.do(t, http.MethodDelete, "/api/v1/history", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	records, err := srv.history.List(context.Background(), "user:alice", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	records, _ = srv.history.List(context.Background(), "user:bob", 0)
	assert.Len(t, records, 1)
}

func TestHistoryDisabled(t *testing.T) {
	h := NewHandlers(analysis.NewService(analysis.ServiceConfig{}), nil)
	router := gin.New()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, analysis.ServiceConfig{})
	srv.handler.AddHealthCheck("redis", func(context.Context) error { return stderrors.New("down") })

	w, env := srv.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, 15, resp.Jurisdictions)
	assert.False(t, resp.ModelConfigured)
	assert.Equal(t, "unavailable", resp.Dependencies["redis"])
}
