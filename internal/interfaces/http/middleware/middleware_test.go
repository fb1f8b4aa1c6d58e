package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/prometheus"
	"github.com/fairwheel/fairwheel/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── RequestID ────────────────────────────────────────────────────────────────

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())

	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = middleware.GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := get(r, "/", nil)

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_PropagatesInbound(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", map[string]string{middleware.RequestIDHeader: "req-abc"})
	assert.Equal(t, "req-abc", w.Header().Get(middleware.RequestIDHeader))
}

// ── RequestLogging ───────────────────────────────────────────────────────────

func observedRouter(cfg middleware.LoggingConfig) (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(log, cfg))
	return r, logs
}

func TestRequestLogging_InfoOnSuccess(t *testing.T) {
	r, logs := observedRouter(middleware.DefaultLoggingConfig())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	get(r, "/ok", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRequestLogging_WarnOnClientError(t *testing.T) {
	r, logs := observedRouter(middleware.DefaultLoggingConfig())
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	get(r, "/bad", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRequestLogging_ErrorOnServerError(t *testing.T) {
	r, logs := observedRouter(middleware.DefaultLoggingConfig())
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	get(r, "/boom", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestRequestLogging_SkipsConfiguredPaths(t *testing.T) {
	r, logs := observedRouter(middleware.DefaultLoggingConfig())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(r, "/healthz", nil)
	assert.Zero(t, logs.Len())
}

func TestRequestLogging_SlowRequestWarns(t *testing.T) {
	cfg := middleware.LoggingConfig{SlowThreshold: time.Nanosecond}
	r, logs := observedRouter(cfg)
	r.GET("/slow", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	get(r, "/slow", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "slow")
}

// ── CORS ─────────────────────────────────────────────────────────────────────

func corsRouter(cfg middleware.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_AllowAllOrigins(t *testing.T) {
	r := corsRouter(middleware.DefaultCORSConfig())

	w := get(r, "/", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightReturns204(t *testing.T) {
	r := corsRouter(middleware.DefaultCORSConfig())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	cfg := middleware.DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://trusted.example.com"}
	r := corsRouter(cfg)

	w := get(r, "/", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginHeaderPassesThrough(t *testing.T) {
	r := corsRouter(middleware.DefaultCORSConfig())

	w := get(r, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// ── Recovery ─────────────────────────────────────────────────────────────────

func TestRecovery_PanicBecomes500Envelope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logging.NewLoggerFromCore(core)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := get(r, "/panic", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "COMMON_001", resp["code"])
	assert.NotContains(t, resp["message"], "kaboom")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

// ── Metrics ──────────────────────────────────────────────────────────────────

func TestMetrics_ObservesRequests(t *testing.T) {
	mc, err := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "testapi"}, logging.NewNopLogger())
	require.NoError(t, err)
	app := prometheus.NewAppMetrics(mc)

	r := gin.New()
	r.Use(middleware.Metrics(app))
	r.GET("/things/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	get(r, "/things/42", nil)
	get(r, "/things/43", nil)

	w := httptest.NewRecorder()
	mc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	// Route template keeps cardinality flat across path params.
	assert.True(t, strings.Contains(body,
		`testapi_http_requests_total{method="GET",path="/things/:id",status="200"} 2`), body)
}
