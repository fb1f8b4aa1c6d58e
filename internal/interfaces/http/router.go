// Package http wires the gin route tree and the HTTP server for the public
// price analysis API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/prometheus"
	"github.com/fairwheel/fairwheel/internal/interfaces/http/handlers"
	"github.com/fairwheel/fairwheel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	AnalyzeHandler *handlers.AnalyzeHandler
	HealthHandler  *handlers.HealthHandler

	// Infrastructure
	Logger        logging.Logger
	Metrics       *prometheus.AppMetrics
	MetricsServer http.Handler

	// Mode is the gin mode: "debug", "release" or "test".
	Mode string

	// Optional middleware overrides. Zero values pick the defaults.
	CORS    *middleware.CORSConfig
	Logging *middleware.LoggingConfig
}

// NewRouter constructs the complete route tree: global middleware, public
// health endpoints, the metrics endpoint, and the v1 API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()

	// --- Global middleware (applied to every request) ---
	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		r.Use(middleware.Recovery(cfg.Logger))

		logCfg := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			logCfg = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// --- Public health endpoints ---
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	// --- Metrics endpoint ---
	if cfg.MetricsServer != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsServer))
	}

	// --- API v1 ---
	api := r.Group("/api/v1")
	if cfg.AnalyzeHandler != nil {
		api.POST("/vehicles/analyze-price", cfg.AnalyzeHandler.AnalyzePrice)
		api.GET("/market/corpus", cfg.AnalyzeHandler.CorpusInfo)
	}

	return r
}
