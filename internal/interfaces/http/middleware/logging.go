package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// LoggingConfig holds configuration for the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are paths that should not be logged, typically the
	// high-frequency health and metrics endpoints.
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged at
	// Warn level even when it succeeded.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the logging configuration used by the API
// server when nothing else is specified.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestLogging returns middleware that logs one line per completed
// request. 5xx responses log at Error, 4xx and slow requests at Warn,
// everything else at Info.
func RequestLogging(log logging.Logger, cfg LoggingConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.Int("bytes", c.Writer.Size()),
			logging.String("client_ip", c.ClientIP()),
			logging.String("request_id", GetRequestID(c)),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			fields = append(fields, logging.String("user_agent", ua))
		}

		switch {
		case status >= 500:
			log.Error("http request completed with server error", fields...)
		case status >= 400:
			log.Warn("http request completed with client error", fields...)
		case cfg.SlowThreshold > 0 && duration >= cfg.SlowThreshold:
			log.Warn("http request completed (slow)", fields...)
		default:
			log.Info("http request completed", fields...)
		}
	}
}
