package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records request count and latency per
// route. The route template (c.FullPath) is used as the path label so that
// parameterised routes collapse into one series; unmatched requests are
// labelled "unmatched" to keep cardinality bounded.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
