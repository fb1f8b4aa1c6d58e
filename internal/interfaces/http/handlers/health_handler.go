package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fairwheel/fairwheel/internal/application/analysis"
)

// HealthChecker is implemented by infrastructure components that can report
// their own health, such as the redis client and the postgres pool.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// namedChecker adapts a bare ping func into a HealthChecker.
type namedChecker struct {
	name string
	fn   func(ctx context.Context) error
}

func (n namedChecker) Name() string                    { return n.name }
func (n namedChecker) Check(ctx context.Context) error { return n.fn(ctx) }

// NamedChecker wraps fn as a HealthChecker with the given component name.
func NamedChecker(name string, fn func(ctx context.Context) error) HealthChecker {
	return namedChecker{name: name, fn: fn}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	svc      analysis.Service
	checkers []HealthChecker
	version  string
	startAt  time.Time
}

// NewHealthHandler creates a HealthHandler. svc may be nil when the corpus
// state is not available, e.g. in the CLI.
func NewHealthHandler(version string, svc analysis.Service, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		svc:      svc,
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
	}
}

// LivenessResponse is the body returned by the liveness probe.
type LivenessResponse struct {
	Status  string               `json:"status"`
	Version string               `json:"version"`
	Uptime  string               `json:"uptime"`
	Corpus  *analysis.CorpusInfo `json:"corpus,omitempty"`
}

// ReadinessResponse is the body returned by the readiness probe.
type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

// ComponentCheck is the health result for a single component.
type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz. It never checks external dependencies;
// a running process is an alive process.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	}
	if h.svc != nil {
		info := h.svc.CorpusInfo(c.Request.Context())
		resp.Corpus = &info
	}
	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /readyz. All registered components must answer
// within five seconds or the probe reports 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.checkers) == 0 {
		c.JSON(http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := h.checkAll(ctx)

	for _, cc := range components {
		if cc.Status != "healthy" {
			c.JSON(http.StatusServiceUnavailable, ReadinessResponse{
				Status:     "not_ready",
				Components: components,
			})
			return
		}
	}

	c.JSON(http.StatusOK, ReadinessResponse{
		Status:     "ready",
		Components: components,
	})
}

// checkAll runs every checker concurrently and collects the results.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.Check(ctx)

			cc := ComponentCheck{
				Status:  "healthy",
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}

			mu.Lock()
			results[hc.Name()] = cc
			mu.Unlock()
		}(checker)
	}

	wg.Wait()
	return results
}
