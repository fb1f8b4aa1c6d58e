package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwheel/fairwheel/internal/domain/market"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	mc, err := NewMetricsCollector(CollectorConfig{Namespace: "fairwheel"}, logging.NewNopLogger())
	require.NoError(t, err)
	return mc
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestRegisterCounterIdempotent(t *testing.T) {
	mc := newTestCollector(t)

	a := mc.RegisterCounter("things_total", "Things.", "kind")
	b := mc.RegisterCounter("things_total", "Things.", "kind")
	a.WithLabelValues("x").Inc()
	b.WithLabelValues("x").Add(2)

	body := scrape(t, mc)
	assert.Contains(t, body, `fairwheel_things_total{kind="x"} 3`)
}

func TestGaugeAndHistogram(t *testing.T) {
	mc := newTestCollector(t)

	g := mc.RegisterGauge("corpus_size", "Corpus records.")
	g.WithLabelValues().Set(120)

	h := mc.RegisterHistogram("latency_seconds", "Latency.", nil)
	h.WithLabelValues().Observe(0.04)

	body := scrape(t, mc)
	assert.Contains(t, body, "fairwheel_corpus_size 120")
	assert.Contains(t, body, "fairwheel_latency_seconds_count 1")
}

func TestAppMetricsObserveAnalysis(t *testing.T) {
	mc := newTestCollector(t)
	m := NewAppMetrics(mc)

	m.ObserveAnalysis(market.RatingGood, false, 25*time.Millisecond)
	m.ObserveAnalysis(market.RatingVeryHigh, true, 5*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/vehicles/analyze-price", 200, 30*time.Millisecond)
	m.SetCorpusState(500, time.Now().Add(-time.Minute), time.Now())
	m.IncCorpusRefresh()

	body := scrape(t, mc)
	assert.Contains(t, body, `fairwheel_analyses_total{fallback="false",rating="good"} 1`)
	assert.Contains(t, body, `fairwheel_analyses_total{fallback="true",rating="very_high"} 1`)
	assert.Contains(t, body, `fairwheel_http_requests_total{method="POST",path="/api/v1/vehicles/analyze-price",status="200"} 1`)
	assert.Contains(t, body, "fairwheel_corpus_refreshes_total 1")
	assert.Contains(t, body, "fairwheel_corpus_size 500")
}

func scrape(t *testing.T, mc MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	mc.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}
