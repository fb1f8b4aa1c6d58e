package prometheus

import (
	"strconv"
	"time"

	"github.com/fairwheel/fairwheel/internal/domain/market"
)

// AppMetrics bundles the application's metric instruments.
type AppMetrics struct {
	analysesTotal    CounterVec
	analysisDuration HistogramVec
	corpusSize       GaugeVec
	corpusAgeSeconds GaugeVec
	corpusRefreshes  CounterVec

	httpRequests CounterVec
	httpDuration HistogramVec
}

// NewAppMetrics registers the application metrics on the collector.
func NewAppMetrics(mc MetricsCollector) *AppMetrics {
	return &AppMetrics{
		analysesTotal: mc.RegisterCounter(
			"analyses_total",
			"Completed price analyses by rating and fallback flag.",
			"rating", "fallback",
		),
		analysisDuration: mc.RegisterHistogram(
			"analysis_duration_seconds",
			"Price analysis latency.",
			nil,
		),
		corpusSize: mc.RegisterGauge(
			"corpus_size",
			"Records in the current corpus snapshot.",
		),
		corpusAgeSeconds: mc.RegisterGauge(
			"corpus_age_seconds",
			"Seconds since the corpus was last refreshed.",
		),
		corpusRefreshes: mc.RegisterCounter(
			"corpus_refreshes_total",
			"Corpus refresh operations.",
		),
		httpRequests: mc.RegisterCounter(
			"http_requests_total",
			"HTTP requests by method, path and status.",
			"method", "path", "status",
		),
		httpDuration: mc.RegisterHistogram(
			"http_request_duration_seconds",
			"HTTP request latency by method and path.",
			nil,
			"method", "path",
		),
	}
}

// ObserveAnalysis satisfies the analysis service's Metrics interface.
func (m *AppMetrics) ObserveAnalysis(rating market.Rating, fallback bool, duration time.Duration) {
	m.analysesTotal.WithLabelValues(string(rating), strconv.FormatBool(fallback)).Inc()
	m.analysisDuration.WithLabelValues().Observe(duration.Seconds())
}

// ObserveHTTPRequest records one served request.
func (m *AppMetrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetCorpusState updates the corpus gauges.
func (m *AppMetrics) SetCorpusState(size int, refreshedAt time.Time, now time.Time) {
	m.corpusSize.WithLabelValues().Set(float64(size))
	if !refreshedAt.IsZero() {
		m.corpusAgeSeconds.WithLabelValues().Set(now.Sub(refreshedAt).Seconds())
	}
}

// IncCorpusRefresh counts one corpus refresh.
func (m *AppMetrics) IncCorpusRefresh() {
	m.corpusRefreshes.WithLabelValues().Inc()
}
