package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairwheel/fairwheel/internal/domain/market"
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/corpus"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// Service exposes price analysis to the interface layers.
type Service interface {
	// AnalyzePrice runs the full pipeline for one query vehicle. The only
	// caller-visible error is a validation failure; every internal
	// problem resolves through the fallback estimator.
	AnalyzePrice(ctx context.Context, q vehicle.Query) (*Result, error)

	// CorpusInfo reports the state of the corpus cache for health probes.
	CorpusInfo(ctx context.Context) CorpusInfo
}

// Metrics receives analysis outcome signals. Implementations must be
// cheap and non-blocking.
type Metrics interface {
	ObserveAnalysis(rating market.Rating, fallback bool, duration time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveAnalysis(market.Rating, bool, time.Duration) {}

// NopMetrics returns a Metrics sink that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }

type service struct {
	cache         *corpus.Cache
	matcher       *market.Matcher
	rating        *market.RatingEngine
	fallback      *market.FallbackEstimator
	metrics       Metrics
	referenceYear int
	now           func() time.Time
	log           logging.Logger
}

// NewService wires the analysis pipeline. referenceYear anchors all age
// computations; metrics may be nil.
func NewService(
	cache *corpus.Cache,
	referenceYear int,
	metrics Metrics,
	log logging.Logger,
) Service {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("analysis")
	return &service{
		cache:         cache,
		matcher:       market.NewMatcher(),
		rating:        market.NewRatingEngine(referenceYear, log),
		fallback:      market.NewFallbackEstimator(log),
		metrics:       metrics,
		referenceYear: referenceYear,
		now:           time.Now,
		log:           log,
	}
}

func (s *service) AnalyzePrice(ctx context.Context, q vehicle.Query) (*Result, error) {
	q.Normalize()
	if err := q.Validate(s.referenceYear); err != nil {
		return nil, err
	}

	start := s.now()
	result := s.analyze(ctx, q)
	result.ID = uuid.NewString()
	result.GeneratedAt = s.now()

	s.metrics.ObserveAnalysis(result.PriceRating, result.Fallback, s.now().Sub(start))
	s.log.Info("analysis complete",
		logging.String("vehicle", q.Label()),
		logging.String("rating", string(result.PriceRating)),
		logging.Bool("fallback", result.Fallback),
		logging.Int("comparables", result.ComparableCount),
	)
	return result, nil
}

// analyze never fails: a panic anywhere in the market pipeline is
// recovered into a fallback estimate.
func (s *service) analyze(ctx context.Context, q vehicle.Query) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("analysis panicked, using fallback",
				logging.String("vehicle", q.Label()),
				logging.Any("panic", r),
			)
			result = s.estimate(q)
		}
	}()

	records, _ := s.cache.Snapshot(ctx, q)
	if len(records) == 0 {
		s.log.Warn("corpus empty, using fallback", logging.String("vehicle", q.Label()))
		return s.estimate(q)
	}

	comparables := s.matcher.Match(q, records)
	if len(comparables) == 0 {
		s.log.Warn("no comparables found, using fallback", logging.String("vehicle", q.Label()))
		return s.estimate(q)
	}

	stats, err := market.Aggregate(comparables)
	if err != nil {
		s.log.Warn("statistics invalid, using fallback",
			logging.String("vehicle", q.Label()),
			logging.Err(err),
		)
		return s.estimate(q)
	}

	baseDiff := market.PercentDiff(q.Price, stats.Average)
	rating, adjusted := s.rating.Rate(q, baseDiff)
	comparison := market.Compare(q.Price, comparables)
	recs := market.Recommendations(q, stats, rating, s.referenceYear)

	sourced, synthetic := 0, 0
	for _, c := range comparables {
		if c.Synthetic {
			synthetic++
		} else {
			sourced++
		}
	}
	recs = append([]string{dataSourceHeadline(sourced, synthetic)}, recs...)

	return &Result{
		UserCar:              q,
		MarketPrice:          stats,
		PriceRating:          rating,
		PriceDifference:      q.Price - stats.Average,
		PercentageDifference: baseDiff,
		AdjustedDifference:   adjusted,
		MarketComparison:     comparison,
		ComparableCount:      len(comparables),
		SourcedCount:         sourced,
		SyntheticCount:       synthetic,
		Recommendations:      recs,
	}
}

// estimate builds a fallback Result from the fixed price tables.
func (s *service) estimate(q vehicle.Query) *Result {
	est := s.fallback.Estimate(q, s.referenceYear)
	stats := est.Statistics

	baseDiff := market.PercentDiff(q.Price, stats.Average)
	rating, adjusted := s.rating.Rate(q, baseDiff)

	recs := market.Recommendations(q, stats, rating, s.referenceYear)
	recs = append(recs, market.FallbackDisclaimer)

	return &Result{
		UserCar:              q,
		MarketPrice:          stats,
		PriceRating:          rating,
		PriceDifference:      q.Price - stats.Average,
		PercentageDifference: baseDiff,
		AdjustedDifference:   adjusted,
		MarketComparison:     s.fallback.Comparison(rating),
		ComparableCount:      stats.Count,
		SyntheticCount:       stats.Count,
		Recommendations:      recs,
		Fallback:             true,
	}
}

func (s *service) CorpusInfo(ctx context.Context) CorpusInfo {
	info := s.cache.Info()
	return CorpusInfo{
		Size:        info.Size,
		RefreshedAt: info.RefreshedAt,
		Stale:       info.Stale,
	}
}

func dataSourceHeadline(sourced, synthetic int) string {
	if sourced > 0 {
		return fmt.Sprintf("Analysis based on %d sourced listings and %d market data points", sourced, synthetic)
	}
	return fmt.Sprintf("Analysis based on %d market data points with realistic pricing models", synthetic)
}
