package market

import (
	"math"
	"sort"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Statistics — descriptive price aggregates
// ─────────────────────────────────────────────────────────────────────────────

// Statistics holds descriptive aggregates over comparable listing prices.
type Statistics struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// ErrNoComparableData signals that no usable prices survived filtering.
// Callers divert to the fallback estimator; the error never reaches the
// API surface.
var ErrNoComparableData = errors.New(errors.ErrCodeStatisticsInvalid, "no usable comparable prices")

// Aggregate computes Statistics over the comparables' prices. Prices that
// are non-positive, NaN or infinite are dropped before aggregation. It
// returns ErrNoComparableData when no price survives or the computed
// average is non-finite.
func Aggregate(comparables []vehicle.Comparable) (Statistics, error) {
	prices := make([]float64, 0, len(comparables))
	for _, c := range comparables {
		p := c.Price
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		prices = append(prices, p)
	}
	if len(prices) == 0 {
		return Statistics{}, ErrNoComparableData
	}

	sort.Float64s(prices)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return Statistics{}, ErrNoComparableData
	}

	return Statistics{
		Average: avg,
		Median:  median(prices),
		Min:     prices[0],
		Max:     prices[len(prices)-1],
		Count:   len(prices),
	}, nil
}

// median expects a sorted slice. Even lengths average the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Comparison counts how the query price sits inside the comparables'
// price distribution.
type Comparison struct {
	LowerPriced   int `json:"lowerPriced"`
	HigherPriced  int `json:"higherPriced"`
	SimilarPriced int `json:"similarPriced"`
}

// Compare partitions the usable comparable prices relative to queryPrice.
// Prices that failed the Aggregate filter are excluded here too, so the
// three counts always sum to Statistics.Count.
func Compare(queryPrice float64, comparables []vehicle.Comparable) Comparison {
	var cmp Comparison
	total := 0
	for _, c := range comparables {
		p := c.Price
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		total++
		switch {
		case p < queryPrice:
			cmp.LowerPriced++
		case p > queryPrice:
			cmp.HigherPriced++
		}
	}
	cmp.SimilarPriced = total - cmp.LowerPriced - cmp.HigherPriced
	return cmp
}
