// Package analysis orchestrates price fairness analysis: corpus access,
// similarity matching, statistics, rating, and recommendation assembly.
package analysis

import (
	"time"

	"github.com/fairwheel/fairwheel/internal/domain/market"
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
)

// Result is the complete outcome of one price analysis. It is immutable
// after construction.
type Result struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`

	UserCar     vehicle.Query     `json:"userCar"`
	MarketPrice market.Statistics `json:"marketPrice"`

	PriceRating          market.Rating `json:"priceRating"`
	PriceDifference      float64       `json:"priceDifference"`
	PercentageDifference float64       `json:"percentageDifference"`
	AdjustedDifference   float64       `json:"adjustedPercentageDifference"`

	MarketComparison market.Comparison `json:"marketComparison"`

	ComparableCount int `json:"similarCarsCount"`
	SourcedCount    int `json:"sourcedCarsCount"`
	SyntheticCount  int `json:"syntheticCarsCount"`

	Recommendations []string `json:"recommendations"`

	Fallback bool `json:"fallback"`
}

// CorpusInfo is the health-probe view of the corpus cache.
type CorpusInfo struct {
	Size        int       `json:"size"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Stale       bool      `json:"stale"`
}
