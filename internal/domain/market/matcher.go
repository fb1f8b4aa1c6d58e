// Package market implements the price analysis core: similarity matching,
// descriptive market statistics, the rating engine, the fallback
// estimator, and recommendation generation.
package market

import (
	"sort"
	"strings"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
)

// ─────────────────────────────────────────────────────────────────────────────
// Matcher — tiered similarity search
// ─────────────────────────────────────────────────────────────────────────────

// MaxComparables caps the matcher's output length.
const MaxComparables = 50

// Pass admission thresholds and trigger sizes.
const (
	strictThreshold  = 60
	relaxedThreshold = 40
	lenientThreshold = 20

	relaxedTrigger = 10 // run the relaxed pass when strict finds fewer
	lenientTrigger = 5  // run the lenient pass when relaxed finds fewer
)

// luxuryBrands is the fixed set used by the lenient pass to compare
// market tiers.
var luxuryBrands = map[string]bool{
	"bmw":           true,
	"mercedes-benz": true,
	"audi":          true,
	"lexus":         true,
	"porsche":       true,
	"tesla":         true,
	"jaguar":        true,
	"land rover":    true,
}

// IsLuxuryBrand reports whether make belongs to the luxury tier.
// Comparison is case-insensitive.
func IsLuxuryBrand(make string) bool {
	return luxuryBrands[strings.ToLower(strings.TrimSpace(make))]
}

// Matcher finds comparable listings for a query vehicle using three
// monotonically more lenient scoring passes. Each pass fully replaces the
// previous pass's output; results are never merged across passes.
type Matcher struct{}

// NewMatcher constructs a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match scores every corpus record against the query and returns the
// survivors of the last pass that ran, sorted by descending score and
// truncated to MaxComparables. Ties sort by ascending price, then retain
// corpus order.
//
// Pass 1 (strict, keep ≥ 60): make +40, model additionally +30, year
// difference ≤1/≤3/≤5 → +20/+15/+10, fuel +15, transmission +10, seats +5.
//
// Pass 2 (relaxed, keep ≥ 40, when pass 1 found < 10): make alone +50,
// year difference ≤2/≤5/≤8 → +25/+20/+15, fuel +15, transmission +10,
// price ratio ≥ 0.5 → +10.
//
// Pass 3 (lenient, keep ≥ 20, when pass 2 found < 5): same luxury tier
// +30, year difference ≤10 → +(20 − diff), +20 × price ratio.
func (m *Matcher) Match(query vehicle.Query, corpus []vehicle.Record) []vehicle.Comparable {
	matched := scorePass(query, corpus, strictScore, strictThreshold)
	if len(matched) < relaxedTrigger {
		matched = scorePass(query, corpus, relaxedScore, relaxedThreshold)
	}
	if len(matched) < lenientTrigger {
		matched = scorePass(query, corpus, lenientScore, lenientThreshold)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].Price < matched[j].Price
	})

	if len(matched) > MaxComparables {
		matched = matched[:MaxComparables]
	}
	return matched
}

type scoreFunc func(query vehicle.Query, r vehicle.Record) float64

func scorePass(query vehicle.Query, corpus []vehicle.Record, score scoreFunc, threshold float64) []vehicle.Comparable {
	out := make([]vehicle.Comparable, 0, len(corpus)/4)
	for _, r := range corpus {
		s := score(query, r)
		if s >= threshold {
			out = append(out, vehicle.Comparable{Record: r, Score: s})
		}
	}
	return out
}

func strictScore(q vehicle.Query, r vehicle.Record) float64 {
	score := 0.0

	if equalFold(q.Make, r.Make) {
		score += 40
		if equalFold(q.Model, r.Model) {
			score += 30
		}
	}

	switch diff := absInt(q.Year - r.Year); {
	case diff <= 1:
		score += 20
	case diff <= 3:
		score += 15
	case diff <= 5:
		score += 10
	}

	if q.FuelType != "" && r.FuelType != "" && equalFold(q.FuelType, r.FuelType) {
		score += 15
	}
	if q.Transmission != "" && r.Transmission != "" && equalFold(q.Transmission, r.Transmission) {
		score += 10
	}
	if q.Seats != 0 && r.Seats != 0 && q.Seats == r.Seats {
		score += 5
	}
	return score
}

func relaxedScore(q vehicle.Query, r vehicle.Record) float64 {
	score := 0.0

	if equalFold(q.Make, r.Make) {
		score += 50
	}

	switch diff := absInt(q.Year - r.Year); {
	case diff <= 2:
		score += 25
	case diff <= 5:
		score += 20
	case diff <= 8:
		score += 15
	}

	if q.FuelType != "" && r.FuelType != "" && equalFold(q.FuelType, r.FuelType) {
		score += 15
	}
	if q.Transmission != "" && r.Transmission != "" && equalFold(q.Transmission, r.Transmission) {
		score += 10
	}
	if priceRatio(q.Price, r.Price) >= 0.5 {
		score += 10
	}
	return score
}

func lenientScore(q vehicle.Query, r vehicle.Record) float64 {
	score := 0.0

	if IsLuxuryBrand(q.Make) == IsLuxuryBrand(r.Make) {
		score += 30
	}

	if diff := absInt(q.Year - r.Year); diff <= 10 {
		score += float64(20 - diff)
	}

	score += 20 * priceRatio(q.Price, r.Price)
	return score
}

// priceRatio returns min(a,b)/max(a,b), or 0 when either price is
// non-positive.
func priceRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		return b / a
	}
	return a / b
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
