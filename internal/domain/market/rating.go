package market

import (
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// RatingEngine — categorical price fairness rating
// ─────────────────────────────────────────────────────────────────────────────

// Rating is the five-bucket categorical price fairness verdict.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingHigh      Rating = "high"
	RatingVeryHigh  Rating = "very_high"
)

// String returns the wire representation.
func (r Rating) String() string { return string(r) }

// Favorable reports whether the rating indicates a below-market price.
func (r Rating) Favorable() bool {
	return r == RatingExcellent || r == RatingGood
}

// Unfavorable reports whether the rating indicates an above-market price.
func (r Rating) Unfavorable() bool {
	return r == RatingHigh || r == RatingVeryHigh
}

// RatingEngine converts a raw percentage price difference into a Rating,
// after adjusting for ownership history and mileage.
//
// Adjustments are additive on top of the base percent difference:
//
//	owners:          1 → −5, 2 → 0, 3 → +3, ≥4 → +8
//	annual mileage:  <10k → −7, <15k → −3, ≤20k → 0, ≤30k → +5, else +10
//	total mileage:   >200k → +8, else >150k → +5
//
// Buckets over the adjusted difference, inclusive on the upper bound:
// ≤ −15 excellent, ≤ −5 good, ≤ 10 fair, ≤ 25 high, else very_high.
type RatingEngine struct {
	// ReferenceYear anchors age computation. Zero means the engine was
	// built without one and callers must use NewRatingEngine.
	ReferenceYear int

	log logging.Logger
}

// NewRatingEngine constructs a RatingEngine anchored at referenceYear.
func NewRatingEngine(referenceYear int, log logging.Logger) *RatingEngine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RatingEngine{ReferenceYear: referenceYear, log: log.Named("rating")}
}

// Rate returns the categorical rating and the adjusted percent
// difference for the query vehicle. basePercentDiff is
// (price − average) / average × 100.
func (e *RatingEngine) Rate(q vehicle.Query, basePercentDiff float64) (Rating, float64) {
	adjusted := basePercentDiff
	adjusted += ownerAdjustment(q.Owners)

	age := e.ReferenceYear - q.Year
	if age < 1 {
		age = 1
	}
	annual := float64(q.Mileage) / float64(age)
	adjusted += annualMileageAdjustment(annual)
	adjusted += totalMileageAdjustment(q.Mileage)

	rating := bucket(adjusted)

	e.log.Debug("price rated",
		logging.String("vehicle", q.Label()),
		logging.Float64("base_pct_diff", basePercentDiff),
		logging.Float64("adjusted_pct_diff", adjusted),
		logging.Float64("annual_mileage", annual),
		logging.String("rating", string(rating)),
	)
	return rating, adjusted
}

func ownerAdjustment(owners int) float64 {
	switch {
	case owners <= 1:
		return -5
	case owners == 2:
		return 0
	case owners == 3:
		return 3
	default:
		return 8
	}
}

func annualMileageAdjustment(annual float64) float64 {
	switch {
	case annual < 10000:
		return -7
	case annual < 15000:
		return -3
	case annual <= 20000:
		return 0
	case annual <= 30000:
		return 5
	default:
		return 10
	}
}

// totalMileageAdjustment applies independently of the annual-mileage
// adjustment; both may contribute.
func totalMileageAdjustment(mileage int) float64 {
	switch {
	case mileage > 200000:
		return 8
	case mileage > 150000:
		return 5
	default:
		return 0
	}
}

func bucket(adjusted float64) Rating {
	switch {
	case adjusted <= -15:
		return RatingExcellent
	case adjusted <= -5:
		return RatingGood
	case adjusted <= 10:
		return RatingFair
	case adjusted <= 25:
		return RatingHigh
	default:
		return RatingVeryHigh
	}
}

// PercentDiff computes the base percentage difference between price and
// the market average.
func PercentDiff(price, average float64) float64 {
	return (price - average) / average * 100
}
