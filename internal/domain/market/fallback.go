package market

import (
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// FallbackEstimator — analysis without comparables
// ─────────────────────────────────────────────────────────────────────────────

// FallbackDisclaimer is appended to every fallback recommendation list.
const FallbackDisclaimer = "Note: This analysis is based on estimated market data due to limited comparable vehicles."

// Fallback estimation constants.
const (
	fallbackDepreciationPerYear = 0.10
	fallbackMaxDepreciation     = 0.80
	fallbackHighMileageFactor   = 0.85
	fallbackHighMileageCutoff   = 100000

	// Synthetic statistics envelope around the point estimate.
	fallbackMinFactor    = 0.7
	fallbackMaxFactor    = 1.4
	fallbackMedianFactor = 0.95
	fallbackCount        = 10
)

// Estimate is the output of the fallback estimator: a point price
// estimate wrapped in a synthetic Statistics envelope plus fixed
// comparison counts.
type Estimate struct {
	Price      float64
	Statistics Statistics
}

// FallbackEstimator produces an analysis when no usable comparables
// exist. It derives a point estimate from a fixed base price table,
// depreciates it linearly at 10% per year capped at 80%, and discounts
// high-mileage vehicles by 15% above 100k km.
type FallbackEstimator struct {
	log logging.Logger
}

// NewFallbackEstimator constructs a FallbackEstimator.
func NewFallbackEstimator(log logging.Logger) *FallbackEstimator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FallbackEstimator{log: log.Named("fallback")}
}

// Estimate returns the synthetic market view for the query vehicle. Age
// is computed against referenceYear. It never fails: unknown makes fall
// through to a generic base price.
func (f *FallbackEstimator) Estimate(q vehicle.Query, referenceYear int) Estimate {
	base := fallbackBasePrice(q.Make, q.Model)

	age := referenceYear - q.Year
	if age < 0 {
		age = 0
	}
	depreciation := fallbackDepreciationPerYear * float64(age)
	if depreciation > fallbackMaxDepreciation {
		depreciation = fallbackMaxDepreciation
	}
	price := base * (1 - depreciation)

	if q.Mileage > fallbackHighMileageCutoff {
		price *= fallbackHighMileageFactor
	}

	f.log.Info("fallback estimate computed",
		logging.String("vehicle", q.Label()),
		logging.Float64("base_price", base),
		logging.Float64("estimate", price),
		logging.Int("age", age),
	)

	return Estimate{
		Price: price,
		Statistics: Statistics{
			Average: price,
			Median:  price * fallbackMedianFactor,
			Min:     price * fallbackMinFactor,
			Max:     price * fallbackMaxFactor,
			Count:   fallbackCount,
		},
	}
}

// Comparison returns the fixed distribution counts used when the market
// view is estimated rather than observed.
func (f *FallbackEstimator) Comparison(rating Rating) Comparison {
	lower := 6
	if rating.Favorable() {
		lower = 3
	}
	higher := 3
	if rating.Unfavorable() {
		higher = 6
	}
	return Comparison{
		LowerPriced:   lower,
		HigherPriced:  higher,
		SimilarPriced: fallbackCount - lower - higher,
	}
}

// fallbackBasePrice is the fixed per-make/per-model-tier table. It is
// deliberately coarser than the generator's pricing bands.
func fallbackBasePrice(make, model string) float64 {
	switch make {
	case "Mercedes-Benz":
		switch model {
		case "CLA200", "CLA250", "C200":
			return 200000
		case "C300", "E200", "GLC":
			return 300000
		case "E300", "S500", "GLE":
			return 500000
		default:
			return 250000
		}
	case "BMW":
		switch model {
		case "1 Series", "X1", "3 Series":
			return 220000
		case "5 Series", "X3", "X5":
			return 350000
		default:
			return 280000
		}
	case "Audi":
		switch model {
		case "A3", "Q3":
			return 200000
		case "A4", "A6", "Q5":
			return 300000
		default:
			return 250000
		}
	case "Lexus":
		return 280000
	case "Tesla":
		if model == "Model 3" {
			return 320000
		}
		return 450000
	case "Porsche":
		return 600000
	case "Toyota", "Honda":
		switch model {
		case "Camry", "Accord":
			return 130000
		case "RAV4", "CR-V":
			return 160000
		case "Alphard", "Odyssey":
			return 300000
		default:
			return 110000
		}
	case "Infiniti", "Acura", "Volvo", "Genesis":
		return 200000
	default:
		return 120000
	}
}
