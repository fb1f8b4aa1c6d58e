package market

import (
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
)

// ─────────────────────────────────────────────────────────────────────────────
// Recommendations — human-readable guidance
// ─────────────────────────────────────────────────────────────────────────────

var ratingHeadlines = map[Rating]string{
	RatingExcellent: "This is an excellent price! Consider buying soon as it's well below market value.",
	RatingGood:      "This is a good deal. The price is reasonable compared to similar cars.",
	RatingFair:      "The price is fair but you might be able to negotiate a bit lower.",
	RatingHigh:      "The price is above market average. Consider negotiating or looking for alternatives.",
	RatingVeryHigh:  "The price is significantly above market value. Strong negotiation or alternative options recommended.",
}

// Recommendations produces the guidance list for an analysed vehicle. The
// output is deterministic: rating headline first, then mileage, owner,
// age and budget notes in a fixed order.
func Recommendations(q vehicle.Query, stats Statistics, rating Rating, referenceYear int) []string {
	recs := []string{ratingHeadlines[rating]}

	age := referenceYear - q.Year
	annual := float64(q.Mileage)
	if age > 0 {
		annual = float64(q.Mileage) / float64(maxInt(age, 1))
	}

	switch {
	case annual < 10000:
		recs = append(recs, "Excellent low mileage! This significantly increases the car's value and reliability.")
	case annual < 15000:
		recs = append(recs, "Good low mileage adds value to this vehicle.")
	case annual > 30000:
		recs = append(recs, "High annual mileage may indicate heavy usage. Factor this into your decision.")
	}

	switch {
	case q.Mileage > 200000:
		recs = append(recs, "Very high mileage (200k+ km) significantly affects price and may require more maintenance.")
	case q.Mileage > 150000:
		recs = append(recs, "High mileage affects the price. Consider potential maintenance costs.")
	}

	switch {
	case q.Owners <= 1:
		recs = append(recs, "Single owner vehicle is a positive factor for reliability and resale value.")
	case q.Owners == 2:
		recs = append(recs, "Two previous owners is typical and shouldn't significantly impact value.")
	case q.Owners == 3:
		recs = append(recs, "Three previous owners may slightly affect resale value and reliability history.")
	default:
		recs = append(recs, "Multiple previous owners (4+) may indicate issues or affect resale value significantly.")
	}

	if age > 10 {
		recs = append(recs, "The car's age is a significant factor in its current market value.")
	}

	if q.Price > stats.Average*1.2 {
		recs = append(recs, "Consider expanding your search to include more options within your budget.")
	}

	return recs
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
