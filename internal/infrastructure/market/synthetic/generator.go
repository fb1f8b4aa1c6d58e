package synthetic

import (
	"math/rand"
	"time"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/monitoring/logging"
)

// Generation constants.
const (
	minModelYear = 2010

	minPrice   = 20000
	minMileage = 1000

	// Biased (query-seeded) generation.
	minSimilarMileage = 5000
	minCorpusSize     = 100
	maxCorpusSize     = 1000
	generalPoolSize   = 500
)

// Generator produces synthetic market listings. It is not safe for
// concurrent use; corpus refresh owns a Generator exclusively.
type Generator struct {
	rng           *rand.Rand
	referenceYear int
	now           func() time.Time
	log           logging.Logger
}

// NewGenerator constructs a Generator. rng must not be shared with other
// consumers; referenceYear anchors age and model-year clamping.
func NewGenerator(rng *rand.Rand, referenceYear int, log logging.Logger) *Generator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Generator{
		rng:           rng,
		referenceYear: referenceYear,
		now:           time.Now,
		log:           log.Named("synthetic"),
	}
}

// Generate produces n unbiased listings drawn from the full make/model
// catalogue with tiered pricing bands and age-driven depreciation.
func (g *Generator) Generate(n int) []vehicle.Record {
	out := make([]vehicle.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.generalRecord())
	}
	return out
}

// GenerateBiased produces a corpus weighted toward the reference vehicle:
// 15–20 near-clones, 10–15 same-make siblings, then a general market
// pool. The result holds at least minCorpusSize records and at most
// maxCorpusSize.
func (g *Generator) GenerateBiased(ref vehicle.Record) []vehicle.Record {
	out := make([]vehicle.Record, 0, maxCorpusSize)

	nSimilar := 15 + g.rng.Intn(6)
	for i := 0; i < nSimilar; i++ {
		out = append(out, g.similarRecord(ref))
	}
	nSibling := 10 + g.rng.Intn(6)
	for i := 0; i < nSibling; i++ {
		out = append(out, g.siblingRecord(ref))
	}

	out = append(out, g.Generate(generalPoolSize)...)
	for len(out) < minCorpusSize {
		out = append(out, g.Generate(50)...)
	}
	if len(out) > maxCorpusSize {
		out = out[:maxCorpusSize]
	}

	g.log.Debug("biased corpus generated",
		logging.String("make", ref.Make),
		logging.String("model", ref.Model),
		logging.Int("similar", nSimilar),
		logging.Int("sibling", nSibling),
		logging.Int("total", len(out)),
	)
	return out
}

func (g *Generator) generalRecord() vehicle.Record {
	make := makes[g.rng.Intn(len(makes))]

	var model string
	if models, ok := modelsByMake[make]; ok {
		model = models[g.rng.Intn(len(models))]
	} else {
		model = genericBodies[g.rng.Intn(len(genericBodies))]
	}

	year := g.randInt(minModelYear, g.referenceYear)
	age := g.referenceYear - year

	band := basePriceBand(make, model)
	base := float64(g.randInt(band.lo, band.hi))

	// 8–13% per year, capped at 85%.
	depreciationRate := 0.08 + 0.05*g.rng.Float64()
	depreciation := depreciationRate * float64(age)
	if depreciation > 0.85 {
		depreciation = 0.85
	}
	price := base * (1 - depreciation)
	if price < minPrice {
		price = minPrice
	}

	mileage := g.randInt(10000, 25000)*age + g.randInt(-10000, 20000)
	if mileage < minMileage {
		mileage = minMileage
	}

	return vehicle.Record{
		Make:         make,
		Model:        model,
		Year:         year,
		Mileage:      mileage,
		Color:        colors[g.rng.Intn(len(colors))],
		Owners:       g.weighted([]int{1, 2, 3, 4}, []int{60, 25, 12, 3}),
		Price:        float64(int(price)),
		FuelType:     g.generalFuelType(make, year),
		Transmission: g.transmission(85),
		Seats:        g.weighted([]int{5, 7, 2, 4}, []int{70, 20, 5, 5}),
		EngineCC:     g.randInt(1000, 4000),
		DateListed:   g.now(),
		Synthetic:    true,
	}
}

// similarRecord clones the reference vehicle with small perturbations and
// realistic market pricing.
func (g *Generator) similarRecord(ref vehicle.Record) vehicle.Record {
	year := clampYear(ref.Year+g.randInt(-2, 2), g.referenceYear)
	age := g.referenceYear - year

	mileage := age*g.randInt(12000, 18000) + g.randInt(-20000, 20000)
	if mileage < minSimilarMileage {
		mileage = minSimilarMileage
	}

	price := realisticBasePrice(ref.Make, ref.Model, age) * g.uniform(0.8, 1.2)
	switch {
	case mileage > 150000:
		price *= 0.85
	case mileage > 100000:
		price *= 0.92
	}

	owners := g.weighted([]int{1, 2, 3}, []int{50, 35, 15})
	if owners > 1 {
		price *= 0.95
	}

	return vehicle.Record{
		Make:         ref.Make,
		Model:        ref.Model,
		Year:         year,
		Mileage:      mileage,
		Color:        commonColors[g.rng.Intn(len(commonColors))],
		Owners:       owners,
		Price:        float64(int(price)),
		FuelType:     g.similarFuelType(ref.Make),
		Transmission: g.transmission(90),
		Seats:        5,
		EngineCC:     g.randInt(1500, 3000),
		DateListed:   g.now(),
		Synthetic:    true,
	}
}

// siblingRecord produces a same-make listing with a different model and a
// wider year spread.
func (g *Generator) siblingRecord(ref vehicle.Record) vehicle.Record {
	model := g.pickSiblingModel(ref.Make, ref.Model)

	year := clampYear(ref.Year+g.randInt(-4, 3), g.referenceYear)
	age := g.referenceYear - year

	mileage := age*g.randInt(10000, 20000) + g.randInt(0, 30000)
	if mileage < minSimilarMileage {
		mileage = minSimilarMileage
	}

	price := realisticBasePrice(ref.Make, model, age) * g.uniform(0.85, 1.15)
	switch {
	case mileage > 150000:
		price *= 0.85
	case mileage > 100000:
		price *= 0.92
	}

	fuels := []string{"petrol", "diesel", "hybrid"}

	return vehicle.Record{
		Make:         ref.Make,
		Model:        model,
		Year:         year,
		Mileage:      mileage,
		Color:        commonColors[g.rng.Intn(6)],
		Owners:       g.weighted([]int{1, 2, 3}, []int{40, 40, 20}),
		Price:        float64(int(price)),
		FuelType:     fuels[g.rng.Intn(len(fuels))],
		Transmission: g.transmission(85),
		Seats:        5,
		EngineCC:     g.randInt(1500, 3000),
		DateListed:   g.now(),
		Synthetic:    true,
	}
}

func (g *Generator) pickSiblingModel(makeName, exclude string) string {
	pool, ok := siblingModelsByMake[makeName]
	if !ok {
		pool = []string{"Sedan", "SUV", "Hatchback"}
	}
	candidates := make([]string, 0, len(pool))
	for _, m := range pool {
		if m != exclude {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return exclude
	}
	return candidates[g.rng.Intn(len(candidates))]
}

func (g *Generator) generalFuelType(make string, year int) string {
	switch {
	case make == "Tesla":
		return "electric"
	case year >= 2020 && g.rng.Float64() < 0.3:
		if g.rng.Intn(2) == 0 {
			return "hybrid"
		}
		return "electric"
	case (make == "Toyota" || make == "Honda") && g.rng.Float64() < 0.4:
		return "hybrid"
	default:
		if g.rng.Intn(2) == 0 {
			return "petrol"
		}
		return "diesel"
	}
}

func (g *Generator) similarFuelType(make string) string {
	switch {
	case make == "Tesla":
		return "electric"
	case g.rng.Float64() < 0.2:
		return "hybrid"
	default:
		if g.rng.Intn(2) == 0 {
			return "petrol"
		}
		return "diesel"
	}
}

// transmission returns "automatic" with the given percentage weight.
func (g *Generator) transmission(automaticWeight int) string {
	if g.rng.Intn(100) < automaticWeight {
		return "automatic"
	}
	return "manual"
}

// randInt returns a uniform integer in [lo, hi].
func (g *Generator) randInt(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// uniform returns a uniform float64 in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// weighted picks a value from values with the matching integer weights.
func (g *Generator) weighted(values, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := g.rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return values[i]
		}
		n -= w
	}
	return values[len(values)-1]
}

func clampYear(year, referenceYear int) int {
	if year < minModelYear {
		return minModelYear
	}
	if year > referenceYear {
		return referenceYear
	}
	return year
}
