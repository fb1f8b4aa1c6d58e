package market

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
)

func testQuery() vehicle.Query {
	q := vehicle.Query{
		Make:  "Toyota",
		Model: "Camry",
		Year:  2019,
		Price: 150000,
	}
	q.Normalize()
	return q
}

func record(make, model string, year int, price float64) vehicle.Record {
	return vehicle.Record{
		Make:         make,
		Model:        model,
		Year:         year,
		Mileage:      60000,
		Owners:       1,
		Price:        price,
		FuelType:     "petrol",
		Transmission: "automatic",
		Seats:        5,
	}
}

func TestStrictPassScoring(t *testing.T) {
	q := testQuery()

	// Exact twin: make 40 + model 30 + year 20 + fuel 15 + transmission 10 + seats 5.
	twin := record("Toyota", "Camry", 2019, 150000)
	assert.Equal(t, 120.0, strictScore(q, twin))

	// Same make, different model, 3 years apart: 40 + 15 + 15 + 10 + 5.
	sibling := record("Toyota", "Corolla", 2016, 100000)
	assert.Equal(t, 85.0, strictScore(q, sibling))

	// Unrelated make, distant year: fuel + transmission + seats only.
	other := record("Honda", "Civic", 2010, 90000)
	assert.Equal(t, 30.0, strictScore(q, other))
}

func TestStrictPassCaseInsensitive(t *testing.T) {
	q := testQuery()
	r := record("TOYOTA", "camry", 2019, 150000)
	assert.Equal(t, 120.0, strictScore(q, r))
}

func TestRelaxedPassScoring(t *testing.T) {
	q := testQuery()

	// Make 50 + year(≤2) 25 + fuel 15 + transmission 10 + priceRatio 10.
	r := record("Toyota", "Anything", 2018, 140000)
	assert.Equal(t, 110.0, relaxedScore(q, r))

	// Price ratio below 0.5 loses the ratio bonus.
	cheap := record("Toyota", "Anything", 2018, 50000)
	assert.Equal(t, 100.0, relaxedScore(q, cheap))
}

func TestLenientPassScoring(t *testing.T) {
	q := testQuery() // Toyota, non-luxury

	// Same tier 30 + year diff 0 → 20 + 20×1.0 ratio.
	same := record("Honda", "Civic", 2019, 150000)
	assert.InDelta(t, 70.0, lenientScore(q, same), 1e-9)

	// Cross tier: no tier bonus.
	lux := record("BMW", "3 Series", 2019, 150000)
	assert.InDelta(t, 40.0, lenientScore(q, lux), 1e-9)

	// Year gap of 11 drops the year component entirely.
	old := record("Honda", "Civic", 2008, 150000)
	assert.InDelta(t, 50.0, lenientScore(q, old), 1e-9)
}

func TestMatchStrictPassSufficient(t *testing.T) {
	q := testQuery()
	corpus := make([]vehicle.Record, 0, 12)
	for i := 0; i < 12; i++ {
		corpus = append(corpus, record("Toyota", "Camry", 2019, 140000+float64(i)*1000))
	}

	got := NewMatcher().Match(q, corpus)
	require.Len(t, got, 12)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Score, 60.0)
	}
}

func TestMatchFallsThroughToRelaxed(t *testing.T) {
	q := testQuery()
	// Strict pass finds a handful of twins but fewer than 10, so the
	// relaxed pass replaces them with the wider same-make set.
	corpus := []vehicle.Record{
		record("Toyota", "Camry", 2019, 150000),
		record("Toyota", "Vios", 2018, 120000),
		record("Toyota", "Wish", 2017, 110000),
		record("Toyota", "Corolla", 2021, 130000),
		record("Toyota", "Prius", 2019, 140000),
		record("Honda", "Civic", 2005, 30000),
	}

	got := NewMatcher().Match(q, corpus)
	require.Len(t, got, 5)
	for _, c := range got {
		assert.Equal(t, "Toyota", c.Make)
		assert.GreaterOrEqual(t, c.Score, 40.0)
	}
}

func TestMatchFallsThroughToLenient(t *testing.T) {
	q := testQuery()
	// Nothing shares the make, so only the lenient pass admits records.
	corpus := []vehicle.Record{
		record("Honda", "Civic", 2018, 140000),
		record("Mazda", "Mazda3", 2020, 150000),
		record("BMW", "3 Series", 2019, 160000),
	}

	got := NewMatcher().Match(q, corpus)
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.GreaterOrEqual(t, c.Score, 20.0)
	}
}

func TestMatchEmptyCorpus(t *testing.T) {
	got := NewMatcher().Match(testQuery(), nil)
	assert.Empty(t, got)
}

func TestMatchSortsAndCaps(t *testing.T) {
	q := testQuery()
	corpus := make([]vehicle.Record, 0, 80)
	for i := 0; i < 80; i++ {
		corpus = append(corpus, record("Toyota", "Camry", 2015+i%10, 100000+float64(i)*2000))
	}

	got := NewMatcher().Match(q, corpus)
	require.Len(t, got, MaxComparables)
	for i := 1; i < len(got); i++ {
		if got[i-1].Score == got[i].Score {
			assert.LessOrEqual(t, got[i-1].Price, got[i].Price)
		} else {
			assert.Greater(t, got[i-1].Score, got[i].Score)
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	q := testQuery()
	corpus := make([]vehicle.Record, 0, 30)
	for i := 0; i < 30; i++ {
		corpus = append(corpus, record("Toyota", fmt.Sprintf("Model%d", i%3), 2017+i%5, 120000))
	}

	first := NewMatcher().Match(q, corpus)
	second := NewMatcher().Match(q, corpus)
	assert.Equal(t, first, second)
}

func TestIsLuxuryBrand(t *testing.T) {
	for _, make := range []string{"BMW", "Mercedes-Benz", "Audi", "Lexus", "Porsche", "Tesla", "Jaguar", "Land Rover"} {
		assert.True(t, IsLuxuryBrand(make), make)
	}
	assert.True(t, IsLuxuryBrand("bmw"))
	assert.False(t, IsLuxuryBrand("Toyota"))
	assert.False(t, IsLuxuryBrand(""))
}

func TestPriceRatio(t *testing.T) {
	assert.Equal(t, 0.5, priceRatio(50000, 100000))
	assert.Equal(t, 0.5, priceRatio(100000, 50000))
	assert.Equal(t, 1.0, priceRatio(80000, 80000))
	assert.Equal(t, 0.0, priceRatio(0, 100000))
	assert.Equal(t, 0.0, priceRatio(100000, -1))
}
