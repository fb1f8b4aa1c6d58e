// Package vehicle defines the core listing and query types shared by the
// matching, statistics, and analysis layers.
package vehicle

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fairwheel/fairwheel/pkg/errors"
)

// MinListingYear is the oldest model year accepted for a market listing.
const MinListingYear = 1990

// Record is a single market listing. Listings arrive from external
// providers or the synthetic generator and are treated as immutable once
// they enter the corpus.
type Record struct {
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Mileage      int       `json:"mileage"`
	Color        string    `json:"color"`
	Owners       int       `json:"owners"`
	Price        float64   `json:"price"`
	FuelType     string    `json:"fuelType"`
	Transmission string    `json:"transmission"`
	Seats        int       `json:"seats"`
	EngineCC     int       `json:"engineCC"`
	DateListed   time.Time `json:"dateListed"`
	Synthetic    bool      `json:"isSynthetic"`
}

// Valid reports whether a record can participate in matching and
// statistics. Invalid records are dropped at the adapter boundary.
func (r Record) Valid(referenceYear int) bool {
	if strings.TrimSpace(r.Make) == "" || strings.TrimSpace(r.Model) == "" {
		return false
	}
	if r.Year < MinListingYear || r.Year > referenceYear {
		return false
	}
	if r.Mileage < 0 || r.Owners < 1 {
		return false
	}
	if r.Price <= 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return false
	}
	return true
}

// Age returns the vehicle's age in years relative to referenceYear,
// floored at zero.
func (r Record) Age(referenceYear int) int {
	age := referenceYear - r.Year
	if age < 0 {
		return 0
	}
	return age
}

// Comparable pairs a corpus Record with the similarity score assigned by
// the matcher. The underlying Record is never mutated.
type Comparable struct {
	Record
	Score float64 `json:"similarityScore"`
}

// Query is the caller-supplied vehicle under analysis. Make, Model, Year
// and Price are required; everything else receives a default via
// Normalize.
type Query struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Price        float64 `json:"price"`
	Mileage      int     `json:"mileage"`
	Color        string  `json:"color"`
	Owners       int     `json:"owners"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	Seats        int     `json:"seats"`
	EngineCC     int     `json:"engineCC"`
}

// Defaults applied by Normalize for missing optional fields.
const (
	DefaultMileage      = 50000
	DefaultColor        = "black"
	DefaultOwners       = 1
	DefaultFuelType     = "petrol"
	DefaultTransmission = "automatic"
	DefaultSeats        = 5
	DefaultEngineCC     = 2000
)

// Normalize fills unset optional fields with their defaults and trims
// surrounding whitespace from string fields. It returns the query for
// chaining.
func (q *Query) Normalize() *Query {
	q.Make = strings.TrimSpace(q.Make)
	q.Model = strings.TrimSpace(q.Model)
	q.Color = strings.TrimSpace(q.Color)
	q.FuelType = strings.ToLower(strings.TrimSpace(q.FuelType))
	q.Transmission = strings.ToLower(strings.TrimSpace(q.Transmission))

	if q.Mileage <= 0 {
		q.Mileage = DefaultMileage
	}
	if q.Color == "" {
		q.Color = DefaultColor
	}
	if q.Owners <= 0 {
		q.Owners = DefaultOwners
	}
	if q.FuelType == "" {
		q.FuelType = DefaultFuelType
	}
	if q.Transmission == "" {
		q.Transmission = DefaultTransmission
	}
	if q.Seats <= 0 {
		q.Seats = DefaultSeats
	}
	if q.EngineCC <= 0 {
		q.EngineCC = DefaultEngineCC
	}
	return q
}

// Validate checks the required fields against referenceYear. It returns a
// vehicle validation AppError naming the first offending field, or nil.
func (q *Query) Validate(referenceYear int) error {
	if q.Make == "" {
		return errors.New(errors.ErrCodeVehicleValidation, "make is required")
	}
	if q.Model == "" {
		return errors.New(errors.ErrCodeVehicleValidation, "model is required")
	}
	if q.Year < MinListingYear || q.Year > referenceYear {
		return errors.Newf(errors.ErrCodeVehicleYearInvalid,
			"year must be between %d and %d, got %d", MinListingYear, referenceYear, q.Year)
	}
	if q.Price <= 0 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return errors.Newf(errors.ErrCodeVehiclePriceInvalid, "price must be a positive number, got %v", q.Price)
	}
	if q.Mileage < 0 {
		return errors.New(errors.ErrCodeVehicleValidation, "mileage must not be negative")
	}
	return nil
}

// Record converts the query into a Record so the query vehicle can seed
// biased corpus generation.
func (q *Query) Record(now time.Time) Record {
	return Record{
		Make:         q.Make,
		Model:        q.Model,
		Year:         q.Year,
		Mileage:      q.Mileage,
		Color:        q.Color,
		Owners:       q.Owners,
		Price:        q.Price,
		FuelType:     q.FuelType,
		Transmission: q.Transmission,
		Seats:        q.Seats,
		EngineCC:     q.EngineCC,
		DateListed:   now,
	}
}

// Label returns a short human-readable identifier, e.g. "2019 Toyota Camry".
func (q *Query) Label() string {
	return fmt.Sprintf("%d %s %s", q.Year, q.Make, q.Model)
}
