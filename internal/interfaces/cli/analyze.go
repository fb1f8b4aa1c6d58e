package cli

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairwheel/fairwheel/internal/application/analysis"
	"github.com/fairwheel/fairwheel/internal/domain/vehicle"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/corpus"
	"github.com/fairwheel/fairwheel/internal/infrastructure/market/synthetic"
)

// analyzeOptions holds the flags for the analyze command.
type analyzeOptions struct {
	Make         string
	Model        string
	Year         int
	Price        float64
	Mileage      int
	Color        string
	Owners       int
	FuelType     string
	Transmission string
	Seats        int
	EngineCC     int
	Seed         int64
}

// NewAnalyzeCmd creates the analyze command. It runs one price analysis
// against a freshly generated corpus and prints the result.
func NewAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze whether a used-vehicle asking price is fair",
		Example: `  fairwheel analyze --make Toyota --model Camry --year 2019 --price 220000
  fairwheel analyze --make BMW --model X3 --year 2021 --price 380000 --mileage 30000 -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Make, "make", "", "vehicle make (required)")
	f.StringVar(&opts.Model, "model", "", "vehicle model (required)")
	f.IntVar(&opts.Year, "year", 0, "model year (required)")
	f.Float64Var(&opts.Price, "price", 0, "asking price (required)")
	f.IntVar(&opts.Mileage, "mileage", 0, "odometer reading in km")
	f.StringVar(&opts.Color, "color", "", "exterior color")
	f.IntVar(&opts.Owners, "owners", 0, "number of previous owners")
	f.StringVar(&opts.FuelType, "fuel-type", "", "fuel type (petrol, diesel, hybrid, electric)")
	f.StringVar(&opts.Transmission, "transmission", "", "transmission (automatic, manual)")
	f.IntVar(&opts.Seats, "seats", 0, "number of seats")
	f.IntVar(&opts.EngineCC, "engine-cc", 0, "engine displacement in cc")
	f.Int64Var(&opts.Seed, "seed", 0, "corpus generation seed (0 = random)")

	_ = cmd.MarkFlagRequired("make")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	svc := buildLocalService(cliCtx, opts.Seed)

	q := vehicle.Query{
		Make:         opts.Make,
		Model:        opts.Model,
		Year:         opts.Year,
		Price:        opts.Price,
		Mileage:      opts.Mileage,
		Color:        opts.Color,
		Owners:       opts.Owners,
		FuelType:     opts.FuelType,
		Transmission: opts.Transmission,
		Seats:        opts.Seats,
		EngineCC:     opts.EngineCC,
	}

	result, err := svc.AnalyzePrice(cmd.Context(), q)
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat == "json" {
		return printJSON(cmd, result)
	}
	return printText(cmd, formatResult(result))
}

// buildLocalService wires a self-contained analysis service: a seeded
// synthetic generator behind a corpus cache, no external providers.
func buildLocalService(cliCtx *CLIContext, seed int64) analysis.Service {
	referenceYear := cliCtx.Config.Market.ReferenceYear
	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	gen := synthetic.NewGenerator(rng, referenceYear, cliCtx.Logger)
	cache := corpus.NewCache(gen, cliCtx.Config.Market.CorpusTTL, cliCtx.Logger)

	return analysis.NewService(cache, referenceYear, analysis.NopMetrics(), cliCtx.Logger)
}

// formatResult renders a human-readable analysis summary.
func formatResult(r *analysis.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Vehicle:        %s %s %d\n", r.UserCar.Make, r.UserCar.Model, r.UserCar.Year)
	fmt.Fprintf(&sb, "Asking price:   %.0f\n", r.UserCar.Price)
	fmt.Fprintf(&sb, "Rating:         %s\n", r.PriceRating)
	fmt.Fprintf(&sb, "Market average: %.0f (median %.0f, range %.0f – %.0f, %d comparables)\n",
		r.MarketPrice.Average, r.MarketPrice.Median, r.MarketPrice.Min, r.MarketPrice.Max, r.ComparableCount)
	fmt.Fprintf(&sb, "Difference:     %+.1f%% vs market average (%+.1f%% adjusted)\n",
		r.PercentageDifference, r.AdjustedDifference)
	if r.Fallback {
		sb.WriteString("Mode:           fallback estimate (no comparable market data)\n")
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "  - %s\n", rec)
		}
	}

	return sb.String()
}
