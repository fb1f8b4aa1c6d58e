package cli_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwheel/fairwheel/internal/application/analysis"
	"github.com/fairwheel/fairwheel/internal/domain/market"
	"github.com/fairwheel/fairwheel/internal/interfaces/cli"
)

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := cli.NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	_, err := execute(t, "frobnicate")
	require.Error(t, err)
}

func TestVersionCommand_Text(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fairwheel dev")
	assert.Contains(t, out, "go version")
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["goVersion"])
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	out, err := execute(t, "analyze",
		"--make", "Toyota", "--model", "Camry",
		"--year", "2019", "--price", "220000",
		"--seed", "7", "-o", "json")
	require.NoError(t, err)

	var result analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.NotEmpty(t, result.ID)
	assert.Contains(t, []market.Rating{
		market.RatingExcellent, market.RatingGood, market.RatingFair,
		market.RatingHigh, market.RatingVeryHigh,
	}, result.PriceRating)
	assert.NotEmpty(t, result.Recommendations)
}

func TestAnalyzeCommand_Text(t *testing.T) {
	out, err := execute(t, "analyze",
		"--make", "Toyota", "--model", "Camry",
		"--year", "2019", "--price", "220000",
		"--seed", "7")
	require.NoError(t, err)

	assert.Contains(t, out, "Toyota Camry 2019")
	assert.Contains(t, out, "Rating:")
	assert.Contains(t, out, "Market average:")
}

func TestAnalyzeCommand_MissingRequiredFlags(t *testing.T) {
	_, err := execute(t, "analyze", "--model", "Camry", "--year", "2019", "--price", "220000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "make")
}

func TestAnalyzeCommand_InvalidYear(t *testing.T) {
	_, err := execute(t, "analyze",
		"--make", "Toyota", "--model", "Camry",
		"--year", "1800", "--price", "220000")
	require.Error(t, err)
}

func TestCorpusCommand_JSON(t *testing.T) {
	out, err := execute(t, "corpus", "--size", "150", "--seed", "42", "-o", "json")
	require.NoError(t, err)

	var summary struct {
		Count      int               `json:"count"`
		Statistics market.Statistics `json:"statistics"`
		Seed       int64             `json:"seed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))

	assert.Equal(t, 150, summary.Count)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Greater(t, summary.Statistics.Min, 0.0)
	assert.GreaterOrEqual(t, summary.Statistics.Max, summary.Statistics.Min)
}

func TestCorpusCommand_TextTable(t *testing.T) {
	out, err := execute(t, "corpus", "--size", "120", "--seed", "42", "--sample", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Generated 120 listings")
	assert.Contains(t, out, "MAKE")
	assert.Contains(t, out, "PRICE")
}

func TestFormatTable_Alignment(t *testing.T) {
	out := cli.FormatTable(
		[]string{"NAME", "VALUE"},
		[][]string{{"alpha", "1"}, {"b", "22222"}},
	)
	assert.Contains(t, out, "NAME   VALUE")
	assert.Contains(t, out, "-----  -----")
	assert.Contains(t, out, "alpha  1")
}
