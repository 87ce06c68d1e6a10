package batch

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
	"muniwatch/pkg/core/scenario"
	"muniwatch/pkg/core/store"
)

// seededRunner returns a runner over an in-memory store holding four
// healthy Modesto years plus one empty Ghosttown year that every engine
// rejects.
func seededRunner(t *testing.T) (*Runner, *store.InMemory) {
	t.Helper()

	mem := store.NewInMemory()
	for i := 0; i < 4; i++ {
		mem.Seed(&ledger.FiscalYear{
			City: "Modesto",
			Year: 2021 + i,
			Revenues: []ledger.Revenue{
				{Category: "Property Tax", FundType: "General", ActualAmount: decimal.NewFromInt(int64(94+2*i) * 1_000_000)},
			},
			Expenditures: []ledger.Expenditure{
				{Category: "Public Safety", FundType: "General", ActualAmount: decimal.NewFromInt(90_000_000)},
			},
		})
	}
	mem.Seed(&ledger.FiscalYear{City: "Ghosttown", Year: 2024})

	runner, err := NewRunner(config.Default(), mem, mem, mem, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return runner, mem
}

func TestNewRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Weights.Debt = 0.5

	mem := store.NewInMemory()
	_, err := NewRunner(cfg, mem, mem, mem, log.New(io.Discard, "", 0))
	assert.Error(t, err)
}

func TestScoreAllContinuesPastFailures(t *testing.T) {
	runner, mem := seededRunner(t)

	summary, err := runner.ScoreAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Processed)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "Ghosttown", summary.Failed[0].City)

	// Each processed year persisted a score.
	for year := 2021; year <= 2024; year++ {
		_, ok := mem.Score("Modesto", year, "v1.0")
		assert.True(t, ok, "FY%d", year)
	}
	_, ok := mem.Score("Ghosttown", 2024, "v1.0")
	assert.False(t, ok)
}

func TestScoreOne(t *testing.T) {
	runner, mem := seededRunner(t)

	require.NoError(t, runner.ScoreOne(context.Background(), "Modesto", 2024))

	score, ok := mem.Score("Modesto", 2024, "v1.0")
	require.True(t, ok)
	assert.Equal(t, 2024, score.Year)
	assert.InDelta(t, 100.0*4.0/9.0, score.DataCompletenessPercent, 1e-9, "no fund balance or pension data seeded")
}

func TestScoreOneMissingYear(t *testing.T) {
	runner, _ := seededRunner(t)

	err := runner.ScoreOne(context.Background(), "Modesto", 1999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestForecastAllContinuesPastFailures(t *testing.T) {
	runner, mem := seededRunner(t)

	summary, err := runner.ForecastAll(context.Background(), []scenario.Code{scenario.Base}, 10)
	require.NoError(t, err)

	// 2021 has no prior history and Ghosttown has no revenue at all; the
	// three later Modesto years project fine.
	assert.Equal(t, 3, summary.Processed)
	assert.Len(t, summary.Failed, 2)

	for year := 2022; year <= 2024; year++ {
		run, ok := mem.Run("Modesto", year, scenario.Base)
		require.True(t, ok, "FY%d", year)
		assert.Len(t, run.Projections, 10)
	}
	_, ok := mem.Run("Modesto", 2021, scenario.Base)
	assert.False(t, ok)
}

func TestForecastOne(t *testing.T) {
	runner, mem := seededRunner(t)

	run, err := runner.ForecastOne(context.Background(), "Modesto", 2024, scenario.Pessimistic, 5)
	require.NoError(t, err)
	require.Len(t, run.Projections, 5)
	assert.Equal(t, scenario.Pessimistic, run.Scenario)

	stored, ok := mem.Run("Modesto", 2024, scenario.Pessimistic)
	require.True(t, ok)
	assert.Equal(t, run.Cliff.Severity, stored.Cliff.Severity)
}
