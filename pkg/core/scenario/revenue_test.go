package scenario

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// revenueYear builds a fiscal year with a single revenue row.
func revenueYear(year int, revenue float64) *ledger.FiscalYear {
	return &ledger.FiscalYear{
		City: "Fresno",
		Year: year,
		Revenues: []ledger.Revenue{
			{Category: "Sales Tax", FundType: "General", ActualAmount: decimal.NewFromFloat(revenue)},
		},
	}
}

func baseMultipliers(t *testing.T, code string) config.ScenarioMultipliers {
	t.Helper()
	m, err := config.Default().Scenario(code)
	require.NoError(t, err)
	return m
}

func TestHistoricalCAGRTwoYears(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	base := revenueYear(2024, 50_000_000)
	history := []*ledger.FiscalYear{revenueYear(2023, 50_000_000/1.02)}

	rate, err := p.HistoricalCAGR(base, history)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, rate, 1e-9)
}

func TestHistoricalCAGRUsesIntervalCount(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	// Five years doubling 100 -> 146.41 is 10 percent over four intervals.
	base := revenueYear(2024, 146.41)
	history := []*ledger.FiscalYear{
		revenueYear(2020, 100),
		revenueYear(2021, 110),
		revenueYear(2022, 121),
		revenueYear(2023, 133.1),
	}

	rate, err := p.HistoricalCAGR(base, history)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-9)
}

func TestHistoricalCAGRWindowCap(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	// Years outside the five-year window must not influence the rate.
	base := revenueYear(2024, 146.41)
	history := []*ledger.FiscalYear{
		revenueYear(2018, 40),
		revenueYear(2019, 55),
		revenueYear(2020, 100),
		revenueYear(2021, 110),
		revenueYear(2022, 121),
		revenueYear(2023, 133.1),
	}

	rate, err := p.HistoricalCAGR(base, history)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, rate, 1e-9)
}

func TestHistoricalCAGRInsufficientHistory(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	_, err := p.HistoricalCAGR(revenueYear(2024, 100), nil)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	// Non-positive endpoints cannot seed a growth rate.
	_, err = p.HistoricalCAGR(revenueYear(2024, 100), []*ledger.FiscalYear{revenueYear(2023, 0)})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestProjectCompounds(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	base := revenueYear(2024, 100)
	history := []*ledger.FiscalYear{revenueYear(2023, 100/1.02)}

	points, err := p.Project(base, history, 3, baseMultipliers(t, "base"))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, 2025, points[0].Year)
	assert.InDelta(t, 102, points[0].ProjectedRevenue, 1e-6)
	assert.InDelta(t, 104.04, points[1].ProjectedRevenue, 1e-6)
	assert.InDelta(t, 106.1208, points[2].ProjectedRevenue, 1e-6)
	for _, pt := range points {
		assert.InDelta(t, 0.02, pt.GrowthRateUsed, 1e-9)
	}
}

func TestProjectScenarioMultipliers(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	base := revenueYear(2024, 100)
	history := []*ledger.FiscalYear{revenueYear(2023, 100/1.02)}

	optimistic, err := p.Project(base, history, 1, baseMultipliers(t, "optimistic"))
	require.NoError(t, err)
	assert.InDelta(t, 0.025, optimistic[0].GrowthRateUsed, 1e-9)

	pessimistic, err := p.Project(base, history, 1, baseMultipliers(t, "pessimistic"))
	require.NoError(t, err)
	assert.InDelta(t, 0.015, pessimistic[0].GrowthRateUsed, 1e-9)
}

func TestProjectNegativeGrowthCompounds(t *testing.T) {
	p := NewRevenueProjector(config.Default())

	// Shrinking history keeps shrinking; no floor is applied.
	base := revenueYear(2024, 90)
	history := []*ledger.FiscalYear{revenueYear(2023, 100)}

	points, err := p.Project(base, history, 2, baseMultipliers(t, "base"))
	require.NoError(t, err)
	assert.InDelta(t, 81, points[0].ProjectedRevenue, 1e-6)
	assert.InDelta(t, 72.9, points[1].ProjectedRevenue, 1e-6)
}
