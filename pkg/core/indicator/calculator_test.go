package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

func newTestCalculator() *Calculator {
	return NewCalculator(config.Default())
}

// snapshot builds a minimal fiscal year with one revenue row, one
// expenditure row, and an optional fund balance.
func snapshot(year int, revenue, expenditure float64, fundBalance *float64) *ledger.FiscalYear {
	fy := &ledger.FiscalYear{
		City: "Vallejo",
		Year: year,
		Revenues: []ledger.Revenue{
			{Category: "Sales Tax", FundType: "General", ActualAmount: decimal.NewFromFloat(revenue)},
		},
		Expenditures: []ledger.Expenditure{
			{Category: "Public Safety", FundType: "General", ActualAmount: decimal.NewFromFloat(expenditure)},
		},
	}
	if fundBalance != nil {
		fy.FundBalances = []ledger.FundBalance{
			{FundType: "General", TotalFundBalance: decimal.NewFromFloat(*fundBalance)},
		}
	}
	return fy
}

func fptr(v float64) *float64 { return &v }

func TestFundBalanceRatioBandBoundaries(t *testing.T) {
	calc := newTestCalculator()

	cases := []struct {
		name    string
		balance float64
		want    Band
		score   int
	}{
		{"exactly 20 percent is healthy", 20.0, BandHealthy, ScoreHealthy},
		{"just under 20 percent drops a band", 19.99, BandAdequate, ScoreAdequate},
		{"exactly 15 percent is adequate", 15.0, BandAdequate, ScoreAdequate},
		{"12 percent is warning", 12.0, BandWarning, ScoreWarning},
		{"under 10 percent is critical", 9.0, BandCritical, ScoreCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fy := snapshot(2024, 100, 100, fptr(tc.balance))
			ind := calc.FundBalanceRatio(fy)
			require.True(t, ind.Available)
			assert.Equal(t, tc.want, ind.Band)
			assert.Equal(t, tc.score, *ind.Score)
			assert.InDelta(t, tc.balance/100, *ind.Value, 1e-9)
		})
	}
}

func TestUnavailableWhenDenominatorZero(t *testing.T) {
	calc := newTestCalculator()

	fy := snapshot(2024, 100, 0, fptr(20))
	fy.Expenditures = nil

	for _, ind := range []Indicator{calc.FundBalanceRatio(fy), calc.DaysOfCash(fy), calc.DebtService(fy)} {
		assert.False(t, ind.Available)
		assert.Nil(t, ind.Value)
		assert.Nil(t, ind.Score)
		assert.NotEmpty(t, ind.Reason)
	}
}

func TestUnavailableWhenFundBalanceMissing(t *testing.T) {
	calc := newTestCalculator()
	fy := snapshot(2024, 100, 100, nil)

	ind := calc.FundBalanceRatio(fy)
	assert.False(t, ind.Available)
	assert.Equal(t, "no fund balance recorded", ind.Reason)
}

func TestOperatingBalance(t *testing.T) {
	calc := newTestCalculator()

	ind := calc.OperatingBalance(snapshot(2024, 100, 95, nil))
	require.True(t, ind.Available)
	assert.InDelta(t, 0.05, *ind.Value, 1e-9)
	assert.Equal(t, BandHealthy, ind.Band)

	ind = calc.OperatingBalance(snapshot(2024, 100, 108, nil))
	require.True(t, ind.Available)
	assert.Equal(t, BandCritical, ind.Band, "an 8 percent deficit is critical")
}

func TestTrendIndicatorsNeedThreeYears(t *testing.T) {
	calc := newTestCalculator()
	base := snapshot(2024, 100, 90, nil)
	oneYear := []*ledger.FiscalYear{snapshot(2023, 98, 90, nil)}

	trend := calc.DeficitTrend(base, oneYear)
	assert.False(t, trend.Available)
	assert.Contains(t, trend.Reason, "history")

	vol := calc.RevenueVolatility(base, oneYear)
	assert.False(t, vol.Available)
}

func TestDeficitTrendCountsDeficitYears(t *testing.T) {
	calc := newTestCalculator()
	base := snapshot(2024, 90, 100, nil) // deficit
	history := []*ledger.FiscalYear{
		snapshot(2022, 95, 100, nil), // deficit
		snapshot(2023, 105, 100, nil),
	}

	ind := calc.DeficitTrend(base, history)
	require.True(t, ind.Available)
	assert.Equal(t, 2.0, *ind.Value)
	assert.Equal(t, BandWarning, ind.Band)
}

func TestRevenueVolatility(t *testing.T) {
	calc := newTestCalculator()
	base := snapshot(2024, 100, 90, nil)
	steady := []*ledger.FiscalYear{
		snapshot(2021, 94.2, 90, nil),
		snapshot(2022, 96.1, 90, nil),
		snapshot(2023, 98.0, 90, nil),
	}

	ind := calc.RevenueVolatility(base, steady)
	require.True(t, ind.Available)
	assert.Equal(t, BandHealthy, ind.Band, "steady ~2 percent growth is low volatility")

	swings := []*ledger.FiscalYear{
		snapshot(2021, 80, 90, nil),
		snapshot(2022, 120, 90, nil),
		snapshot(2023, 70, 90, nil),
	}
	ind = calc.RevenueVolatility(base, swings)
	require.True(t, ind.Available)
	assert.Equal(t, BandCritical, ind.Band)
}

func TestPensionIndicatorsUnavailableWithoutPlans(t *testing.T) {
	calc := newTestCalculator()
	fy := snapshot(2024, 100, 100, fptr(20))

	for _, ind := range []Indicator{calc.PensionFundedRatio(fy), calc.UALToRevenue(fy), calc.ContributionBurden(fy)} {
		assert.False(t, ind.Available)
		assert.Nil(t, ind.Value)
		assert.Nil(t, ind.Score)
	}
}

func TestPensionIndicators(t *testing.T) {
	calc := newTestCalculator()
	fy := snapshot(2024, 100, 100, nil)
	fy.PensionPlans = []ledger.PensionPlan{{
		PlanName:                  "Miscellaneous",
		TotalPensionLiability:     decimal.NewFromInt(200),
		FiduciaryNetPosition:      decimal.NewFromInt(130),
		NetPensionLiability:       decimal.NewFromInt(70),
		TotalEmployerContribution: decimal.NewFromInt(18),
	}}

	funded := calc.PensionFundedRatio(fy)
	require.True(t, funded.Available)
	assert.InDelta(t, 0.65, *funded.Value, 1e-9)
	assert.Equal(t, BandWarning, funded.Band)

	ual := calc.UALToRevenue(fy)
	require.True(t, ual.Available)
	assert.InDelta(t, 0.70, *ual.Value, 1e-9)
	assert.Equal(t, BandHealthy, ual.Band, "UAL under one year of revenue")

	burden := calc.ContributionBurden(fy)
	require.True(t, burden.Available)
	assert.InDelta(t, 0.18, *burden.Value, 1e-9)
	assert.Equal(t, BandWarning, burden.Band)
}

func TestDebtServiceZeroIsGenuine(t *testing.T) {
	calc := newTestCalculator()
	fy := snapshot(2024, 100, 100, nil)

	ind := calc.DebtService(fy)
	require.True(t, ind.Available, "no debt rows is a real zero, not missing data")
	assert.Equal(t, 0.0, *ind.Value)
	assert.Equal(t, BandHealthy, ind.Band)
}

func TestAllReturnsNineIndicators(t *testing.T) {
	calc := newTestCalculator()
	fy := snapshot(2024, 100, 100, fptr(20))

	indicators := calc.All(fy, nil)
	require.Len(t, indicators, 9)

	// Availability invariant holds for every indicator.
	for _, ind := range indicators {
		if ind.Available {
			assert.NotNil(t, ind.Value, "%s", ind.Code)
			assert.NotNil(t, ind.Score, "%s", ind.Code)
		} else {
			assert.Nil(t, ind.Value, "%s", ind.Code)
			assert.Nil(t, ind.Score, "%s", ind.Code)
		}
	}
}
