package scenario

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// expenditureYear builds a fiscal year with $38M base costs and $10M pension
// contributions.
func expenditureYear(year int) *ledger.FiscalYear {
	return &ledger.FiscalYear{
		City: "Fresno",
		Year: year,
		Expenditures: []ledger.Expenditure{
			{Category: "Public Works", FundType: "General", ActualAmount: decimal.NewFromInt(38_000_000)},
			{Category: "Pension Contributions", FundType: "General", ActualAmount: decimal.NewFromInt(10_000_000)},
		},
	}
}

func TestProjectSplitsPensionFromBaseCosts(t *testing.T) {
	p := NewExpenditureProjector(config.Default())

	points := p.Project(expenditureYear(2024), 2, baseMultipliers(t, "base"))
	require.Len(t, points, 2)

	// Base costs compound at 2.5 percent, pension at 5 percent.
	assert.Equal(t, 2025, points[0].Year)
	assert.InDelta(t, 38_950_000, points[0].BaseCosts, 1)
	assert.InDelta(t, 10_500_000, points[0].PensionCosts, 1)
	assert.InDelta(t, 49_450_000, points[0].Total, 1)
	assert.False(t, points[0].FromSchedule)

	assert.InDelta(t, 38_000_000*1.025*1.025, points[1].BaseCosts, 1)
	assert.InDelta(t, 11_025_000, points[1].PensionCosts, 1)
}

func TestProjectPensionScheduleTakesPrecedence(t *testing.T) {
	p := NewExpenditureProjector(config.Default())

	fy := expenditureYear(2024)
	fy.PensionSchedule = map[int]decimal.Decimal{
		1: decimal.NewFromInt(11_000_000),
		2: decimal.NewFromInt(12_000_000),
	}

	points := p.Project(fy, 3, baseMultipliers(t, "base"))
	require.Len(t, points, 3)

	// Published values verbatim while the schedule covers the year.
	assert.InDelta(t, 11_000_000, points[0].PensionCosts, 1)
	assert.True(t, points[0].FromSchedule)
	assert.InDelta(t, 12_000_000, points[1].PensionCosts, 1)
	assert.True(t, points[1].FromSchedule)

	// Past the schedule, growth compounds from the last published value,
	// not from the base year.
	assert.InDelta(t, 12_600_000, points[2].PensionCosts, 1)
	assert.False(t, points[2].FromSchedule)
}

func TestProjectPessimisticMultipliers(t *testing.T) {
	p := NewExpenditureProjector(config.Default())

	points := p.Project(expenditureYear(2024), 1, baseMultipliers(t, "pessimistic"))
	require.Len(t, points, 1)

	// Inflation 3 percent, pension growth 7 percent.
	assert.InDelta(t, 38_000_000*1.03, points[0].BaseCosts, 1)
	assert.InDelta(t, 10_700_000, points[0].PensionCosts, 1)
}

func TestProjectPensionBurden(t *testing.T) {
	p := NewExpenditureProjector(config.Default())

	burden := p.ProjectPensionBurden(expenditureYear(2024), 1, baseMultipliers(t, "base"))
	require.Len(t, burden, 1)

	payroll := 38_000_000 * 1.025 * 0.55
	assert.InDelta(t, payroll, burden[0].EstimatedPayroll, 1)
	assert.InDelta(t, 10_500_000/payroll*100, burden[0].BurdenPercent, 1e-6)
}
