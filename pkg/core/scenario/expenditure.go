package scenario

import (
	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// ExpenditureProjector forecasts future expenditure, modeling pension costs
// separately from the inflation-driven remainder. Pension costs are the
// dominant driver of municipal fiscal stress, so they grow faster than base
// costs and react more strongly to the scenario.
type ExpenditureProjector struct {
	cfg        config.Projection
	pensionCat []string
}

// NewExpenditureProjector builds a projector from the model configuration.
func NewExpenditureProjector(cfg *config.Config) *ExpenditureProjector {
	return &ExpenditureProjector{
		cfg:        cfg.Projection,
		pensionCat: cfg.PensionCategories,
	}
}

// Project forecasts yearsAhead years of expenditure from the base year.
//
// The base-year total is split by category name into pension and base
// costs. Base costs compound at the scenario-adjusted inflation rate. For
// pension costs, a published contribution schedule keyed by years-ahead
// offset takes precedence verbatim for as many years as it covers; once
// exhausted, or when none exists, the assumed pension growth rate compounds
// from the last known pension cost.
func (p *ExpenditureProjector) Project(base *ledger.FiscalYear, yearsAhead int, mult config.ScenarioMultipliers) []ExpenditurePoint {
	inflation := p.cfg.BaseInflation * mult.BaseInflation
	pensionGrowth := p.cfg.BasePensionGrowth * mult.PensionGrowth

	pensionBase := base.ExpenditureIn(p.pensionCat)
	baseCosts := base.TotalExpenditure() - pensionBase

	points := make([]ExpenditurePoint, 0, yearsAhead)
	lastPension := pensionBase
	for i := 1; i <= yearsAhead; i++ {
		baseCosts *= 1 + inflation

		pension := 0.0
		fromSchedule := false
		if scheduled, ok := base.ScheduledContribution(i); ok {
			pension = scheduled
			fromSchedule = true
		} else {
			pension = lastPension * (1 + pensionGrowth)
		}
		lastPension = pension

		points = append(points, ExpenditurePoint{
			Year:         base.Year + i,
			BaseCosts:    baseCosts,
			PensionCosts: pension,
			Total:        baseCosts + pension,
			FromSchedule: fromSchedule,
		})
	}
	return points
}

// ProjectPensionBurden reports pension cost as a percentage of estimated
// payroll per projected year. Payroll is estimated as a configured share of
// base costs. Informational reporting only; cliff detection does not use it.
func (p *ExpenditureProjector) ProjectPensionBurden(base *ledger.FiscalYear, yearsAhead int, mult config.ScenarioMultipliers) []PensionBurdenPoint {
	points := p.Project(base, yearsAhead, mult)

	burden := make([]PensionBurdenPoint, 0, len(points))
	for _, pt := range points {
		payroll := pt.BaseCosts * p.cfg.PayrollEstimateRatio
		pct := 0.0
		if payroll > 0 {
			pct = pt.PensionCosts / payroll * 100
		}
		burden = append(burden, PensionBurdenPoint{
			Year:             pt.Year,
			PensionCosts:     pt.PensionCosts,
			EstimatedPayroll: payroll,
			BurdenPercent:    pct,
		})
	}
	return burden
}
