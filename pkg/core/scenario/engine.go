// Package scenario projects a city's finances forward under named growth
// scenarios and detects the fiscal cliff: the first projected year in which
// reserves are exhausted.
package scenario

import (
	"github.com/google/uuid"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// Engine orchestrates the two projectors across a horizon and derives the
// fund-balance trajectory. Runs are deterministic: identical inputs produce
// identical projections and cliff analysis.
type Engine struct {
	cfg *config.Config
	rev *RevenueProjector
	exp *ExpenditureProjector
}

// NewEngine builds a scenario engine from validated configuration.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		rev: NewRevenueProjector(cfg),
		exp: NewExpenditureProjector(cfg),
	}, nil
}

// RunScenario projects yearsAhead years from the base fiscal year under the
// named scenario and runs cliff detection and sensitivity analysis.
//
// A projector failure aborts the whole run; the caller persists either the
// complete run or nothing. Years are processed strictly in ascending order
// because each year's beginning balance is the prior year's ending balance.
func (e *Engine) RunScenario(base *ledger.FiscalYear, history []*ledger.FiscalYear, yearsAhead int, code Code) (*Run, error) {
	if base == nil {
		return nil, &ComputationError{Reason: "base fiscal year is required"}
	}
	if yearsAhead < 1 {
		return nil, &ComputationError{City: base.City, Year: base.Year, Reason: "projection horizon must be at least 1 year"}
	}
	mult, err := e.cfg.Scenario(string(code))
	if err != nil {
		return nil, &ComputationError{City: base.City, Year: base.Year, Reason: err.Error()}
	}

	revenues, err := e.rev.Project(base, history, yearsAhead, mult)
	if err != nil {
		return nil, err
	}
	expenditures := e.exp.Project(base, yearsAhead, mult)
	burden := e.exp.ProjectPensionBurden(base, yearsAhead, mult)

	// Starting reserves: the recorded fund balance when present, otherwise
	// a documented estimate of 15% of base-year expenditure.
	starting, recorded := base.TotalFundBalance()
	if !recorded {
		starting = base.TotalExpenditure() * e.cfg.Projection.FallbackReserveRatio
	}

	projections := make([]Projection, 0, yearsAhead)
	balance := starting
	for i := 0; i < yearsAhead; i++ {
		rev := revenues[i]
		exp := expenditures[i]

		surplus := rev.ProjectedRevenue - exp.Total
		beginning := balance
		ending := beginning + surplus

		ratio := 0.0
		if exp.Total != 0 {
			ratio = ending / exp.Total
		}

		projections = append(projections, Projection{
			ID:                      uuid.New(),
			City:                    base.City,
			BaseYear:                base.Year,
			Scenario:                code,
			Year:                    rev.Year,
			ProjectedRevenue:        rev.ProjectedRevenue,
			BaseCosts:               exp.BaseCosts,
			PensionCosts:            exp.PensionCosts,
			ProjectedExpenditure:    exp.Total,
			OperatingSurplusDeficit: surplus,
			BeginningFundBalance:    beginning,
			EndingFundBalance:       ending,
			FundBalanceRatio:        ratio,
			IsDeficit:               surplus < 0,
			IsDepletingReserves:     ending < beginning,
			ReservesBelowMinimum:    ratio < e.cfg.Projection.MinimumReserveRatio,
		})
		balance = ending
	}

	cliff := e.detectCliff(base, code, starting, !recorded, projections)
	if cliff.HasFiscalCliff {
		for i := range projections {
			if projections[i].Year == cliff.CliffYear {
				projections[i].IsFiscalCliff = true
				break
			}
		}
	}

	return &Run{
		City:        base.City,
		BaseYear:    base.Year,
		Scenario:    code,
		Projections: projections,
		Cliff:       cliff,
		Burden:      burden,
	}, nil
}

// detectCliff applies the strict first-zero-crossing rule: the cliff year
// is the first projected year whose ending balance is <= 0, even if a later
// year recovers.
func (e *Engine) detectCliff(base *ledger.FiscalYear, code Code, starting float64, estimated bool, projections []Projection) CliffAnalysis {
	analysis := CliffAnalysis{
		ID:                       uuid.New(),
		City:                     base.City,
		BaseYear:                 base.Year,
		Scenario:                 code,
		Severity:                 SeverityNone,
		StartingFundBalance:      starting,
		StartingBalanceEstimated: estimated,
	}

	cliffIdx := -1
	for i, p := range projections {
		if p.EndingFundBalance <= 0 {
			cliffIdx = i
			break
		}
	}
	if cliffIdx < 0 {
		return analysis
	}

	cliff := projections[cliffIdx]
	yearsUntil := cliff.Year - base.Year

	analysis.HasFiscalCliff = true
	analysis.CliffYear = cliff.Year
	analysis.YearsUntilCliff = yearsUntil
	analysis.Severity = severityFor(yearsUntil)

	// Sensitivity: the gap is whatever would have held the cliff year's
	// ending balance at zero, spread evenly over the years through the
	// cliff. Revenue and expenditure adjustments are computed
	// independently, not as a joint optimum.
	gap := -cliff.EndingFundBalance
	years := float64(cliffIdx + 1)
	perYear := gap / years

	var revSum, expSum float64
	for _, p := range projections[:cliffIdx+1] {
		revSum += p.ProjectedRevenue
		expSum += p.ProjectedExpenditure
	}
	avgRev := revSum / years
	avgExp := expSum / years

	if avgRev > 0 {
		analysis.RevenueIncreaseNeededPercent = perYear / avgRev * 100
	}
	if avgExp > 0 {
		analysis.ExpenditureCutNeededPercent = perYear / avgExp * 100
	}
	return analysis
}

func severityFor(yearsUntil int) Severity {
	switch {
	case yearsUntil <= 2:
		return SeverityImmediate
	case yearsUntil <= 5:
		return SeverityNearTerm
	default:
		return SeverityLongTerm
	}
}
