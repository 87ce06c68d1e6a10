package scenario

import (
	"fmt"

	"github.com/google/uuid"
)

// Code names a projection scenario. Scenario rows are immutable reference
// data created lazily on first use by the store layer.
type Code string

const (
	Base        Code = "base"
	Optimistic  Code = "optimistic"
	Pessimistic Code = "pessimistic"
)

// Severity classifies how soon a projected fiscal cliff arrives.
type Severity string

const (
	SeverityNone      Severity = "none"
	SeverityImmediate Severity = "immediate"
	SeverityNearTerm  Severity = "near_term"
	SeverityLongTerm  Severity = "long_term"
)

// RevenuePoint is one projected revenue year.
type RevenuePoint struct {
	Year             int
	ProjectedRevenue float64
	GrowthRateUsed   float64
}

// ExpenditurePoint is one projected expenditure year, split into its
// inflation-driven base and pension components.
type ExpenditurePoint struct {
	Year         int
	BaseCosts    float64
	PensionCosts float64
	Total        float64

	// FromSchedule marks pension costs taken verbatim from a published
	// actuarial schedule rather than an assumed growth rate.
	FromSchedule bool
}

// PensionBurdenPoint tracks pension cost against estimated payroll for one
// projected year. Informational only; cliff detection ignores it.
type PensionBurdenPoint struct {
	Year             int
	PensionCosts     float64
	EstimatedPayroll float64
	BurdenPercent    float64
}

// Projection is one projected fiscal year under a scenario. Built fully
// before persistence; the store writes a run's rows atomically.
type Projection struct {
	ID       uuid.UUID
	City     string
	BaseYear int
	Scenario Code
	Year     int

	ProjectedRevenue     float64
	BaseCosts            float64
	PensionCosts         float64
	ProjectedExpenditure float64

	OperatingSurplusDeficit float64
	BeginningFundBalance    float64
	EndingFundBalance       float64
	FundBalanceRatio        float64

	IsDeficit            bool
	IsDepletingReserves  bool
	ReservesBelowMinimum bool
	IsFiscalCliff        bool
}

// CliffAnalysis summarizes the first projected year, if any, whose ending
// fund balance reaches zero or below. One per (city, base year, scenario);
// a rerun supersedes the prior row entirely.
type CliffAnalysis struct {
	ID       uuid.UUID
	City     string
	BaseYear int
	Scenario Code

	HasFiscalCliff  bool
	CliffYear       int
	YearsUntilCliff int
	Severity        Severity

	// What-would-it-take adjustments, each computed independently: the
	// average annual revenue increase, or expenditure decrease, spread
	// evenly across the years up to the cliff, that would have kept the
	// ending balance at zero. Zero when no cliff exists.
	RevenueIncreaseNeededPercent float64
	ExpenditureCutNeededPercent  float64

	StartingFundBalance      float64
	StartingBalanceEstimated bool
}

// Run bundles everything one ScenarioEngine invocation produces. The store
// persists a run in a single transaction: all projection rows plus the
// cliff analysis, or nothing.
type Run struct {
	City        string
	BaseYear    int
	Scenario    Code
	Projections []Projection
	Cliff       CliffAnalysis
	Burden      []PensionBurdenPoint
}

// ErrInsufficientHistory reports fewer than two years of usable revenue
// history, which makes growth estimation impossible.
var ErrInsufficientHistory = fmt.Errorf("insufficient revenue history: at least 2 years required")

// ComputationError reports a structural failure of a scenario run, such as
// an unknown scenario code or a malformed base year.
type ComputationError struct {
	City   string
	Year   int
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("scenario run %s FY%d: %s", e.City, e.Year, e.Reason)
}
