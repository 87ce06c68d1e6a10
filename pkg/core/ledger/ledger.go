// Package ledger defines the read-only fiscal-year snapshot the analytical
// engines consume. Rows are transcribed by hand from CAFRs elsewhere in the
// system; this package only aggregates them.
//
// Transcribed dollar amounts are carried as decimal.Decimal so manual-entry
// cents survive aggregation exactly. Ratio and growth math happens in
// float64 after aggregation.
package ledger

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Revenue is one transcribed revenue line for a fiscal year.
type Revenue struct {
	Category     string
	FundType     string
	ActualAmount decimal.Decimal
}

// Expenditure is one transcribed expenditure line for a fiscal year.
type Expenditure struct {
	Category     string
	FundType     string
	ActualAmount decimal.Decimal
}

// FundBalance is the recorded fund balance for one fund type.
type FundBalance struct {
	FundType         string
	TotalFundBalance decimal.Decimal
}

// PensionPlan carries one plan's actuarial figures as published in the CAFR.
type PensionPlan struct {
	PlanName                  string
	TotalPensionLiability     decimal.Decimal
	FiduciaryNetPosition      decimal.Decimal
	NetPensionLiability       decimal.Decimal
	FundedRatio               *float64
	TotalEmployerContribution decimal.Decimal
	CoveredPayroll            decimal.Decimal
}

// FiscalYear is one city-year snapshot. Immutable once published; the
// engines never write back to it.
type FiscalYear struct {
	ID           uuid.UUID
	City         string
	Year         int
	Revenues     []Revenue
	Expenditures []Expenditure
	FundBalances []FundBalance
	PensionPlans []PensionPlan

	// PensionSchedule holds externally published employer contribution
	// projections keyed by years-ahead offset (1 = first projected year).
	// Empty when no actuarial schedule was published for this base year.
	PensionSchedule map[int]decimal.Decimal
}

// TotalRevenue sums all revenue rows and converts once to float64.
func (fy *FiscalYear) TotalRevenue() float64 {
	total := decimal.Zero
	for _, r := range fy.Revenues {
		total = total.Add(r.ActualAmount)
	}
	return total.InexactFloat64()
}

// TotalExpenditure sums all expenditure rows.
func (fy *FiscalYear) TotalExpenditure() float64 {
	total := decimal.Zero
	for _, e := range fy.Expenditures {
		total = total.Add(e.ActualAmount)
	}
	return total.InexactFloat64()
}

// TotalFundBalance sums recorded fund balances across fund types. The second
// return is false when no fund balance was recorded at all, which callers
// must treat differently from a recorded zero.
func (fy *FiscalYear) TotalFundBalance() (float64, bool) {
	if len(fy.FundBalances) == 0 {
		return 0, false
	}
	total := decimal.Zero
	for _, fb := range fy.FundBalances {
		total = total.Add(fb.TotalFundBalance)
	}
	return total.InexactFloat64(), true
}

// ExpenditureIn sums expenditure rows whose category matches any of the
// given names, case-insensitively.
func (fy *FiscalYear) ExpenditureIn(categories []string) float64 {
	total := decimal.Zero
	for _, e := range fy.Expenditures {
		if matchCategory(e.Category, categories) {
			total = total.Add(e.ActualAmount)
		}
	}
	return total.InexactFloat64()
}

// PensionLiability aggregates total pension liability across plans.
func (fy *FiscalYear) PensionLiability() float64 {
	total := decimal.Zero
	for _, p := range fy.PensionPlans {
		total = total.Add(p.TotalPensionLiability)
	}
	return total.InexactFloat64()
}

// PensionAssets aggregates fiduciary net position across plans.
func (fy *FiscalYear) PensionAssets() float64 {
	total := decimal.Zero
	for _, p := range fy.PensionPlans {
		total = total.Add(p.FiduciaryNetPosition)
	}
	return total.InexactFloat64()
}

// NetPensionLiability aggregates the UAL across plans.
func (fy *FiscalYear) NetPensionLiability() float64 {
	total := decimal.Zero
	for _, p := range fy.PensionPlans {
		total = total.Add(p.NetPensionLiability)
	}
	return total.InexactFloat64()
}

// EmployerContribution aggregates employer pension contributions across
// plans.
func (fy *FiscalYear) EmployerContribution() float64 {
	total := decimal.Zero
	for _, p := range fy.PensionPlans {
		total = total.Add(p.TotalEmployerContribution)
	}
	return total.InexactFloat64()
}

// ScheduledContribution returns the published employer contribution for the
// given years-ahead offset, if the schedule covers it.
func (fy *FiscalYear) ScheduledContribution(offset int) (float64, bool) {
	if fy.PensionSchedule == nil {
		return 0, false
	}
	amt, ok := fy.PensionSchedule[offset]
	if !ok {
		return 0, false
	}
	return amt.InexactFloat64(), true
}

func matchCategory(category string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(category), n) {
			return true
		}
	}
	return false
}

// SortYearsAscending orders snapshots oldest first. The projection engines
// rely on strictly ascending order.
func SortYearsAscending(years []*FiscalYear) []*FiscalYear {
	sorted := make([]*FiscalYear, len(years))
	copy(sorted, years)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return sorted
}
