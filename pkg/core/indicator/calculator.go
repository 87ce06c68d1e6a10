// Package indicator computes the nine fiscal-stress indicators from a
// fiscal-year snapshot and classifies each into a threshold band.
//
// Indicator functions never divide by zero and never panic: a missing
// denominator or an insufficient history window degrades the indicator to
// unavailable, which the scoring engine surfaces as reduced data
// completeness rather than an error.
package indicator

import (
	"math"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// Calculator evaluates indicators against configured thresholds. Stateless
// given a snapshot; safe for reuse across fiscal years.
type Calculator struct {
	thresholds config.Thresholds
	pensionCat []string
	debtCat    []string
}

// NewCalculator builds a calculator from the model configuration.
func NewCalculator(cfg *config.Config) *Calculator {
	return &Calculator{
		thresholds: cfg.Thresholds,
		pensionCat: cfg.PensionCategories,
		debtCat:    cfg.DebtServiceCategories,
	}
}

// All computes every indicator for a fiscal year. History carries prior
// snapshots for the trend indicators and may include the base year itself;
// ordering does not matter, it is sorted internally.
func (c *Calculator) All(fy *ledger.FiscalYear, history []*ledger.FiscalYear) []Indicator {
	return []Indicator{
		c.FundBalanceRatio(fy),
		c.DaysOfCash(fy),
		c.OperatingBalance(fy),
		c.DeficitTrend(fy, history),
		c.PensionFundedRatio(fy),
		c.UALToRevenue(fy),
		c.ContributionBurden(fy),
		c.RevenueVolatility(fy, history),
		c.DebtService(fy),
	}
}

// FundBalanceRatio is total fund balance over total expenditure: how much of
// a year's spending the reserves could cover.
func (c *Calculator) FundBalanceRatio(fy *ledger.FiscalYear) Indicator {
	balance, ok := fy.TotalFundBalance()
	if !ok {
		return unavailable(FundBalanceRatio, "no fund balance recorded")
	}
	exp := fy.TotalExpenditure()
	if exp == 0 {
		return unavailable(FundBalanceRatio, "zero total expenditure")
	}
	ratio := balance / exp
	return available(FundBalanceRatio, ratio, classify(ratio, c.thresholds.FundBalanceRatio))
}

// DaysOfCash converts the fund balance ratio into days of spending covered.
func (c *Calculator) DaysOfCash(fy *ledger.FiscalYear) Indicator {
	balance, ok := fy.TotalFundBalance()
	if !ok {
		return unavailable(DaysOfCash, "no fund balance recorded")
	}
	exp := fy.TotalExpenditure()
	if exp == 0 {
		return unavailable(DaysOfCash, "zero total expenditure")
	}
	days := balance / exp * 365
	return available(DaysOfCash, days, classify(days, c.thresholds.DaysOfCash))
}

// OperatingBalance is the operating surplus or deficit as a share of
// revenue.
func (c *Calculator) OperatingBalance(fy *ledger.FiscalYear) Indicator {
	rev := fy.TotalRevenue()
	if rev == 0 {
		return unavailable(OperatingBalance, "zero total revenue")
	}
	margin := (rev - fy.TotalExpenditure()) / rev
	return available(OperatingBalance, margin, classify(margin, c.thresholds.OperatingBalance))
}

// DeficitTrend counts operating-deficit years across the trailing window
// (the base year plus its history). Below the minimum window the trend is
// unavailable rather than a misleading single-year statistic.
func (c *Calculator) DeficitTrend(fy *ledger.FiscalYear, history []*ledger.FiscalYear) Indicator {
	window := trailingWindow(fy, history, c.thresholds.TrendWindowMinimum)
	if window == nil {
		return unavailable(DeficitTrend, "fewer than 3 years of history")
	}
	deficits := 0.0
	for _, y := range window {
		if y.TotalRevenue()-y.TotalExpenditure() < 0 {
			deficits++
		}
	}
	return available(DeficitTrend, deficits, classify(deficits, c.thresholds.DeficitTrend))
}

// PensionFundedRatio is aggregate plan assets over aggregate plan
// liabilities.
func (c *Calculator) PensionFundedRatio(fy *ledger.FiscalYear) Indicator {
	if len(fy.PensionPlans) == 0 {
		return unavailable(PensionFunded, "no pension plans recorded")
	}
	liability := fy.PensionLiability()
	if liability == 0 {
		return unavailable(PensionFunded, "zero total pension liability")
	}
	ratio := fy.PensionAssets() / liability
	return available(PensionFunded, ratio, classify(ratio, c.thresholds.PensionFunded))
}

// UALToRevenue is the unfunded actuarial liability as a multiple of annual
// revenue. Higher is worse.
func (c *Calculator) UALToRevenue(fy *ledger.FiscalYear) Indicator {
	if len(fy.PensionPlans) == 0 {
		return unavailable(UALRatio, "no pension plans recorded")
	}
	rev := fy.TotalRevenue()
	if rev == 0 {
		return unavailable(UALRatio, "zero total revenue")
	}
	ratio := fy.NetPensionLiability() / rev
	return available(UALRatio, ratio, classify(ratio, c.thresholds.UALRatio))
}

// ContributionBurden is employer pension contributions as a share of total
// expenditure.
func (c *Calculator) ContributionBurden(fy *ledger.FiscalYear) Indicator {
	if len(fy.PensionPlans) == 0 {
		return unavailable(PensionBurden, "no pension plans recorded")
	}
	exp := fy.TotalExpenditure()
	if exp == 0 {
		return unavailable(PensionBurden, "zero total expenditure")
	}
	burden := fy.EmployerContribution() / exp
	return available(PensionBurden, burden, classify(burden, c.thresholds.PensionBurden))
}

// RevenueVolatility is the standard deviation of year-over-year revenue
// growth across the trailing window.
func (c *Calculator) RevenueVolatility(fy *ledger.FiscalYear, history []*ledger.FiscalYear) Indicator {
	window := trailingWindow(fy, history, c.thresholds.TrendWindowMinimum)
	if window == nil {
		return unavailable(RevenueVolatility, "fewer than 3 years of history")
	}
	var growths []float64
	for i := 1; i < len(window); i++ {
		prev := window[i-1].TotalRevenue()
		if prev == 0 {
			continue
		}
		growths = append(growths, (window[i].TotalRevenue()-prev)/prev)
	}
	if len(growths) < 2 {
		return unavailable(RevenueVolatility, "insufficient usable revenue history")
	}
	vol := stddev(growths)
	return available(RevenueVolatility, vol, classify(vol, c.thresholds.RevenueVolatility))
}

// DebtService is debt-service expenditure as a share of total expenditure.
// A year with no matching debt rows is a genuine zero, not missing data.
func (c *Calculator) DebtService(fy *ledger.FiscalYear) Indicator {
	exp := fy.TotalExpenditure()
	if exp == 0 {
		return unavailable(DebtServiceRatio, "zero total expenditure")
	}
	ratio := fy.ExpenditureIn(c.debtCat) / exp
	return available(DebtServiceRatio, ratio, classify(ratio, c.thresholds.DebtServiceRatio))
}

// classify maps a value onto the four ordered bands. For higher-is-better
// indicators the band edges are inclusive lower bounds; for lower-is-better
// they are exclusive upper bounds. A fund balance ratio of exactly 0.20 is
// healthy; a UAL ratio of exactly 1.0 is adequate.
func classify(value float64, t config.Threshold) Band {
	if t.HigherIsBetter {
		switch {
		case value >= t.Healthy:
			return BandHealthy
		case value >= t.Adequate:
			return BandAdequate
		case value >= t.Warning:
			return BandWarning
		default:
			return BandCritical
		}
	}
	switch {
	case value < t.Healthy:
		return BandHealthy
	case value < t.Adequate:
		return BandAdequate
	case value < t.Warning:
		return BandWarning
	default:
		return BandCritical
	}
}

// trailingWindow assembles the base year plus history in ascending year
// order, deduplicated, or nil when fewer than min years are present.
func trailingWindow(fy *ledger.FiscalYear, history []*ledger.FiscalYear, min int) []*ledger.FiscalYear {
	byYear := map[int]*ledger.FiscalYear{fy.Year: fy}
	for _, h := range history {
		if h.Year < fy.Year {
			byYear[h.Year] = h
		}
	}
	years := make([]*ledger.FiscalYear, 0, len(byYear))
	for _, y := range byYear {
		years = append(years, y)
	}
	if len(years) < min {
		return nil
	}
	return ledger.SortYearsAscending(years)
}

func stddev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
