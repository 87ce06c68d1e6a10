package scenario

import (
	"math"
	"sort"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/ledger"
)

// RevenueProjector forecasts future revenue by compounding the historical
// CAGR, adjusted by the scenario's multiplier. This is a deliberate design
// simplification, not a statistical model: no mean reversion, no clamping,
// and negative growth compounds like any other.
type RevenueProjector struct {
	cfg config.Projection
}

// NewRevenueProjector builds a projector from the model configuration.
func NewRevenueProjector(cfg *config.Config) *RevenueProjector {
	return &RevenueProjector{cfg: cfg.Projection}
}

// Project forecasts yearsAhead years of revenue from the base year's actual
// total. History must contain the base year or earlier years; at least two
// distinct years of positive revenue are required, otherwise
// ErrInsufficientHistory.
func (p *RevenueProjector) Project(base *ledger.FiscalYear, history []*ledger.FiscalYear, yearsAhead int, mult config.ScenarioMultipliers) ([]RevenuePoint, error) {
	rate, err := p.HistoricalCAGR(base, history)
	if err != nil {
		return nil, err
	}
	adjusted := rate * mult.RevenueCAGR

	points := make([]RevenuePoint, 0, yearsAhead)
	revenue := base.TotalRevenue()
	for i := 1; i <= yearsAhead; i++ {
		revenue *= 1 + adjusted
		points = append(points, RevenuePoint{
			Year:             base.Year + i,
			ProjectedRevenue: revenue,
			GrowthRateUsed:   adjusted,
		})
	}
	return points, nil
}

// HistoricalCAGR computes (last/first)^(1/n) - 1 over the trailing window,
// where n is the number of year-over-year intervals. The window is capped
// by the configured CAGR window size.
func (p *RevenueProjector) HistoricalCAGR(base *ledger.FiscalYear, history []*ledger.FiscalYear) (float64, error) {
	window := revenueWindow(base, history, p.cfg.CAGRWindowYears)
	if len(window) < 2 {
		return 0, ErrInsufficientHistory
	}
	first := window[0]
	last := window[len(window)-1]
	if first <= 0 || last <= 0 {
		return 0, ErrInsufficientHistory
	}
	n := float64(len(window) - 1)
	return math.Pow(last/first, 1/n) - 1, nil
}

// revenueWindow collects annual revenue totals ending at the base year, in
// ascending year order, capped at maxYears.
func revenueWindow(base *ledger.FiscalYear, history []*ledger.FiscalYear, maxYears int) []float64 {
	byYear := map[int]float64{base.Year: base.TotalRevenue()}
	for _, h := range history {
		if h.Year <= base.Year {
			byYear[h.Year] = h.TotalRevenue()
		}
	}

	ordered := make([]int, 0, len(byYear))
	for y := range byYear {
		ordered = append(ordered, y)
	}
	sort.Ints(ordered)

	if len(ordered) > maxYears {
		ordered = ordered[len(ordered)-maxYears:]
	}

	totals := make([]float64, 0, len(ordered))
	for _, y := range ordered {
		totals = append(totals, byYear[y])
	}
	return totals
}
