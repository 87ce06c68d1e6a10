package indicator

// Code identifies one of the nine fiscal-stress indicators.
type Code string

const (
	FundBalanceRatio  Code = "FUND_BALANCE_RATIO"
	DaysOfCash        Code = "DAYS_OF_CASH"
	OperatingBalance  Code = "OPERATING_BALANCE"
	DeficitTrend      Code = "DEFICIT_TREND"
	PensionFunded     Code = "PENSION_FUNDED"
	UALRatio          Code = "UAL_RATIO"
	PensionBurden     Code = "PENSION_BURDEN"
	RevenueVolatility Code = "REVENUE_VOLATILITY"
	DebtServiceRatio  Code = "DEBT_SERVICE_RATIO"
)

// Category groups indicators for sub-score aggregation.
type Category string

const (
	CategoryLiquidity  Category = "liquidity"
	CategoryStructural Category = "structural"
	CategoryPension    Category = "pension"
	CategoryRevenue    Category = "revenue"
	CategoryDebt       Category = "debt"
)

// Categories lists the five categories in reporting order.
var Categories = []Category{
	CategoryLiquidity,
	CategoryStructural,
	CategoryPension,
	CategoryRevenue,
	CategoryDebt,
}

// Band is the threshold classification of an indicator value. Lower scores
// are always better regardless of the underlying ratio's direction.
type Band string

const (
	BandHealthy  Band = "healthy"
	BandAdequate Band = "adequate"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// Score per band. Fixed across all indicators.
const (
	ScoreHealthy  = 0
	ScoreAdequate = 25
	ScoreWarning  = 50
	ScoreCritical = 100
)

// Indicator is the result of one indicator computation. When Available is
// false, Value and Score are nil and Reason says why; callers must check
// Available before dereferencing.
type Indicator struct {
	Code      Code
	Category  Category
	Available bool
	Value     *float64
	Score     *int
	Band      Band
	Reason    string
}

// CategoryOf maps each indicator code to its category.
func CategoryOf(code Code) Category {
	switch code {
	case FundBalanceRatio, DaysOfCash:
		return CategoryLiquidity
	case OperatingBalance, DeficitTrend:
		return CategoryStructural
	case PensionFunded, UALRatio, PensionBurden:
		return CategoryPension
	case RevenueVolatility:
		return CategoryRevenue
	default:
		return CategoryDebt
	}
}

func available(code Code, value float64, band Band) Indicator {
	score := bandScore(band)
	return Indicator{
		Code:      code,
		Category:  CategoryOf(code),
		Available: true,
		Value:     &value,
		Score:     &score,
		Band:      band,
	}
}

func unavailable(code Code, reason string) Indicator {
	return Indicator{
		Code:     code,
		Category: CategoryOf(code),
		Reason:   reason,
	}
}

func bandScore(band Band) int {
	switch band {
	case BandHealthy:
		return ScoreHealthy
	case BandAdequate:
		return ScoreAdequate
	case BandWarning:
		return ScoreWarning
	default:
		return ScoreCritical
	}
}
