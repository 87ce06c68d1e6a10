// Package risk aggregates the nine indicators into category sub-scores and
// one composite fiscal-stress score per fiscal year.
package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/indicator"
	"muniwatch/pkg/core/ledger"
)

// Level is the derived label for a composite score.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
	LevelSevere   Level = "severe"
)

// Score is the composite result for one (fiscal year, model version). A
// category sub-score is nil when none of its indicators were available.
type Score struct {
	ID           uuid.UUID
	FiscalYearID uuid.UUID
	City         string
	Year         int
	ModelVersion string

	CategoryScores          map[indicator.Category]*float64
	OverallScore            float64
	RiskLevel               Level
	DataCompletenessPercent float64

	Indicators   []indicator.Indicator
	CalculatedAt time.Time
}

// ComputationError reports a structural failure: the score could not be
// computed at all, as opposed to being computed from partial data.
type ComputationError struct {
	City   string
	Year   int
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("risk score %s FY%d: %s", e.City, e.Year, e.Reason)
}

// Engine computes composite risk scores. Construction validates the
// configured weights; a config whose weights do not sum to 1.0 never
// produces a score.
type Engine struct {
	calc         *indicator.Calculator
	weights      config.Weights
	modelVersion string
	now          func() time.Time
}

// NewEngine builds a scoring engine, rejecting invalid weight
// configurations up front.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		calc:         indicator.NewCalculator(cfg),
		weights:      cfg.Weights,
		modelVersion: cfg.ModelVersion,
		now:          time.Now,
	}, nil
}

// CalculateScore runs all indicators for a fiscal year and folds them into
// the composite score. History feeds the trend indicators only.
//
// Unavailable indicators are excluded from their category mean, not treated
// as zero. A category with no available indicators is excluded from the
// overall weighted sum and the remaining weights are renormalized. Zero
// available indicators across the board is a ComputationError.
func (e *Engine) CalculateScore(fy *ledger.FiscalYear, history []*ledger.FiscalYear) (*Score, error) {
	indicators := e.calc.All(fy, history)

	availableCount := 0
	sums := map[indicator.Category]float64{}
	counts := map[indicator.Category]int{}
	for _, ind := range indicators {
		if !ind.Available {
			continue
		}
		availableCount++
		sums[ind.Category] += float64(*ind.Score)
		counts[ind.Category]++
	}
	if availableCount == 0 {
		return nil, &ComputationError{City: fy.City, Year: fy.Year, Reason: "no indicators available"}
	}

	categoryScores := make(map[indicator.Category]*float64, len(indicator.Categories))
	for _, cat := range indicator.Categories {
		if counts[cat] == 0 {
			categoryScores[cat] = nil
			continue
		}
		mean := sums[cat] / float64(counts[cat])
		categoryScores[cat] = &mean
	}

	overall := weightedOverall(categoryScores, e.weights)

	return &Score{
		ID:                      uuid.New(),
		FiscalYearID:            fy.ID,
		City:                    fy.City,
		Year:                    fy.Year,
		ModelVersion:            e.modelVersion,
		CategoryScores:          categoryScores,
		OverallScore:            overall,
		RiskLevel:               LevelFor(overall),
		DataCompletenessPercent: float64(availableCount) / float64(len(indicators)) * 100,
		Indicators:              indicators,
		CalculatedAt:            e.now(),
	}, nil
}

// weightedOverall combines available category sub-scores. Weights of
// missing categories are redistributed proportionally so the overall score
// stays in [0, 100].
func weightedOverall(scores map[indicator.Category]*float64, w config.Weights) float64 {
	weightFor := map[indicator.Category]float64{
		indicator.CategoryLiquidity:  w.Liquidity,
		indicator.CategoryStructural: w.Structural,
		indicator.CategoryPension:    w.Pension,
		indicator.CategoryRevenue:    w.Revenue,
		indicator.CategoryDebt:       w.Debt,
	}

	sum, weightSum := 0.0, 0.0
	for cat, score := range scores {
		if score == nil {
			continue
		}
		sum += *score * weightFor[cat]
		weightSum += weightFor[cat]
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// LevelFor maps a composite score to its risk level band.
func LevelFor(overall float64) Level {
	switch {
	case overall < 25:
		return LevelLow
	case overall < 50:
		return LevelModerate
	case overall < 75:
		return LevelHigh
	default:
		return LevelSevere
	}
}
