// Package config holds the versionable model configuration: category
// weights, indicator thresholds, and scenario growth assumptions.
//
// Every constant the engines depend on lives here rather than at the call
// sites, so a model-version bump is a config change, not a code change.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

// WeightTolerance is the allowed drift when checking that category weights
// sum to 1.0.
const WeightTolerance = 1e-3

// Weights assigns the relative importance of each indicator category to the
// composite risk score. The five weights must sum to 1.0.
type Weights struct {
	Liquidity  float64 `yaml:"liquidity"`
	Structural float64 `yaml:"structural"`
	Pension    float64 `yaml:"pension"`
	Revenue    float64 `yaml:"revenue"`
	Debt       float64 `yaml:"debt"`
}

// Sum returns the total of the five weights.
func (w Weights) Sum() float64 {
	return w.Liquidity + w.Structural + w.Pension + w.Revenue + w.Debt
}

// Threshold defines the three band edges for one indicator. Classification
// walks healthy -> adequate -> warning; anything past the warning edge is
// critical.
//
// When HigherIsBetter, a value is healthy at or above the Healthy edge
// (inclusive). When not, a value is healthy strictly below the Healthy edge.
type Threshold struct {
	Healthy        float64 `yaml:"healthy"`
	Adequate       float64 `yaml:"adequate"`
	Warning        float64 `yaml:"warning"`
	HigherIsBetter bool    `yaml:"higher_is_better"`
}

// Thresholds carries the band edges for all nine indicators.
type Thresholds struct {
	FundBalanceRatio   Threshold `yaml:"fund_balance_ratio"`
	DaysOfCash         Threshold `yaml:"days_of_cash"`
	OperatingBalance   Threshold `yaml:"operating_balance"`
	DeficitTrend       Threshold `yaml:"deficit_trend"`
	PensionFunded      Threshold `yaml:"pension_funded"`
	UALRatio           Threshold `yaml:"ual_ratio"`
	PensionBurden      Threshold `yaml:"pension_burden"`
	RevenueVolatility  Threshold `yaml:"revenue_volatility"`
	DebtServiceRatio   Threshold `yaml:"debt_service_ratio"`
	TrendWindowMinimum int       `yaml:"trend_window_minimum"`
}

// ScenarioMultipliers adjust the baseline growth assumptions for one named
// scenario. Each is a multiplicative factor applied to the corresponding
// baseline rate.
type ScenarioMultipliers struct {
	RevenueCAGR   float64 `yaml:"revenue_cagr"`
	BaseInflation float64 `yaml:"base_inflation"`
	PensionGrowth float64 `yaml:"pension_growth"`
}

// Projection holds the baseline growth assumptions and the per-scenario
// multipliers applied on top of them.
type Projection struct {
	BaseInflation        float64                        `yaml:"base_inflation"`
	BasePensionGrowth    float64                        `yaml:"base_pension_growth"`
	CAGRWindowYears      int                            `yaml:"cagr_window_years"`
	FallbackReserveRatio float64                        `yaml:"fallback_reserve_ratio"`
	MinimumReserveRatio  float64                        `yaml:"minimum_reserve_ratio"`
	PayrollEstimateRatio float64                        `yaml:"payroll_estimate_ratio"`
	Scenarios            map[string]ScenarioMultipliers `yaml:"scenarios"`
}

// Config is the root model configuration.
type Config struct {
	ModelVersion          string     `yaml:"model_version"`
	Weights               Weights    `yaml:"category_weights"`
	Thresholds            Thresholds `yaml:"thresholds"`
	Projection            Projection `yaml:"projection"`
	PensionCategories     []string   `yaml:"pension_categories"`
	DebtServiceCategories []string   `yaml:"debt_service_categories"`
}

// Default returns the shipped model configuration. The numbers here are the
// published model constants; overriding them produces a new model version.
func Default() *Config {
	return &Config{
		ModelVersion: "v1.0",
		Weights: Weights{
			Liquidity:  0.25,
			Structural: 0.25,
			Pension:    0.30,
			Revenue:    0.10,
			Debt:       0.10,
		},
		Thresholds: Thresholds{
			FundBalanceRatio:   Threshold{Healthy: 0.20, Adequate: 0.15, Warning: 0.10, HigherIsBetter: true},
			DaysOfCash:         Threshold{Healthy: 90, Adequate: 60, Warning: 30, HigherIsBetter: true},
			OperatingBalance:   Threshold{Healthy: 0.05, Adequate: 0.0, Warning: -0.05, HigherIsBetter: true},
			DeficitTrend:       Threshold{Healthy: 1, Adequate: 2, Warning: 3, HigherIsBetter: false},
			PensionFunded:      Threshold{Healthy: 0.80, Adequate: 0.70, Warning: 0.60, HigherIsBetter: true},
			UALRatio:           Threshold{Healthy: 1.0, Adequate: 2.0, Warning: 3.0, HigherIsBetter: false},
			PensionBurden:      Threshold{Healthy: 0.10, Adequate: 0.15, Warning: 0.20, HigherIsBetter: false},
			RevenueVolatility:  Threshold{Healthy: 0.03, Adequate: 0.05, Warning: 0.10, HigherIsBetter: false},
			DebtServiceRatio:   Threshold{Healthy: 0.08, Adequate: 0.12, Warning: 0.15, HigherIsBetter: false},
			TrendWindowMinimum: 3,
		},
		Projection: Projection{
			BaseInflation:        0.025,
			BasePensionGrowth:    0.05,
			CAGRWindowYears:      5,
			FallbackReserveRatio: 0.15,
			MinimumReserveRatio:  0.10,
			PayrollEstimateRatio: 0.55,
			Scenarios: map[string]ScenarioMultipliers{
				"base":        {RevenueCAGR: 1.0, BaseInflation: 1.0, PensionGrowth: 1.0},
				"optimistic":  {RevenueCAGR: 1.25, BaseInflation: 0.8, PensionGrowth: 0.8},
				"pessimistic": {RevenueCAGR: 0.75, BaseInflation: 1.2, PensionGrowth: 1.4},
			},
		},
		PensionCategories: []string{
			"Pension Contributions",
			"CalPERS Contributions",
			"Retirement Costs",
			"OPEB",
		},
		DebtServiceCategories: []string{
			"Debt Service",
			"Bond Principal",
			"Bond Interest",
			"Lease Payments",
		},
	}
}

// Load reads a YAML file over the defaults, so a config file only needs to
// state what it changes. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would produce meaningless scores.
// It must pass before any engine is constructed.
func (c *Config) Validate() error {
	if c.ModelVersion == "" {
		return fmt.Errorf("config: model_version is required")
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("config: category weights sum to %.4f, want 1.0", sum)
	}
	for _, w := range []float64{c.Weights.Liquidity, c.Weights.Structural, c.Weights.Pension, c.Weights.Revenue, c.Weights.Debt} {
		if w < 0 {
			return fmt.Errorf("config: category weights must be non-negative")
		}
	}
	if c.Projection.CAGRWindowYears < 2 {
		return fmt.Errorf("config: cagr_window_years must be at least 2")
	}
	if c.Projection.FallbackReserveRatio <= 0 {
		return fmt.Errorf("config: fallback_reserve_ratio must be positive")
	}
	if len(c.Projection.Scenarios) == 0 {
		return fmt.Errorf("config: at least one scenario must be defined")
	}
	for name, m := range c.Projection.Scenarios {
		if m.RevenueCAGR <= 0 || m.BaseInflation <= 0 || m.PensionGrowth <= 0 {
			return fmt.Errorf("config: scenario %q multipliers must be positive", name)
		}
	}
	if len(c.PensionCategories) == 0 {
		return fmt.Errorf("config: pension_categories must not be empty")
	}
	return nil
}

// Scenario returns the multipliers for a named scenario, or an error for an
// unknown code.
func (c *Config) Scenario(code string) (ScenarioMultipliers, error) {
	m, ok := c.Projection.Scenarios[code]
	if !ok {
		return ScenarioMultipliers{}, fmt.Errorf("config: unknown scenario %q", code)
	}
	return m, nil
}
