// Package batch drives the engines across every published fiscal year.
// Per-item failures are caught, logged, and reported in the summary; a bad
// year never aborts the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"log"

	"muniwatch/pkg/core/config"
	"muniwatch/pkg/core/risk"
	"muniwatch/pkg/core/scenario"
	"muniwatch/pkg/core/store"
)

// Failure records one item that could not be processed.
type Failure struct {
	City     string
	Year     int
	Scenario scenario.Code
	Err      error
}

// Summary reports what a batch run accomplished.
type Summary struct {
	Processed int
	Failed    []Failure
}

// Runner wires the engines to the stores.
type Runner struct {
	cfg     *config.Config
	ledger  store.LedgerStore
	risks   store.RiskStore
	proj    store.ProjectionStore
	scoring *risk.Engine
	scen    *scenario.Engine
	log     *log.Logger
}

// NewRunner builds a batch runner. Engine construction validates the
// configuration, so an invalid config fails here, before any work.
func NewRunner(cfg *config.Config, ledgerStore store.LedgerStore, riskStore store.RiskStore, projStore store.ProjectionStore, logger *log.Logger) (*Runner, error) {
	scoring, err := risk.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	scen, err := scenario.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		ledger:  ledgerStore,
		risks:   riskStore,
		proj:    projStore,
		scoring: scoring,
		scen:    scen,
		log:     logger,
	}, nil
}

// ScoreAll computes and persists a risk score for every published fiscal
// year, continuing past per-year failures.
func (r *Runner) ScoreAll(ctx context.Context) (*Summary, error) {
	refs, err := r.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fiscal years: %w", err)
	}

	summary := &Summary{}
	for _, ref := range refs {
		if err := r.ScoreOne(ctx, ref.City, ref.Year); err != nil {
			r.log.Printf("[WARNING] score %s FY%d: %v", ref.City, ref.Year, err)
			summary.Failed = append(summary.Failed, Failure{City: ref.City, Year: ref.Year, Err: err})
			continue
		}
		summary.Processed++
	}
	return summary, nil
}

// ScoreOne computes and persists the risk score for a single fiscal year.
func (r *Runner) ScoreOne(ctx context.Context, city string, year int) error {
	score, err := r.Calculate(ctx, city, year)
	if err != nil {
		return err
	}
	return r.risks.Replace(ctx, score)
}

// Calculate computes a fiscal year's risk score without persisting it.
func (r *Runner) Calculate(ctx context.Context, city string, year int) (*risk.Score, error) {
	fy, err := r.ledger.FiscalYear(ctx, city, year)
	if err != nil {
		return nil, err
	}
	history, err := r.ledger.History(ctx, city, year, r.cfg.Projection.CAGRWindowYears)
	if err != nil {
		return nil, err
	}
	return r.scoring.CalculateScore(fy, history)
}

// ForecastAll runs every named scenario for every published fiscal year,
// continuing past per-run failures.
func (r *Runner) ForecastAll(ctx context.Context, codes []scenario.Code, yearsAhead int) (*Summary, error) {
	refs, err := r.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fiscal years: %w", err)
	}

	summary := &Summary{}
	for _, ref := range refs {
		for _, code := range codes {
			if _, err := r.ForecastOne(ctx, ref.City, ref.Year, code, yearsAhead); err != nil {
				r.log.Printf("[WARNING] forecast %s FY%d %s: %v", ref.City, ref.Year, code, err)
				summary.Failed = append(summary.Failed, Failure{City: ref.City, Year: ref.Year, Scenario: code, Err: err})
				continue
			}
			summary.Processed++
		}
	}
	return summary, nil
}

// ForecastOne runs one scenario from one base year and persists the run.
func (r *Runner) ForecastOne(ctx context.Context, city string, year int, code scenario.Code, yearsAhead int) (*scenario.Run, error) {
	fy, err := r.ledger.FiscalYear(ctx, city, year)
	if err != nil {
		return nil, err
	}
	history, err := r.ledger.History(ctx, city, year, r.cfg.Projection.CAGRWindowYears)
	if err != nil {
		return nil, err
	}
	run, err := r.scen.RunScenario(fy, history, yearsAhead, code)
	if err != nil {
		return nil, err
	}
	if err := r.proj.ReplaceRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}
