package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"muniwatch/pkg/core/scenario"
)

// ProjectionRepo persists scenario runs: N projection rows plus exactly one
// cliff analysis per (city, base year, scenario).
//
// Schema assumption:
//
//	CREATE TABLE projection_scenarios (
//	  id UUID PRIMARY KEY,
//	  code TEXT NOT NULL UNIQUE
//	);
//	CREATE TABLE financial_projections (
//	  id UUID PRIMARY KEY,
//	  city TEXT NOT NULL,
//	  base_year INT NOT NULL,
//	  scenario_id UUID NOT NULL REFERENCES projection_scenarios(id),
//	  year INT NOT NULL,
//	  projected_revenue DOUBLE PRECISION NOT NULL,
//	  base_costs DOUBLE PRECISION NOT NULL,
//	  pension_costs DOUBLE PRECISION NOT NULL,
//	  projected_expenditure DOUBLE PRECISION NOT NULL,
//	  operating_surplus_deficit DOUBLE PRECISION NOT NULL,
//	  beginning_fund_balance DOUBLE PRECISION NOT NULL,
//	  ending_fund_balance DOUBLE PRECISION NOT NULL,
//	  fund_balance_ratio DOUBLE PRECISION NOT NULL,
//	  is_deficit BOOLEAN NOT NULL,
//	  is_depleting_reserves BOOLEAN NOT NULL,
//	  reserves_below_minimum BOOLEAN NOT NULL,
//	  is_fiscal_cliff BOOLEAN NOT NULL,
//	  UNIQUE (city, base_year, scenario_id, year)
//	);
//	CREATE TABLE fiscal_cliff_analyses (
//	  id UUID PRIMARY KEY,
//	  city TEXT NOT NULL,
//	  base_year INT NOT NULL,
//	  scenario_id UUID NOT NULL REFERENCES projection_scenarios(id),
//	  has_fiscal_cliff BOOLEAN NOT NULL,
//	  cliff_year INT,
//	  years_until_cliff INT,
//	  severity TEXT NOT NULL,
//	  revenue_increase_needed_percent DOUBLE PRECISION NOT NULL,
//	  expenditure_cut_needed_percent DOUBLE PRECISION NOT NULL,
//	  starting_fund_balance DOUBLE PRECISION NOT NULL,
//	  starting_balance_estimated BOOLEAN NOT NULL,
//	  UNIQUE (city, base_year, scenario_id)
//	);
type ProjectionRepo struct {
	pool *pgxpool.Pool
}

// NewProjectionRepo wraps a connection pool.
func NewProjectionRepo(pool *pgxpool.Pool) *ProjectionRepo {
	return &ProjectionRepo{pool: pool}
}

// ReplaceRun supersedes the prior run for the same key in one transaction:
// resolve (or lazily create) the scenario row, delete the old projections
// and cliff analysis, insert the new ones. Callers never observe N-1
// projection rows without a cliff analysis.
func (r *ProjectionRepo) ReplaceRun(ctx context.Context, run *scenario.Run) error {
	if run == nil || len(run.Projections) == 0 {
		return fmt.Errorf("scenario run with projections is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin scenario run tx: %w", err)
	}
	defer tx.Rollback(ctx)

	scenarioID, err := ensureScenario(ctx, tx, run.Scenario)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM financial_projections WHERE city = $1 AND base_year = $2 AND scenario_id = $3`,
		run.City, run.BaseYear, scenarioID,
	)
	if err != nil {
		return fmt.Errorf("clear prior projections: %w", err)
	}
	_, err = tx.Exec(ctx,
		`DELETE FROM fiscal_cliff_analyses WHERE city = $1 AND base_year = $2 AND scenario_id = $3`,
		run.City, run.BaseYear, scenarioID,
	)
	if err != nil {
		return fmt.Errorf("clear prior cliff analysis: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range run.Projections {
		batch.Queue(
			`INSERT INTO financial_projections (
			   id, city, base_year, scenario_id, year,
			   projected_revenue, base_costs, pension_costs, projected_expenditure,
			   operating_surplus_deficit, beginning_fund_balance, ending_fund_balance,
			   fund_balance_ratio, is_deficit, is_depleting_reserves,
			   reserves_below_minimum, is_fiscal_cliff
			 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			p.ID, p.City, p.BaseYear, scenarioID, p.Year,
			p.ProjectedRevenue, p.BaseCosts, p.PensionCosts, p.ProjectedExpenditure,
			p.OperatingSurplusDeficit, p.BeginningFundBalance, p.EndingFundBalance,
			p.FundBalanceRatio, p.IsDeficit, p.IsDepletingReserves,
			p.ReservesBelowMinimum, p.IsFiscalCliff,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert projections: %w", err)
	}

	cliff := run.Cliff
	var cliffYear, yearsUntil *int
	if cliff.HasFiscalCliff {
		cliffYear = &cliff.CliffYear
		yearsUntil = &cliff.YearsUntilCliff
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO fiscal_cliff_analyses (
		   id, city, base_year, scenario_id, has_fiscal_cliff,
		   cliff_year, years_until_cliff, severity,
		   revenue_increase_needed_percent, expenditure_cut_needed_percent,
		   starting_fund_balance, starting_balance_estimated
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		cliff.ID, cliff.City, cliff.BaseYear, scenarioID, cliff.HasFiscalCliff,
		cliffYear, yearsUntil, string(cliff.Severity),
		cliff.RevenueIncreaseNeededPercent, cliff.ExpenditureCutNeededPercent,
		cliff.StartingFundBalance, cliff.StartingBalanceEstimated,
	)
	if err != nil {
		return fmt.Errorf("insert cliff analysis: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit scenario run: %w", err)
	}
	return nil
}

// ensureScenario resolves the scenario reference row, creating it lazily on
// first use.
func ensureScenario(ctx context.Context, tx pgx.Tx, code scenario.Code) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO projection_scenarios (id, code)
		 VALUES ($1, $2)
		 ON CONFLICT (code) DO UPDATE SET code = EXCLUDED.code
		 RETURNING id`,
		uuid.New(), string(code),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure scenario %q: %w", code, err)
	}
	return id, nil
}

var _ ProjectionStore = (*ProjectionRepo)(nil)
