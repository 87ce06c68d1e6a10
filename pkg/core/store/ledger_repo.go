package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"muniwatch/pkg/core/ledger"
)

// LedgerRepo reads fiscal-year snapshots from PostgreSQL. The ledger tables
// are append-only from the transcription side and read-only from here.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE fiscal_years (
//	  id   UUID PRIMARY KEY,
//	  city TEXT NOT NULL,
//	  year INT  NOT NULL,
//	  UNIQUE (city, year)
//	);
//	CREATE TABLE revenues (
//	  fiscal_year_id UUID REFERENCES fiscal_years(id),
//	  category TEXT, fund_type TEXT, actual_amount NUMERIC
//	);
//	CREATE TABLE expenditures (LIKE revenues INCLUDING ALL);
//	CREATE TABLE fund_balances (
//	  fiscal_year_id UUID REFERENCES fiscal_years(id),
//	  fund_type TEXT, total_fund_balance NUMERIC
//	);
//	CREATE TABLE pension_plans (
//	  fiscal_year_id UUID REFERENCES fiscal_years(id),
//	  plan_name TEXT,
//	  total_pension_liability NUMERIC, fiduciary_net_position NUMERIC,
//	  net_pension_liability NUMERIC, funded_ratio DOUBLE PRECISION,
//	  total_employer_contribution NUMERIC, covered_payroll NUMERIC
//	);
//	CREATE TABLE pension_schedules (
//	  fiscal_year_id UUID REFERENCES fiscal_years(id),
//	  fiscal_year_offset INT,
//	  projected_employer_contribution NUMERIC,
//	  UNIQUE (fiscal_year_id, fiscal_year_offset)
//	);
type LedgerRepo struct {
	pool *pgxpool.Pool
}

// NewLedgerRepo wraps a connection pool.
func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// FiscalYear loads one complete snapshot.
func (r *LedgerRepo) FiscalYear(ctx context.Context, city string, year int) (*ledger.FiscalYear, error) {
	fy := &ledger.FiscalYear{City: city, Year: year}

	err := r.pool.QueryRow(ctx,
		`SELECT id FROM fiscal_years WHERE city = $1 AND year = $2`,
		city, year,
	).Scan(&fy.ID)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("fiscal year %s FY%d: %w", city, year, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load fiscal year %s FY%d: %w", city, year, err)
	}

	if err := r.loadRows(ctx, fy); err != nil {
		return nil, err
	}
	return fy, nil
}

// History loads up to maxYears complete snapshots strictly before the given
// year, oldest first.
func (r *LedgerRepo) History(ctx context.Context, city string, year int, maxYears int) ([]*ledger.FiscalYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, year FROM fiscal_years
		 WHERE city = $1 AND year < $2
		 ORDER BY year DESC LIMIT $3`,
		city, year, maxYears,
	)
	if err != nil {
		return nil, fmt.Errorf("load history %s before FY%d: %w", city, year, err)
	}
	defer rows.Close()

	var history []*ledger.FiscalYear
	for rows.Next() {
		fy := &ledger.FiscalYear{City: city}
		if err := rows.Scan(&fy.ID, &fy.Year); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		history = append(history, fy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	for _, fy := range history {
		if err := r.loadRows(ctx, fy); err != nil {
			return nil, err
		}
	}
	return ledger.SortYearsAscending(history), nil
}

// List enumerates every published fiscal year.
func (r *LedgerRepo) List(ctx context.Context) ([]Ref, error) {
	rows, err := r.pool.Query(ctx, `SELECT city, year FROM fiscal_years ORDER BY city, year`)
	if err != nil {
		return nil, fmt.Errorf("list fiscal years: %w", err)
	}
	defer rows.Close()

	var refs []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.City, &ref.Year); err != nil {
			return nil, fmt.Errorf("scan fiscal year ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// loadRows fills the snapshot's row collections. Amounts are selected as
// text and parsed into decimals so NUMERIC precision survives the Go side.
func (r *LedgerRepo) loadRows(ctx context.Context, fy *ledger.FiscalYear) error {
	revRows, err := r.pool.Query(ctx,
		`SELECT category, fund_type, actual_amount::text FROM revenues WHERE fiscal_year_id = $1`,
		fy.ID,
	)
	if err != nil {
		return fmt.Errorf("load revenues FY%d: %w", fy.Year, err)
	}
	defer revRows.Close()
	for revRows.Next() {
		var rev ledger.Revenue
		var amount string
		if err := revRows.Scan(&rev.Category, &rev.FundType, &amount); err != nil {
			return fmt.Errorf("scan revenue row: %w", err)
		}
		if rev.ActualAmount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse revenue amount %q: %w", amount, err)
		}
		fy.Revenues = append(fy.Revenues, rev)
	}
	if err := revRows.Err(); err != nil {
		return fmt.Errorf("iterate revenues: %w", err)
	}

	expRows, err := r.pool.Query(ctx,
		`SELECT category, fund_type, actual_amount::text FROM expenditures WHERE fiscal_year_id = $1`,
		fy.ID,
	)
	if err != nil {
		return fmt.Errorf("load expenditures FY%d: %w", fy.Year, err)
	}
	defer expRows.Close()
	for expRows.Next() {
		var exp ledger.Expenditure
		var amount string
		if err := expRows.Scan(&exp.Category, &exp.FundType, &amount); err != nil {
			return fmt.Errorf("scan expenditure row: %w", err)
		}
		if exp.ActualAmount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse expenditure amount %q: %w", amount, err)
		}
		fy.Expenditures = append(fy.Expenditures, exp)
	}
	if err := expRows.Err(); err != nil {
		return fmt.Errorf("iterate expenditures: %w", err)
	}

	fbRows, err := r.pool.Query(ctx,
		`SELECT fund_type, total_fund_balance::text FROM fund_balances WHERE fiscal_year_id = $1`,
		fy.ID,
	)
	if err != nil {
		return fmt.Errorf("load fund balances FY%d: %w", fy.Year, err)
	}
	defer fbRows.Close()
	for fbRows.Next() {
		var fb ledger.FundBalance
		var amount string
		if err := fbRows.Scan(&fb.FundType, &amount); err != nil {
			return fmt.Errorf("scan fund balance row: %w", err)
		}
		if fb.TotalFundBalance, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse fund balance %q: %w", amount, err)
		}
		fy.FundBalances = append(fy.FundBalances, fb)
	}
	if err := fbRows.Err(); err != nil {
		return fmt.Errorf("iterate fund balances: %w", err)
	}

	if err := r.loadPensions(ctx, fy); err != nil {
		return err
	}
	return nil
}

func (r *LedgerRepo) loadPensions(ctx context.Context, fy *ledger.FiscalYear) error {
	planRows, err := r.pool.Query(ctx,
		`SELECT plan_name,
		        total_pension_liability::text, fiduciary_net_position::text,
		        net_pension_liability::text, funded_ratio,
		        total_employer_contribution::text, covered_payroll::text
		 FROM pension_plans WHERE fiscal_year_id = $1`,
		fy.ID,
	)
	if err != nil {
		return fmt.Errorf("load pension plans FY%d: %w", fy.Year, err)
	}
	defer planRows.Close()
	for planRows.Next() {
		var p ledger.PensionPlan
		var tpl, fnp, npl, contrib, payroll string
		if err := planRows.Scan(&p.PlanName, &tpl, &fnp, &npl, &p.FundedRatio, &contrib, &payroll); err != nil {
			return fmt.Errorf("scan pension plan row: %w", err)
		}
		if p.TotalPensionLiability, err = decimal.NewFromString(tpl); err != nil {
			return fmt.Errorf("parse pension liability %q: %w", tpl, err)
		}
		if p.FiduciaryNetPosition, err = decimal.NewFromString(fnp); err != nil {
			return fmt.Errorf("parse fiduciary position %q: %w", fnp, err)
		}
		if p.NetPensionLiability, err = decimal.NewFromString(npl); err != nil {
			return fmt.Errorf("parse net pension liability %q: %w", npl, err)
		}
		if p.TotalEmployerContribution, err = decimal.NewFromString(contrib); err != nil {
			return fmt.Errorf("parse employer contribution %q: %w", contrib, err)
		}
		if p.CoveredPayroll, err = decimal.NewFromString(payroll); err != nil {
			return fmt.Errorf("parse covered payroll %q: %w", payroll, err)
		}
		fy.PensionPlans = append(fy.PensionPlans, p)
	}
	if err := planRows.Err(); err != nil {
		return fmt.Errorf("iterate pension plans: %w", err)
	}

	schedRows, err := r.pool.Query(ctx,
		`SELECT fiscal_year_offset, projected_employer_contribution::text
		 FROM pension_schedules WHERE fiscal_year_id = $1`,
		fy.ID,
	)
	if err != nil {
		return fmt.Errorf("load pension schedule FY%d: %w", fy.Year, err)
	}
	defer schedRows.Close()
	for schedRows.Next() {
		var offset int
		var amount string
		if err := schedRows.Scan(&offset, &amount); err != nil {
			return fmt.Errorf("scan pension schedule row: %w", err)
		}
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("parse scheduled contribution %q: %w", amount, err)
		}
		if fy.PensionSchedule == nil {
			fy.PensionSchedule = make(map[int]decimal.Decimal)
		}
		fy.PensionSchedule[offset] = dec
	}
	return schedRows.Err()
}

var _ LedgerStore = (*LedgerRepo)(nil)
