package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"muniwatch/pkg/core/indicator"
	"muniwatch/pkg/core/risk"
)

// RiskRepo persists composite risk scores and their indicator children.
//
// Schema assumption:
//
//	CREATE TABLE risk_scores (
//	  id UUID PRIMARY KEY,
//	  fiscal_year_id UUID NOT NULL REFERENCES fiscal_years(id),
//	  model_version TEXT NOT NULL,
//	  liquidity_score DOUBLE PRECISION,
//	  structural_score DOUBLE PRECISION,
//	  pension_score DOUBLE PRECISION,
//	  revenue_score DOUBLE PRECISION,
//	  debt_score DOUBLE PRECISION,
//	  overall_score DOUBLE PRECISION NOT NULL,
//	  risk_level TEXT NOT NULL,
//	  data_completeness_percent DOUBLE PRECISION NOT NULL,
//	  calculated_at TIMESTAMPTZ NOT NULL,
//	  UNIQUE (fiscal_year_id, model_version)
//	);
//	CREATE TABLE risk_indicator_scores (
//	  id UUID PRIMARY KEY,
//	  risk_score_id UUID NOT NULL REFERENCES risk_scores(id) ON DELETE CASCADE,
//	  code TEXT NOT NULL,
//	  category TEXT NOT NULL,
//	  available BOOLEAN NOT NULL,
//	  raw_value DOUBLE PRECISION,
//	  score INT,
//	  threshold_label TEXT,
//	  reason TEXT
//	);
type RiskRepo struct {
	pool *pgxpool.Pool
}

// NewRiskRepo wraps a connection pool.
func NewRiskRepo(pool *pgxpool.Pool) *RiskRepo {
	return &RiskRepo{pool: pool}
}

// Replace deletes the prior score for (fiscal year, model version) and
// inserts the new one, all inside a single transaction. Readers never see
// two scores for the same key, and never a score without its indicators.
func (r *RiskRepo) Replace(ctx context.Context, score *risk.Score) error {
	if score == nil {
		return fmt.Errorf("risk score is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin risk score tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM risk_scores WHERE fiscal_year_id = $1 AND model_version = $2`,
		score.FiscalYearID, score.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("clear prior risk score: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO risk_scores (
		   id, fiscal_year_id, model_version,
		   liquidity_score, structural_score, pension_score, revenue_score, debt_score,
		   overall_score, risk_level, data_completeness_percent, calculated_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		score.ID, score.FiscalYearID, score.ModelVersion,
		score.CategoryScores[indicator.CategoryLiquidity],
		score.CategoryScores[indicator.CategoryStructural],
		score.CategoryScores[indicator.CategoryPension],
		score.CategoryScores[indicator.CategoryRevenue],
		score.CategoryScores[indicator.CategoryDebt],
		score.OverallScore, string(score.RiskLevel),
		score.DataCompletenessPercent, score.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert risk score: %w", err)
	}

	batch := &pgx.Batch{}
	for _, ind := range score.Indicators {
		batch.Queue(
			`INSERT INTO risk_indicator_scores (
			   id, risk_score_id, code, category, available,
			   raw_value, score, threshold_label, reason
			 ) VALUES (gen_random_uuid(),$1,$2,$3,$4,$5,$6,$7,$8)`,
			score.ID, string(ind.Code), string(ind.Category), ind.Available,
			ind.Value, ind.Score, string(ind.Band), ind.Reason,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert indicator scores: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit risk score: %w", err)
	}
	return nil
}

var _ RiskStore = (*RiskRepo)(nil)
