// Package store persists what the engines produce and reads what they
// consume. The ledger is read-only from this side; writes happen in one
// transaction per logical unit so readers never observe a partial result.
package store

import (
	"context"
	"errors"

	"muniwatch/pkg/core/ledger"
	"muniwatch/pkg/core/risk"
	"muniwatch/pkg/core/scenario"
)

// ErrNotFound reports a missing fiscal year or scenario.
var ErrNotFound = errors.New("store: not found")

// ErrConflict reports a write that would leave two results for one key.
// Replace operations resolve this internally by delete-then-insert; it
// surfaces only when shapes genuinely mismatch.
var ErrConflict = errors.New("store: conflicting result already present")

// Ref identifies one published fiscal year.
type Ref struct {
	City string
	Year int
}

// LedgerStore reads fiscal-year snapshots.
type LedgerStore interface {
	// FiscalYear loads one snapshot, or ErrNotFound.
	FiscalYear(ctx context.Context, city string, year int) (*ledger.FiscalYear, error)
	// History loads up to maxYears snapshots strictly before year, oldest
	// first.
	History(ctx context.Context, city string, year int, maxYears int) ([]*ledger.FiscalYear, error)
	// List enumerates all published fiscal years.
	List(ctx context.Context) ([]Ref, error)
}

// RiskStore persists composite risk scores.
type RiskStore interface {
	// Replace atomically removes any prior score for the same
	// (fiscal year, model version) and inserts the new one with its
	// indicator rows.
	Replace(ctx context.Context, score *risk.Score) error
}

// ProjectionStore persists scenario runs.
type ProjectionStore interface {
	// ReplaceRun atomically supersedes the prior run for the same
	// (city, base year, scenario): all projection rows plus the cliff
	// analysis land together or not at all.
	ReplaceRun(ctx context.Context, run *scenario.Run) error
}
