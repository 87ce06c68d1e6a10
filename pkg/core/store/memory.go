package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"muniwatch/pkg/core/ledger"
	"muniwatch/pkg/core/risk"
	"muniwatch/pkg/core/scenario"
)

// InMemory implements all three store interfaces against process memory.
// Used by unit tests and by the CLI's dry-run mode, where results are
// computed and printed without touching PostgreSQL.
type InMemory struct {
	mu sync.RWMutex

	years  map[Ref]*ledger.FiscalYear
	scores map[scoreKey]*risk.Score
	runs   map[runKey]*scenario.Run
}

type scoreKey struct {
	city         string
	year         int
	modelVersion string
}

type runKey struct {
	city     string
	baseYear int
	scenario scenario.Code
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		years:  make(map[Ref]*ledger.FiscalYear),
		scores: make(map[scoreKey]*risk.Score),
		runs:   make(map[runKey]*scenario.Run),
	}
}

// Seed registers a fiscal year snapshot.
func (s *InMemory) Seed(fy *ledger.FiscalYear) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[Ref{City: fy.City, Year: fy.Year}] = fy
}

// FiscalYear returns the seeded snapshot, or ErrNotFound.
func (s *InMemory) FiscalYear(_ context.Context, city string, year int) (*ledger.FiscalYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fy, ok := s.years[Ref{City: city, Year: year}]
	if !ok {
		return nil, fmt.Errorf("fiscal year %s FY%d: %w", city, year, ErrNotFound)
	}
	return fy, nil
}

// History returns up to maxYears snapshots strictly before year, oldest
// first.
func (s *InMemory) History(_ context.Context, city string, year int, maxYears int) ([]*ledger.FiscalYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []*ledger.FiscalYear
	for ref, fy := range s.years {
		if ref.City == city && ref.Year < year {
			history = append(history, fy)
		}
	}
	history = ledger.SortYearsAscending(history)
	if len(history) > maxYears {
		history = history[len(history)-maxYears:]
	}
	return history, nil
}

// List enumerates seeded fiscal years in city/year order.
func (s *InMemory) List(_ context.Context) ([]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]Ref, 0, len(s.years))
	for ref := range s.years {
		refs = append(refs, ref)
	}
	sortRefs(refs)
	return refs, nil
}

// Replace stores the score, superseding any prior one for the same key.
func (s *InMemory) Replace(_ context.Context, score *risk.Score) error {
	if score == nil {
		return fmt.Errorf("risk score is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[scoreKey{city: score.City, year: score.Year, modelVersion: score.ModelVersion}] = score
	return nil
}

// Score returns the stored score for a key, if present.
func (s *InMemory) Score(city string, year int, modelVersion string) (*risk.Score, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[scoreKey{city: city, year: year, modelVersion: modelVersion}]
	return score, ok
}

// ReplaceRun stores the run, superseding any prior one for the same key.
func (s *InMemory) ReplaceRun(_ context.Context, run *scenario.Run) error {
	if run == nil || len(run.Projections) == 0 {
		return fmt.Errorf("scenario run with projections is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runKey{city: run.City, baseYear: run.BaseYear, scenario: run.Scenario}] = run
	return nil
}

// Run returns the stored scenario run for a key, if present.
func (s *InMemory) Run(city string, baseYear int, code scenario.Code) (*scenario.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runKey{city: city, baseYear: baseYear, scenario: code}]
	return run, ok
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].City != refs[j].City {
			return refs[i].City < refs[j].City
		}
		return refs[i].Year < refs[j].Year
	})
}

var (
	_ LedgerStore     = (*InMemory)(nil)
	_ RiskStore       = (*InMemory)(nil)
	_ ProjectionStore = (*InMemory)(nil)
)
