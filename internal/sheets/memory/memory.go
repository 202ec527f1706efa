package memory

import (
	"context"
	"sync"

	ports "homebudget/internal/sheets"
)

// Store is an in-process YearExporter. It keeps the rows the Google
// exporter would write, keyed by sheet name.
type Store struct {
	mu      sync.Mutex
	sheets  map[string][][]any
	exports int
	last    uint64
}

var _ ports.YearExporter = (*Store)(nil)

func New() *Store {
	return &Store{sheets: map[string][][]any{}}
}

// ExportYear replaces both sheets of the report year.
func (s *Store) ExportYear(ctx context.Context, r ports.YearReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	movements := ports.MovementRows(r)
	summary := ports.SummaryRows(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[ports.SheetName(ports.MovementsSheet, r.Year)] = movements
	s.sheets[ports.SheetName(ports.SummarySheet, r.Year)] = summary
	s.exports++
	s.last = r.Revision
	return nil
}

// Sheet returns a copy of the rows last written to name.
func (s *Store) Sheet(name string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[name]
	if !ok {
		return nil, false
	}
	return append([][]any(nil), rows...), true
}

// Exports reports how many exports ran and the revision of the last one.
func (s *Store) Exports() (int, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports, s.last
}
