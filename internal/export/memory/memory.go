// Package memory is an in-process export backend, used in development and
// tests where no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetcalc/internal/export"
)

type Store struct {
	mu     sync.Mutex
	rows   map[string]export.Snapshot // keyed by calculator id
	writes int
}

func New() *Store {
	return &Store{rows: make(map[string]export.Snapshot)}
}

// Write upserts the snapshot and returns a synthetic row reference.
func (s *Store) Write(_ context.Context, snap export.Snapshot) (string, error) {
	if snap.CalculatorID == "" {
		return "", fmt.Errorf("snapshot without calculator id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[snap.CalculatorID] = snap
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

// Remove drops the snapshot row; removing an absent row is a no-op.
func (s *Store) Remove(_ context.Context, calculatorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, calculatorID)
	return nil
}

// Get returns the stored snapshot for a calculator, if any.
func (s *Store) Get(calculatorID string) (export.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.rows[calculatorID]
	return snap, ok
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
