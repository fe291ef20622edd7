package memory

import (
	"context"
	"testing"

	"budgetcalc/internal/export"
)

func TestWriteAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Write(ctx, export.Snapshot{CalculatorID: "calc-1", Name: "January", TotalIncome: 2000})
	if err != nil || ref != "mem:1" {
		t.Fatalf("Write() = %q, %v", ref, err)
	}

	snap, ok := s.Get("calc-1")
	if !ok || snap.Name != "January" {
		t.Fatalf("Get() = %+v, %v", snap, ok)
	}

	t.Run("write is an upsert", func(t *testing.T) {
		if _, err := s.Write(ctx, export.Snapshot{CalculatorID: "calc-1", Name: "January v2"}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
		if snap, _ := s.Get("calc-1"); snap.Name != "January v2" {
			t.Errorf("Name = %q, want January v2", snap.Name)
		}
	})

	t.Run("missing id rejected", func(t *testing.T) {
		if _, err := s.Write(ctx, export.Snapshot{}); err == nil {
			t.Error("expected error for snapshot without id")
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := s.Remove(ctx, "calc-1"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("Len() = %d, want 0", s.Len())
		}
		// Removing an absent row is fine
		if err := s.Remove(ctx, "calc-1"); err != nil {
			t.Errorf("Remove() of absent row error = %v", err)
		}
	})
}
