package core

import (
	"math"
	"testing"
)

func TestSummarizeExample(t *testing.T) {
	income := []IncomeRow{{Source: "Job", Amount: 2000}}
	spending := []SpendingRow{
		{Category: "Rent", Planned: 800, Actual: 800, Type: Simple, Details: []DetailRow{}},
	}
	set := Settings{SavingsPercent: 0.10, SosPercent: 0.05}

	s := Summarize(income, spending, set)

	if s.TotalIncome != 2000 {
		t.Errorf("TotalIncome = %v, want 2000", s.TotalIncome)
	}
	if s.Leftover != 1200 {
		t.Errorf("Leftover = %v, want 1200", s.Leftover)
	}
	if s.SavingsTarget != 120 {
		t.Errorf("SavingsTarget = %v, want 120", s.SavingsTarget)
	}
	if s.SosTarget != 60 {
		t.Errorf("SosTarget = %v, want 60", s.SosTarget)
	}
	if s.SavingsTotal != 180 {
		t.Errorf("SavingsTotal = %v, want 180", s.SavingsTotal)
	}
}

func TestSummarizeTotalIncome(t *testing.T) {
	tests := []struct {
		name string
		rows []IncomeRow
		want float64
	}{
		{"empty", nil, 0},
		{"zero rows", []IncomeRow{{Amount: 0}, {Amount: 0}}, 0},
		{"mixed", []IncomeRow{{Amount: 1500.50}, {Amount: 0}, {Amount: 249.50}}, 1750},
		{"negative adjustment", []IncomeRow{{Amount: 100}, {Amount: -20}}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.rows, nil, Settings{})
			if s.TotalIncome != tt.want {
				t.Errorf("TotalIncome = %v, want %v", s.TotalIncome, tt.want)
			}
		})
	}
}

func TestGoalPercentBounds(t *testing.T) {
	tests := []struct {
		name          string
		actualSavings float64
		actualSos     float64
		savingsPct    float64
		income        float64
		want          float64
	}{
		{"zero target with contributions", 500, 100, 0, 0, 0},
		{"no contributions", 0, 0, 0.10, 1000, 0},
		{"halfway", 50, 0, 0.10, 1000, 50},
		{"capped at 100", 5000, 0, 0.10, 1000, 100},
		{"exactly met", 100, 0, 0.10, 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := []IncomeRow{{Amount: tt.income}}
			set := Settings{
				SavingsPercent: tt.savingsPct,
				ActualSavings:  tt.actualSavings,
				ActualSos:      tt.actualSos,
			}
			s := Summarize(income, nil, set)
			if s.GoalPercent != tt.want {
				t.Errorf("GoalPercent = %v, want %v", s.GoalPercent, tt.want)
			}
			if s.GoalPercent < 0 || s.GoalPercent > 100 {
				t.Errorf("GoalPercent = %v outside [0,100]", s.GoalPercent)
			}
			if math.IsNaN(s.GoalPercent) || math.IsInf(s.GoalPercent, 0) {
				t.Errorf("GoalPercent = %v, must be finite", s.GoalPercent)
			}
		})
	}
}

func TestActualFromDetails(t *testing.T) {
	row := SpendingRow{
		Type:    Advanced,
		Planned: 100,
		Actual:  999, // stale manual value must not matter
		Details: []DetailRow{{Amount: 50}, {Amount: 30}},
	}
	if got := ActualFromDetails(row); got != 80 {
		t.Fatalf("ActualFromDetails = %v, want 80", got)
	}
	// Recompute is idempotent.
	row.Actual = ActualFromDetails(row)
	if got := ActualFromDetails(row); got != row.Actual {
		t.Fatalf("second recompute = %v, want %v", got, row.Actual)
	}
}

func TestDetailBreakdown(t *testing.T) {
	row := SpendingRow{
		Planned: 200,
		Details: []DetailRow{{Amount: 50}, {Amount: 30}, {Amount: 120}},
	}
	got := DetailBreakdown(row)
	want := []DetailPosition{
		{RunningTotal: 50, LeftForRow: 150},
		{RunningTotal: 80, LeftForRow: 120},
		{RunningTotal: 200, LeftForRow: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRemainingAfterSavings(t *testing.T) {
	income := []IncomeRow{{Amount: 1000}}
	spending := []SpendingRow{{Planned: 400, Actual: 300, Type: Simple}}
	set := Settings{SavingsPercent: 0.10, ActualSavings: 50, ActualSos: 20}
	s := Summarize(income, spending, set)
	if s.Leftover != 700 {
		t.Fatalf("Leftover = %v, want 700", s.Leftover)
	}
	if s.RemainingAfterSavings != 630 {
		t.Fatalf("RemainingAfterSavings = %v, want 630", s.RemainingAfterSavings)
	}
}
