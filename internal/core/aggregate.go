package core

// Summary holds every derived value the budget views render. All functions in
// this file are pure: they read rows and settings and return numbers, nothing
// else.
type Summary struct {
	TotalIncome  float64
	TotalPlanned float64
	TotalActual  float64

	// Leftover is income minus total actual spending.
	Leftover float64

	SavingsTarget float64
	SosTarget     float64
	SavingsTotal  float64
	ActualTotal   float64

	// GoalPercent is progress of actual contributions toward the combined
	// savings target, always within [0,100].
	GoalPercent float64

	RemainingAfterSavings float64
}

// DetailPosition is the derived state of one detail row at its position in
// the sequence: the running total of amounts up to and including it, and what
// remains of the row's planned amount after it.
type DetailPosition struct {
	RunningTotal float64
	LeftForRow   float64
}

// Summarize recomputes the full summary from current rows and settings.
func Summarize(income []IncomeRow, spending []SpendingRow, set Settings) Summary {
	var s Summary
	for _, row := range income {
		s.TotalIncome += row.Amount
	}
	for _, row := range spending {
		s.TotalPlanned += row.Planned
		s.TotalActual += row.Actual
	}

	s.Leftover = s.TotalIncome - s.TotalActual
	s.SavingsTarget = s.Leftover * set.SavingsPercent
	s.SosTarget = s.Leftover * set.SosPercent
	s.SavingsTotal = s.SavingsTarget + s.SosTarget
	s.ActualTotal = set.ActualSavings + set.ActualSos
	s.GoalPercent = goalPercent(s.ActualTotal, s.SavingsTotal)
	s.RemainingAfterSavings = s.Leftover - s.ActualTotal
	return s
}

// goalPercent is clamped to [0,100] and defined as exactly 0 when the target
// is not positive, so a zero target never produces NaN or Inf.
func goalPercent(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	pct := actual / target * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ActualFromDetails returns the sum of a spending row's detail amounts. This
// is the only computation allowed to set Actual on an advanced row.
func ActualFromDetails(row SpendingRow) float64 {
	var total float64
	for _, d := range row.Details {
		total += d.Amount
	}
	return total
}

// DetailBreakdown returns the running total and left-for-row value at each
// detail position, in detail order.
func DetailBreakdown(row SpendingRow) []DetailPosition {
	out := make([]DetailPosition, len(row.Details))
	var running float64
	for i, d := range row.Details {
		running += d.Amount
		out[i] = DetailPosition{
			RunningTotal: running,
			LeftForRow:   row.Planned - running,
		}
	}
	return out
}
