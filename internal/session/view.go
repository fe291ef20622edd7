package session

import "budgetcalc/internal/core"

// View is the full derived state of a session. It is rebuilt from scratch
// after every mutation; nothing in it is incremental.
type View struct {
	Name  string `json:"name"`
	Saved bool   `json:"saved"`

	Currency string `json:"currency"`

	IncomeRows   []IncomeLine   `json:"incomeRows"`
	SpendingRows []SpendingLine `json:"spendingRows"`

	Summary SummaryView `json:"summary"`

	SpendingChart ChartDataset            `json:"spendingChart"`
	SavingsChart  ChartDataset            `json:"savingsChart"`
	DetailCharts  map[string]ChartDataset `json:"detailCharts"`
}

// IncomeLine is one rendered income table row.
type IncomeLine struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

// SpendingLine is one rendered spending table row. Left is planned minus
// actual for the row.
type SpendingLine struct {
	ID        string         `json:"id"`
	Category  string         `json:"category"`
	Planned   float64        `json:"planned"`
	Actual    float64        `json:"actual"`
	Left      float64        `json:"left"`
	Type      core.SpendType `json:"type"`
	Formatted struct {
		Planned string `json:"planned"`
		Actual  string `json:"actual"`
		Left    string `json:"left"`
	} `json:"formatted"`
	Details []DetailLine `json:"details"`
}

// DetailLine is one rendered detail row with its position-derived values.
type DetailLine struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Where        string  `json:"where"`
	Amount       float64 `json:"amount"`
	RunningTotal float64 `json:"runningTotal"`
	LeftForRow   float64 `json:"leftForRow"`
}

// SummaryView carries the aggregate numbers plus their formatted renderings.
type SummaryView struct {
	core.Summary

	FormattedTotalIncome  string `json:"formattedTotalIncome"`
	FormattedTotalActual  string `json:"formattedTotalActual"`
	FormattedLeftover     string `json:"formattedLeftover"`
	FormattedSavingsTotal string `json:"formattedSavingsTotal"`
	FormattedRemaining    string `json:"formattedRemaining"`
}

// ChartDataset is a label/series pair for chart rendering.
type ChartDataset struct {
	Labels []string    `json:"labels"`
	Series [][]float64 `json:"series"`
}

// View rebuilds the derived view from the current rows and settings.
func (s *Session) View() View {
	set := s.doc.Settings(s.actualSavings, s.actualSos)
	summary := core.Summarize(s.doc.IncomeRows, s.doc.SpendingRows, set)
	fmtr := core.NewFormatter(s.doc.Currency)

	v := View{
		Name:         s.name,
		Saved:        !s.dirty && s.boundID != "",
		Currency:     s.doc.Currency,
		IncomeRows:   make([]IncomeLine, len(s.doc.IncomeRows)),
		SpendingRows: make([]SpendingLine, len(s.doc.SpendingRows)),
		DetailCharts: make(map[string]ChartDataset),
	}

	for i, row := range s.doc.IncomeRows {
		v.IncomeRows[i] = IncomeLine{
			ID:        row.ID,
			Source:    row.Source,
			Amount:    row.Amount,
			Formatted: fmtr.Format(row.Amount),
		}
	}

	spendingLabels := make([]string, len(s.doc.SpendingRows))
	plannedSeries := make([]float64, len(s.doc.SpendingRows))
	actualSeries := make([]float64, len(s.doc.SpendingRows))

	for i, row := range s.doc.SpendingRows {
		line := SpendingLine{
			ID:       row.ID,
			Category: row.Category,
			Planned:  row.Planned,
			Actual:   row.Actual,
			Left:     row.Planned - row.Actual,
			Type:     row.Type,
			Details:  make([]DetailLine, len(row.Details)),
		}
		line.Formatted.Planned = fmtr.Format(line.Planned)
		line.Formatted.Actual = fmtr.Format(line.Actual)
		line.Formatted.Left = fmtr.Format(line.Left)

		positions := core.DetailBreakdown(row)
		for j, det := range row.Details {
			line.Details[j] = DetailLine{
				ID:           det.ID,
				Date:         det.Date,
				Where:        det.Where,
				Amount:       det.Amount,
				RunningTotal: positions[j].RunningTotal,
				LeftForRow:   positions[j].LeftForRow,
			}
		}
		v.SpendingRows[i] = line

		spendingLabels[i] = row.Category
		plannedSeries[i] = row.Planned
		actualSeries[i] = row.Actual

		if row.Type == core.Advanced && len(row.Details) > 0 {
			labels := make([]string, len(row.Details))
			running := make([]float64, len(row.Details))
			for j, det := range row.Details {
				labels[j] = det.Date
				running[j] = positions[j].RunningTotal
			}
			v.DetailCharts[row.ID] = ChartDataset{
				Labels: labels,
				Series: [][]float64{running},
			}
		}
	}

	v.SpendingChart = ChartDataset{
		Labels: spendingLabels,
		Series: [][]float64{plannedSeries, actualSeries},
	}
	v.SavingsChart = ChartDataset{
		Labels: []string{"Savings", "SOS Fund", "Total"},
		Series: [][]float64{
			{summary.SavingsTarget, summary.SosTarget, summary.SavingsTotal},
			{set.ActualSavings, set.ActualSos, summary.ActualTotal},
		},
	}

	v.Summary = SummaryView{
		Summary:               summary,
		FormattedTotalIncome:  fmtr.Format(summary.TotalIncome),
		FormattedTotalActual:  fmtr.Format(summary.TotalActual),
		FormattedLeftover:     fmtr.Format(summary.Leftover),
		FormattedSavingsTotal: fmtr.Format(summary.SavingsTotal),
		FormattedRemaining:    fmtr.Format(summary.RemainingAfterSavings),
	}

	return v
}
