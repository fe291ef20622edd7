package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	// Simple spending rows carry a user-entered actual amount.
	Simple SpendType = "simple"
	// Advanced spending rows derive their actual amount from detail rows.
	Advanced SpendType = "advanced"
)

type (
	SpendType string

	// IncomeRow is one source of monthly income.
	IncomeRow struct {
		ID     string  `json:"id,omitempty"`
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
	}

	// DetailRow is a single dated sub-expense under an advanced spending row.
	// It belongs to exactly one spending row.
	DetailRow struct {
		ID     string  `json:"id,omitempty"`
		Date   string  `json:"date"`
		Where  string  `json:"where"`
		Amount float64 `json:"amount"`
	}

	// SpendingRow is one budget category with a planned amount and an actual
	// amount. For advanced rows Actual must equal the sum of Details; it is
	// recomputed by ActualFromDetails and never edited independently.
	SpendingRow struct {
		ID       string      `json:"id,omitempty"`
		Category string      `json:"category"`
		Planned  float64     `json:"planned"`
		Actual   float64     `json:"actual"`
		Type     SpendType   `json:"type"`
		Details  []DetailRow `json:"details"`
	}

	// Document is the persisted calculator payload: the `data` field of a
	// calculator record. Savings percentages are stored as fractions in [0,1].
	Document struct {
		IncomeRows     []IncomeRow   `json:"incomeRows"`
		SpendingRows   []SpendingRow `json:"spendingRows"`
		Currency       string        `json:"currency"`
		SavingsPercent float64       `json:"savingsPercent"`
		SosPercent     float64       `json:"sosPercent"`
	}

	// Settings are the aggregation inputs for one edit session: the document
	// percentages plus the actual savings contributions, which are entered in
	// the session and never persisted.
	Settings struct {
		Currency       string
		SavingsPercent float64
		SosPercent     float64
		ActualSavings  float64
		ActualSos      float64
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPercent   = errors.New("percent must be a fraction between 0 and 1")
	ErrInvalidSpendType = errors.New("invalid spending type")
	ErrBlankName        = errors.New("calculator name cannot be blank")
)

func (t SpendType) Valid() bool {
	return t == Simple || t == Advanced
}

func (r SpendingRow) Validate() error {
	if !r.Type.Valid() {
		return ErrInvalidSpendType
	}
	return nil
}

func (d Document) Validate() error {
	for _, row := range d.SpendingRows {
		if err := row.Validate(); err != nil {
			return err
		}
	}
	if d.SavingsPercent < 0 || d.SavingsPercent > 1 {
		return ErrInvalidPercent
	}
	if d.SosPercent < 0 || d.SosPercent > 1 {
		return ErrInvalidPercent
	}
	return nil
}

// ValidateName reports whether a calculator name is usable: non-blank after
// trimming.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	return nil
}

// NewRowID returns a fresh stable row identifier. Rows keep their identity
// across inserts and removals, so views never rebind by position.
func NewRowID() string {
	return uuid.New().String()
}

// Normalize assigns missing row ids and defaults blank spend types to simple.
// Documents loaded from older saves may carry neither.
func (d *Document) Normalize() {
	for i := range d.IncomeRows {
		if d.IncomeRows[i].ID == "" {
			d.IncomeRows[i].ID = NewRowID()
		}
	}
	for i := range d.SpendingRows {
		row := &d.SpendingRows[i]
		if row.ID == "" {
			row.ID = NewRowID()
		}
		if row.Type == "" {
			row.Type = Simple
		}
		if row.Details == nil {
			row.Details = []DetailRow{}
		}
		for j := range row.Details {
			if row.Details[j].ID == "" {
				row.Details[j].ID = NewRowID()
			}
		}
	}
	if d.IncomeRows == nil {
		d.IncomeRows = []IncomeRow{}
	}
	if d.SpendingRows == nil {
		d.SpendingRows = []SpendingRow{}
	}
}

// Clone returns a deep copy of the document with fresh row ids. Used when
// duplicating a calculator from a template.
func (d Document) Clone() Document {
	out := Document{
		Currency:       d.Currency,
		SavingsPercent: d.SavingsPercent,
		SosPercent:     d.SosPercent,
		IncomeRows:     make([]IncomeRow, len(d.IncomeRows)),
		SpendingRows:   make([]SpendingRow, len(d.SpendingRows)),
	}
	for i, row := range d.IncomeRows {
		row.ID = NewRowID()
		out.IncomeRows[i] = row
	}
	for i, row := range d.SpendingRows {
		details := make([]DetailRow, len(row.Details))
		for j, det := range row.Details {
			det.ID = NewRowID()
			details[j] = det
		}
		row.ID = NewRowID()
		row.Details = details
		out.SpendingRows[i] = row
	}
	return out
}

// Settings builds session aggregation settings from the document values.
func (d Document) Settings(actualSavings, actualSos float64) Settings {
	return Settings{
		Currency:       d.Currency,
		SavingsPercent: d.SavingsPercent,
		SosPercent:     d.SosPercent,
		ActualSavings:  actualSavings,
		ActualSos:      actualSos,
	}
}
