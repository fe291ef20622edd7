// Package session holds the in-memory edit state of one calculator: its rows,
// its settings and the derived view rebuilt after every mutation.
package session

import (
	"errors"

	"budgetcalc/internal/core"
)

var (
	// ErrRowNotFound is returned when no row carries the given id.
	ErrRowNotFound = errors.New("row not found")
	// ErrUnknownField is returned when a field name does not exist on the row.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotAdvanced is returned when a detail operation targets a simple row.
	ErrNotAdvanced = errors.New("spending row has no details")
)

// Session is one calculator edit session. A session starts blank and unbound;
// loading a saved calculator replaces its whole content and binds its id.
// Every mutation marks the session dirty until the next successful save.
type Session struct {
	boundID string
	name    string
	doc     core.Document

	// Actual savings contributions live only in the session; they are
	// aggregation inputs, not part of the persisted document.
	actualSavings float64
	actualSos     float64

	dirty bool
}

// New creates a blank, unbound session.
func New() *Session {
	s := &Session{}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.boundID = ""
	s.name = ""
	s.doc = core.Document{Currency: "$"}
	s.doc.Normalize()
	s.actualSavings = 0
	s.actualSos = 0
	s.dirty = false
}

// BoundID returns the persisted calculator id, or "" when never saved.
func (s *Session) BoundID() string { return s.boundID }

// Name returns the calculator name being edited.
func (s *Session) Name() string { return s.name }

// Dirty reports whether the session has unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Document returns a snapshot of the current document.
func (s *Session) Document() core.Document { return s.doc }

// SetName renames the calculator being edited.
func (s *Session) SetName(name string) {
	s.name = name
	s.dirty = true
}

// SetCurrency changes the currency symbol used for formatting.
func (s *Session) SetCurrency(symbol string) {
	s.doc.Currency = symbol
	s.dirty = true
}

// SetSavingsPercent parses a whole-number percentage input.
func (s *Session) SetSavingsPercent(value string) error {
	frac, err := core.ParsePercent(value)
	if err != nil {
		return err
	}
	s.doc.SavingsPercent = frac
	s.dirty = true
	return nil
}

// SetSosPercent parses a whole-number percentage input.
func (s *Session) SetSosPercent(value string) error {
	frac, err := core.ParsePercent(value)
	if err != nil {
		return err
	}
	s.doc.SosPercent = frac
	s.dirty = true
	return nil
}

// SetActualSavings records the amount actually put into savings this period.
func (s *Session) SetActualSavings(value string) error {
	v, err := core.ParseAmount(value)
	if err != nil {
		return err
	}
	s.actualSavings = v
	s.dirty = true
	return nil
}

// SetActualSos records the amount actually put into the SOS fund this period.
func (s *Session) SetActualSos(value string) error {
	v, err := core.ParseAmount(value)
	if err != nil {
		return err
	}
	s.actualSos = v
	s.dirty = true
	return nil
}

// AddIncomeRow appends a zero-valued income row and returns its id.
func (s *Session) AddIncomeRow() string {
	row := core.IncomeRow{ID: core.NewRowID()}
	s.doc.IncomeRows = append(s.doc.IncomeRows, row)
	s.dirty = true
	return row.ID
}

// UpdateIncomeRow sets one field ("source" or "amount") on an income row.
func (s *Session) UpdateIncomeRow(id, field, value string) error {
	for i := range s.doc.IncomeRows {
		if s.doc.IncomeRows[i].ID != id {
			continue
		}
		switch field {
		case "source":
			s.doc.IncomeRows[i].Source = value
		case "amount":
			v, err := core.ParseAmount(value)
			if err != nil {
				return err
			}
			s.doc.IncomeRows[i].Amount = v
		default:
			return ErrUnknownField
		}
		s.dirty = true
		return nil
	}
	return ErrRowNotFound
}

// RemoveIncomeRow deletes an income row by id.
func (s *Session) RemoveIncomeRow(id string) error {
	for i := range s.doc.IncomeRows {
		if s.doc.IncomeRows[i].ID == id {
			s.doc.IncomeRows = append(s.doc.IncomeRows[:i], s.doc.IncomeRows[i+1:]...)
			s.dirty = true
			return nil
		}
	}
	return ErrRowNotFound
}

// AddSpendingRow appends a zero-valued simple spending row and returns its id.
func (s *Session) AddSpendingRow() string {
	row := core.SpendingRow{
		ID:      core.NewRowID(),
		Type:    core.Simple,
		Details: []core.DetailRow{},
	}
	s.doc.SpendingRows = append(s.doc.SpendingRows, row)
	s.dirty = true
	return row.ID
}

// UpdateSpendingRow sets one field ("category", "planned" or "actual") on a
// spending row. Actual is only writable on simple rows; on advanced rows it is
// derived from details.
func (s *Session) UpdateSpendingRow(id, field, value string) error {
	row := s.findSpendingRow(id)
	if row == nil {
		return ErrRowNotFound
	}
	switch field {
	case "category":
		row.Category = value
	case "planned":
		v, err := core.ParseAmount(value)
		if err != nil {
			return err
		}
		row.Planned = v
	case "actual":
		if row.Type == core.Advanced {
			return ErrUnknownField
		}
		v, err := core.ParseAmount(value)
		if err != nil {
			return err
		}
		row.Actual = v
	default:
		return ErrUnknownField
	}
	s.dirty = true
	return nil
}

// RemoveSpendingRow deletes a spending row and its details by id.
func (s *Session) RemoveSpendingRow(id string) error {
	for i := range s.doc.SpendingRows {
		if s.doc.SpendingRows[i].ID == id {
			s.doc.SpendingRows = append(s.doc.SpendingRows[:i], s.doc.SpendingRows[i+1:]...)
			s.dirty = true
			return nil
		}
	}
	return ErrRowNotFound
}

// SetSpendingType switches a spending row between simple and advanced. On the
// switch to advanced the actual amount becomes the sum of the details; the
// switch back to simple keeps the last derived value as the editable actual.
func (s *Session) SetSpendingType(id string, t core.SpendType) error {
	if !t.Valid() {
		return core.ErrInvalidSpendType
	}
	row := s.findSpendingRow(id)
	if row == nil {
		return ErrRowNotFound
	}
	row.Type = t
	if t == core.Advanced {
		row.Actual = core.ActualFromDetails(*row)
	}
	s.dirty = true
	return nil
}

// AddDetailRow appends a zero-valued detail row to an advanced spending row
// and returns its id.
func (s *Session) AddDetailRow(rowID string) (string, error) {
	row := s.findSpendingRow(rowID)
	if row == nil {
		return "", ErrRowNotFound
	}
	if row.Type != core.Advanced {
		return "", ErrNotAdvanced
	}
	det := core.DetailRow{ID: core.NewRowID()}
	row.Details = append(row.Details, det)
	row.Actual = core.ActualFromDetails(*row)
	s.dirty = true
	return det.ID, nil
}

// UpdateDetailRow sets one field ("date", "where" or "amount") on a detail row
// and recomputes the owning row's actual amount.
func (s *Session) UpdateDetailRow(rowID, detailID, field, value string) error {
	row := s.findSpendingRow(rowID)
	if row == nil {
		return ErrRowNotFound
	}
	for i := range row.Details {
		if row.Details[i].ID != detailID {
			continue
		}
		switch field {
		case "date":
			row.Details[i].Date = value
		case "where":
			row.Details[i].Where = value
		case "amount":
			v, err := core.ParseAmount(value)
			if err != nil {
				return err
			}
			row.Details[i].Amount = v
		default:
			return ErrUnknownField
		}
		row.Actual = core.ActualFromDetails(*row)
		s.dirty = true
		return nil
	}
	return ErrRowNotFound
}

// RemoveDetailRow deletes a detail row and recomputes the owning row's actual.
func (s *Session) RemoveDetailRow(rowID, detailID string) error {
	row := s.findSpendingRow(rowID)
	if row == nil {
		return ErrRowNotFound
	}
	for i := range row.Details {
		if row.Details[i].ID == detailID {
			row.Details = append(row.Details[:i], row.Details[i+1:]...)
			row.Actual = core.ActualFromDetails(*row)
			s.dirty = true
			return nil
		}
	}
	return ErrRowNotFound
}

func (s *Session) findSpendingRow(id string) *core.SpendingRow {
	for i := range s.doc.SpendingRows {
		if s.doc.SpendingRows[i].ID == id {
			return &s.doc.SpendingRows[i]
		}
	}
	return nil
}

// replace swaps the whole session content for a loaded calculator.
func (s *Session) replace(id, name string, doc core.Document) {
	doc.Normalize()
	s.boundID = id
	s.name = name
	s.doc = doc
	s.actualSavings = 0
	s.actualSos = 0
	s.dirty = false
}
