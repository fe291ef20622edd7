package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetcalc/internal/core"
	"budgetcalc/internal/storage"
)

var (
	// ErrDuplicateName is returned when the owner already has a calculator
	// with the same name.
	ErrDuplicateName = errors.New("calculator name already in use")
	// ErrNotSaved is returned when delete is requested on an unbound session.
	ErrNotSaved = errors.New("calculator not yet saved")
)

// CalculatorStore is the persistence surface the gateway needs.
type CalculatorStore interface {
	ListCalculatorsByOwner(ctx context.Context, ownerID string) ([]storage.Calculator, error)
	GetCalculator(ctx context.Context, id string) (*storage.Calculator, error)
	CreateCalculator(ctx context.Context, calc *storage.Calculator) error
	UpdateCalculator(ctx context.Context, id, name string, data core.Document) (*storage.Calculator, error)
	DeleteCalculator(ctx context.Context, id string) error
}

var _ CalculatorStore = (*storage.SQLiteRepository)(nil)

// Gateway maps an edit session onto the calculator store: list, load, save,
// delete and duplicate.
type Gateway struct {
	store CalculatorStore
}

// NewGateway creates a gateway backed by the given store.
func NewGateway(store CalculatorStore) *Gateway {
	return &Gateway{store: store}
}

// List returns the owner's calculators, newest first.
func (g *Gateway) List(ctx context.Context, ownerID string) ([]storage.Calculator, error) {
	return g.store.ListCalculatorsByOwner(ctx, ownerID)
}

// Load replaces the whole session content with a stored calculator and binds
// its id.
func (g *Gateway) Load(ctx context.Context, sess *Session, id string) error {
	calc, err := g.store.GetCalculator(ctx, id)
	if err != nil {
		return err
	}
	sess.replace(calc.ID, calc.Name, calc.Data)
	return nil
}

// Save persists the session. An unbound session creates a new calculator and
// binds the returned id; a bound session updates in place. The name must be
// non-blank and unique among the owner's calculators, excluding the bound id.
func (g *Gateway) Save(ctx context.Context, sess *Session, ownerID string) (*storage.Calculator, error) {
	if err := core.ValidateName(sess.Name()); err != nil {
		return nil, err
	}

	existing, err := g.store.ListCalculatorsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list calculators: %w", err)
	}
	for _, calc := range existing {
		if calc.Name == sess.Name() && calc.ID != sess.BoundID() {
			return nil, ErrDuplicateName
		}
	}

	doc := sess.Document()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if sess.BoundID() == "" {
		calc := &storage.Calculator{
			OwnerID: ownerID,
			Name:    sess.Name(),
			Data:    doc,
		}
		if err := g.store.CreateCalculator(ctx, calc); err != nil {
			return nil, fmt.Errorf("create calculator: %w", err)
		}
		sess.boundID = calc.ID
		sess.dirty = false
		slog.InfoContext(ctx, "Calculator created from session",
			"id", calc.ID, "name", calc.Name)
		return calc, nil
	}

	calc, err := g.store.UpdateCalculator(ctx, sess.BoundID(), sess.Name(), doc)
	if err != nil {
		return nil, fmt.Errorf("update calculator: %w", err)
	}
	sess.dirty = false
	slog.InfoContext(ctx, "Calculator updated from session",
		"id", calc.ID, "name", calc.Name)
	return calc, nil
}

// Delete removes the bound calculator and resets the session to a blank,
// unsaved one. An unbound session is refused without touching the store.
func (g *Gateway) Delete(ctx context.Context, sess *Session) error {
	if sess.BoundID() == "" {
		return ErrNotSaved
	}
	if err := g.store.DeleteCalculator(ctx, sess.BoundID()); err != nil {
		return err
	}
	sess.reset()
	return nil
}

// Duplicate deep-copies a stored calculator into the session as a new,
// unbound edit named "<template name> Copy". Row ids are regenerated so the
// copy shares no identity with the template.
func (g *Gateway) Duplicate(ctx context.Context, sess *Session, templateID string) error {
	calc, err := g.store.GetCalculator(ctx, templateID)
	if err != nil {
		return err
	}
	sess.replace("", calc.Name+" Copy", calc.Data.Clone())
	sess.dirty = true
	return nil
}
