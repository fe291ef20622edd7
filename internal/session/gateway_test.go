package session

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"budgetcalc/internal/core"
	"budgetcalc/internal/storage"
)

// fakeCalcStore is an in-memory CalculatorStore that counts calls.
type fakeCalcStore struct {
	calcs   map[string]*storage.Calculator
	nextID  int
	deletes int
}

func newFakeCalcStore() *fakeCalcStore {
	return &fakeCalcStore{calcs: make(map[string]*storage.Calculator)}
}

func (s *fakeCalcStore) ListCalculatorsByOwner(_ context.Context, ownerID string) ([]storage.Calculator, error) {
	out := []storage.Calculator{}
	for _, c := range s.calcs {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeCalcStore) GetCalculator(_ context.Context, id string) (*storage.Calculator, error) {
	c, ok := s.calcs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCalcStore) CreateCalculator(_ context.Context, calc *storage.Calculator) error {
	s.nextID++
	calc.ID = string(rune('a' + s.nextID))
	copied := *calc
	s.calcs[calc.ID] = &copied
	return nil
}

func (s *fakeCalcStore) UpdateCalculator(_ context.Context, id, name string, data core.Document) (*storage.Calculator, error) {
	c, ok := s.calcs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.Name = name
	c.Data = data
	copied := *c
	return &copied, nil
}

func (s *fakeCalcStore) DeleteCalculator(_ context.Context, id string) error {
	s.deletes++
	if _, ok := s.calcs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.calcs, id)
	return nil
}

func buildSession(t *testing.T, name string) *Session {
	t.Helper()
	s := New()
	s.SetName(name)
	inc := s.AddIncomeRow()
	if err := s.UpdateIncomeRow(inc, "source", "Job"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateIncomeRow(inc, "amount", "2000"); err != nil {
		t.Fatal(err)
	}
	sp := s.AddSpendingRow()
	if err := s.UpdateSpendingRow(sp, "category", "Rent"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateSpendingRow(sp, "planned", "800"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSavingsPercent("10"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveCreatesAndBinds(t *testing.T) {
	ctx := context.Background()
	store := newFakeCalcStore()
	g := NewGateway(store)

	s := buildSession(t, "January")
	calc, err := g.Save(ctx, s, "user-1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if calc.ID == "" || s.BoundID() != calc.ID {
		t.Errorf("session not bound: calc.ID=%q bound=%q", calc.ID, s.BoundID())
	}
	if s.Dirty() {
		t.Error("save must clear the dirty flag")
	}
	if !s.View().Saved {
		t.Error("view should render as saved after save")
	}
}

func TestSaveRequiresName(t *testing.T) {
	g := NewGateway(newFakeCalcStore())
	s := New()
	s.SetName("   ")
	if _, err := g.Save(context.Background(), s, "user-1"); !errors.Is(err, core.ErrBlankName) {
		t.Errorf("error = %v, want ErrBlankName", err)
	}
}

func TestSaveDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := newFakeCalcStore()
	g := NewGateway(store)

	first := buildSession(t, "Groceries")
	if _, err := g.Save(ctx, first, "user-1"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Run("same owner rejected", func(t *testing.T) {
		dup := buildSession(t, "Groceries")
		if _, err := g.Save(ctx, dup, "user-1"); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("error = %v, want ErrDuplicateName", err)
		}
	})

	t.Run("different owner allowed", func(t *testing.T) {
		other := buildSession(t, "Groceries")
		if _, err := g.Save(ctx, other, "user-2"); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	})

	t.Run("resaving the bound calculator allowed", func(t *testing.T) {
		first.SetCurrency("€")
		if _, err := g.Save(ctx, first, "user-1"); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeCalcStore()
	g := NewGateway(store)

	s := buildSession(t, "January")
	sp := s.Document().SpendingRows[0].ID
	if err := s.SetSpendingType(sp, core.Advanced); err != nil {
		t.Fatal(err)
	}
	d, err := s.AddDetailRow(sp)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateDetailRow(sp, d, "date", "2025-01-03"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateDetailRow(sp, d, "where", "Market"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateDetailRow(sp, d, "amount", "50"); err != nil {
		t.Fatal(err)
	}

	saved := s.Document()
	calc, err := g.Save(ctx, s, "user-1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded := New()
	if err := g.Load(ctx, loaded, calc.ID); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.BoundID() != calc.ID || loaded.Name() != "January" {
		t.Errorf("loaded binding = %q/%q", loaded.BoundID(), loaded.Name())
	}
	if loaded.Dirty() {
		t.Error("freshly loaded session must not be dirty")
	}
	if !reflect.DeepEqual(loaded.Document(), saved) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded.Document(), saved)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("unbound refused without a store call", func(t *testing.T) {
		store := newFakeCalcStore()
		g := NewGateway(store)
		s := buildSession(t, "January")
		if err := g.Delete(ctx, s); !errors.Is(err, ErrNotSaved) {
			t.Errorf("error = %v, want ErrNotSaved", err)
		}
		if store.deletes != 0 {
			t.Error("delete on an unbound session must not reach the store")
		}
	})

	t.Run("bound deletes and resets", func(t *testing.T) {
		store := newFakeCalcStore()
		g := NewGateway(store)
		s := buildSession(t, "January")
		if _, err := g.Save(ctx, s, "user-1"); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := g.Delete(ctx, s); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if s.BoundID() != "" || s.Name() != "" {
			t.Errorf("session not reset: %q/%q", s.BoundID(), s.Name())
		}
		if len(s.Document().IncomeRows) != 0 || len(s.Document().SpendingRows) != 0 {
			t.Error("reset session should be blank")
		}
		if len(store.calcs) != 0 {
			t.Error("calculator should be gone from the store")
		}
	})
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newFakeCalcStore()
	g := NewGateway(store)

	s := buildSession(t, "January")
	calc, err := g.Save(ctx, s, "user-1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	dup := New()
	if err := g.Duplicate(ctx, dup, calc.ID); err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if dup.BoundID() != "" {
		t.Error("duplicate must be unbound")
	}
	if dup.Name() != "January Copy" {
		t.Errorf("Name = %q, want January Copy", dup.Name())
	}
	if !dup.Dirty() {
		t.Error("duplicate starts unsaved")
	}

	src := s.Document()
	copied := dup.Document()
	if len(copied.IncomeRows) != len(src.IncomeRows) {
		t.Fatalf("income rows = %d, want %d", len(copied.IncomeRows), len(src.IncomeRows))
	}
	if copied.IncomeRows[0].Source != src.IncomeRows[0].Source {
		t.Error("row content should be copied")
	}
	if copied.IncomeRows[0].ID == src.IncomeRows[0].ID {
		t.Error("row ids must be regenerated on duplicate")
	}
	if copied.SpendingRows[0].ID == src.SpendingRows[0].ID {
		t.Error("spending row ids must be regenerated on duplicate")
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := newFakeCalcStore()
	g := NewGateway(store)

	for _, name := range []string{"January", "February"} {
		s := buildSession(t, name)
		if _, err := g.Save(ctx, s, "user-1"); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	list, err := g.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list, err := g.List(ctx, "user-2"); err != nil || len(list) != 0 {
		t.Errorf("List(other) = %v, %v", list, err)
	}
}
