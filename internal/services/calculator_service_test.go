package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budgetcalc/internal/core"
	"budgetcalc/internal/storage"
)

// recordingPublisher records publishes and optionally fails them.
type recordingPublisher struct {
	exports []string
	deletes []string
	fail    bool
}

func (p *recordingPublisher) PublishExport(_ context.Context, calculatorID, _ string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.exports = append(p.exports, calculatorID)
	return nil
}

func (p *recordingPublisher) PublishDelete(_ context.Context, calculatorID, _ string) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.deletes = append(p.deletes, calculatorID)
	return nil
}

func newTestService(t *testing.T, pub ExportPublisher) (*CalculatorService, string) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	owner := &storage.User{Email: "svc@example.com", Username: "svcuser", PasswordHash: "h"}
	if err := repo.CreateUser(context.Background(), owner); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	return NewCalculatorService(repo, pub), owner.ID
}

func testDocument() core.Document {
	doc := core.Document{
		Currency:       "$",
		SavingsPercent: 0.10,
		IncomeRows:     []core.IncomeRow{{Source: "Job", Amount: 2000}},
		SpendingRows:   []core.SpendingRow{{Category: "Rent", Planned: 800, Actual: 800, Type: core.Simple}},
	}
	return doc
}

func TestCreatePublishesExport(t *testing.T) {
	pub := &recordingPublisher{}
	svc, ownerID := newTestService(t, pub)
	ctx := context.Background()

	calc, err := svc.Create(ctx, ownerID, "January", testDocument())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(pub.exports) != 1 || pub.exports[0] != calc.ID {
		t.Errorf("exports = %v, want [%s]", pub.exports, calc.ID)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	svc, ownerID := newTestService(t, &recordingPublisher{fail: true})
	ctx := context.Background()

	calc, err := svc.Create(ctx, ownerID, "January", testDocument())
	if err != nil {
		t.Fatalf("Create() must not fail on publish error, got %v", err)
	}
	if _, err := svc.Get(ctx, calc.ID); err != nil {
		t.Errorf("calculator should be persisted despite publish failure: %v", err)
	}
}

func TestCreateRejectsInvalidDocument(t *testing.T) {
	svc, ownerID := newTestService(t, &recordingPublisher{})

	doc := testDocument()
	doc.SavingsPercent = 1.5
	if _, err := svc.Create(context.Background(), ownerID, "Bad", doc); !errors.Is(err, core.ErrInvalidPercent) {
		t.Errorf("error = %v, want ErrInvalidPercent", err)
	}
}

func TestUpdatePublishesExport(t *testing.T) {
	pub := &recordingPublisher{}
	svc, ownerID := newTestService(t, pub)
	ctx := context.Background()

	calc, err := svc.Create(ctx, ownerID, "January", testDocument())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	doc := testDocument()
	doc.Currency = "€"
	updated, err := svc.Update(ctx, calc.ID, "January v2", doc)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "January v2" || updated.Data.Currency != "€" {
		t.Errorf("update not applied: %+v", updated)
	}
	if len(pub.exports) != 2 {
		t.Errorf("exports = %v, want create + update", pub.exports)
	}

	if _, err := svc.Update(ctx, "missing", "x", testDocument()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeletePublishesDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc, ownerID := newTestService(t, pub)
	ctx := context.Background()

	calc, err := svc.Create(ctx, ownerID, "January", testDocument())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, calc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(pub.deletes) != 1 || pub.deletes[0] != calc.ID {
		t.Errorf("deletes = %v, want [%s]", pub.deletes, calc.ID)
	}
	if _, err := svc.Get(ctx, calc.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, calc.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete error = %v, want ErrNotFound", err)
	}
}

func TestNilPublisherIsAllowed(t *testing.T) {
	svc, ownerID := newTestService(t, nil)
	ctx := context.Background()

	calc, err := svc.Create(ctx, ownerID, "January", testDocument())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, calc.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
