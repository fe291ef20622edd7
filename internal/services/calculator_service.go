// Package services orchestrates calculator operations across SQLite and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetcalc/internal/core"
	"budgetcalc/internal/storage"
)

// ExportPublisher is the queue surface the service needs. A nil publisher
// disables export messaging without affecting persistence.
type ExportPublisher interface {
	PublishExport(ctx context.Context, calculatorID, ownerID string) error
	PublishDelete(ctx context.Context, calculatorID, ownerID string) error
}

// CalculatorService persists calculators and notifies the export worker.
// Persistence is the source of truth; a failed publish never fails the
// request, the pending-export sweep catches up later.
type CalculatorService struct {
	storage   *storage.SQLiteRepository
	publisher ExportPublisher
}

func NewCalculatorService(storage *storage.SQLiteRepository, publisher ExportPublisher) *CalculatorService {
	return &CalculatorService{
		storage:   storage,
		publisher: publisher,
	}
}

// Create saves a new calculator and publishes an export message.
func (s *CalculatorService) Create(ctx context.Context, ownerID, name string, data core.Document) (*storage.Calculator, error) {
	data.Normalize()
	if err := data.Validate(); err != nil {
		return nil, err
	}

	calc := &storage.Calculator{
		OwnerID: ownerID,
		Name:    name,
		Data:    data,
	}
	if err := s.storage.CreateCalculator(ctx, calc); err != nil {
		return nil, fmt.Errorf("create calculator: %w", err)
	}

	s.publishExport(ctx, calc.ID, calc.OwnerID)
	return calc, nil
}

// List returns all calculators of one owner, newest first.
func (s *CalculatorService) List(ctx context.Context, ownerID string) ([]storage.Calculator, error) {
	return s.storage.ListCalculatorsByOwner(ctx, ownerID)
}

// Get fetches one calculator by id.
func (s *CalculatorService) Get(ctx context.Context, id string) (*storage.Calculator, error) {
	return s.storage.GetCalculator(ctx, id)
}

// Update replaces name and data of a calculator and publishes an export
// message for the new content.
func (s *CalculatorService) Update(ctx context.Context, id, name string, data core.Document) (*storage.Calculator, error) {
	data.Normalize()
	if err := data.Validate(); err != nil {
		return nil, err
	}

	calc, err := s.storage.UpdateCalculator(ctx, id, name, data)
	if err != nil {
		return nil, err
	}

	s.publishExport(ctx, calc.ID, calc.OwnerID)
	return calc, nil
}

// Delete removes a calculator and publishes a delete message so the export
// backend drops its rows.
func (s *CalculatorService) Delete(ctx context.Context, id string) error {
	calc, err := s.storage.GetCalculator(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteCalculator(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, skipping delete message")
		return nil
	}
	if err := s.publisher.PublishDelete(ctx, calc.ID, calc.OwnerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"calculator_id", calc.ID, "error", err)
		// Don't fail the request - the calculator is deleted locally
	}
	return nil
}

func (s *CalculatorService) publishExport(ctx context.Context, calculatorID, ownerID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Export publisher not available, skipping export message")
		return
	}
	if err := s.publisher.PublishExport(ctx, calculatorID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"calculator_id", calculatorID, "error", err)
		// Don't fail the request - the calculator is saved locally
	}
}
