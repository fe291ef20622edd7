// Package worker mirrors saved calculators from SQLite to the export backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetcalc/internal/amqp"
	"budgetcalc/internal/core"
	"budgetcalc/internal/export"
	"budgetcalc/internal/storage"
)

// ExportWorker consumes calculator messages and writes snapshot rows to the
// export backend. The pending-export sweep is the backup path for lost
// messages.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    export.SnapshotWriter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer export.SnapshotWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleMessage processes one calculator message from the queue.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.CalculatorExportMessage) error {
	switch msg.Action {
	case amqp.ActionExport:
		return w.exportCalculator(ctx, msg.CalculatorID)
	case amqp.ActionDelete:
		return w.removeCalculator(ctx, msg.CalculatorID)
	default:
		return fmt.Errorf("unknown message action %q", msg.Action)
	}
}

func (w *ExportWorker) exportCalculator(ctx context.Context, id string) error {
	calc, err := w.storage.GetCalculator(ctx, id)
	if err != nil {
		return fmt.Errorf("get calculator from storage: %w", err)
	}
	return w.writeSnapshot(ctx, calc)
}

func (w *ExportWorker) removeCalculator(ctx context.Context, id string) error {
	if err := w.writer.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove exported snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Removed exported snapshot", "calculator_id", id)
	return nil
}

// ProcessPendingExports exports calculators that are not yet mirrored.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for i := range pending {
		if err := w.writeSnapshot(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to export calculator",
				"calculator_id", pending[i].ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck exports any backlog at worker startup, using a larger batch.
// This recovers from missed messages or worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for i := range pending {
		if err := w.writeSnapshot(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to export calculator during startup",
				"calculator_id", pending[i].ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

// writeSnapshot aggregates the calculator and upserts its backend row,
// keeping the exported flags in step with the outcome.
func (w *ExportWorker) writeSnapshot(ctx context.Context, calc *storage.Calculator) error {
	snap := BuildSnapshot(calc)

	ref, err := w.writer.Write(ctx, snap)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, calc.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"calculator_id", calc.ID, "error", markErr)
		}
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := w.storage.MarkExported(ctx, calc.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"calculator_id", calc.ID, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Successfully exported calculator",
		"calculator_id", calc.ID,
		"name", calc.Name,
		"row_ref", ref)

	return nil
}

// BuildSnapshot derives the export row values from a calculator document.
func BuildSnapshot(calc *storage.Calculator) export.Snapshot {
	set := calc.Data.Settings(0, 0)
	summary := core.Summarize(calc.Data.IncomeRows, calc.Data.SpendingRows, set)

	return export.Snapshot{
		CalculatorID:  calc.ID,
		OwnerID:       calc.OwnerID,
		Name:          calc.Name,
		Currency:      calc.Data.Currency,
		TotalIncome:   summary.TotalIncome,
		TotalPlanned:  summary.TotalPlanned,
		TotalActual:   summary.TotalActual,
		Leftover:      summary.Leftover,
		SavingsTarget: summary.SavingsTarget,
		SosTarget:     summary.SosTarget,
		ExportedAt:    time.Now().UTC(),
	}
}
