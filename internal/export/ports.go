// Package export defines the outbound ports for mirroring calculator
// snapshots to an external backend.
package export

import (
	"context"
	"time"
)

// Snapshot is one exported calculator: identity plus the aggregate numbers at
// export time. The backend stores one row per calculator.
type Snapshot struct {
	CalculatorID string
	OwnerID      string
	Name         string
	Currency     string

	TotalIncome   float64
	TotalPlanned  float64
	TotalActual   float64
	Leftover      float64
	SavingsTarget float64
	SosTarget     float64

	ExportedAt time.Time
}

// SnapshotWriter is the outbound port for export backends.
type SnapshotWriter interface {
	// Write upserts the snapshot row for its calculator and returns a
	// backend-specific row reference.
	Write(ctx context.Context, snap Snapshot) (rowRef string, err error)

	// Remove drops the snapshot row of a deleted calculator. Removing an
	// absent row is not an error.
	Remove(ctx context.Context, calculatorID string) error
}
