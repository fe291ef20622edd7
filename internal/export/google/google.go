// Package google mirrors calculator snapshots to a Google Sheets
// spreadsheet, one row per calculator, using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetcalc/internal/export"
)

// Config selects the target spreadsheet and the credentials source. Exactly
// one of CredentialsJSON or CredentialsFile must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ export.SnapshotWriter = (*Client)(nil)

// New creates a Sheets client from the given configuration.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	credentials, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets export client created",
		"spreadsheet_id", cfg.SpreadsheetID, "sheet", cfg.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// Write upserts the snapshot row for its calculator. The calculator id in
// column A is the row key; an existing row is overwritten in place, otherwise
// the snapshot is appended below the last used row.
func (c *Client) Write(ctx context.Context, snap export.Snapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, existing, err := c.findRow(ctx, snap.CalculatorID)
	if err != nil {
		return "", err
	}
	if !existing {
		row++ // append below the last used row
	}

	rng := fmt.Sprintf("%s!A%d:K%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		snap.CalculatorID,
		snap.OwnerID,
		snap.Name,
		snap.Currency,
		snap.TotalIncome,
		snap.TotalPlanned,
		snap.TotalActual,
		snap.Leftover,
		snap.SavingsTarget,
		snap.SosTarget,
		snap.ExportedAt.Format(time.RFC3339),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.sheetName, err)
	}

	return rng, nil
}

// Remove clears the snapshot row of a deleted calculator. A calculator that
// was never exported has no row, which is not an error.
func (c *Client) Remove(ctx context.Context, calculatorID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, existing, err := c.findRow(ctx, calculatorID)
	if err != nil {
		return err
	}
	if !existing {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:K%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row in sheet %s: %w", c.sheetName, err)
	}
	return nil
}

// findRow scans column A for the calculator id. It returns the matching row
// number, or the last used row number when the id is absent.
func (c *Client) findRow(ctx context.Context, calculatorID string) (row int, existing bool, err error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read column A of sheet %s: %w", c.sheetName, err)
	}

	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if v, ok := cells[0].(string); ok && v == calculatorID {
			return i + 1, true, nil
		}
	}
	return len(resp.Values), false, nil
}
