// Package storage persists users and calculators in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"budgetcalc/internal/core"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// SQLiteRepository is the single persistence backend: user accounts and
// calculator documents in one SQLite file, schema managed by embedded
// migrations.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user. A blank ID is assigned; CreatedAt defaults
// to now. Unique email/username violations surface as sqlite errors and are
// expected to be pre-checked by the authenticator.
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Expenses == nil {
		user.Expenses = []ExpenseEntry{}
	}

	expenses, err := json.Marshal(user.Expenses)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, income, expenses_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.PasswordHash,
		user.Income, string(expenses), user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", user.ID, "username", user.Username)
	return nil
}

// GetUserByEmail returns ErrNotFound when no user has the email.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, "email = ?", email)
}

// GetUserByUsername returns ErrNotFound when no user has the username.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.getUser(ctx, "username = ?", username)
}

// GetUserByID returns ErrNotFound when no user has the id.
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (*User, error) {
	user := &User{}
	var expenses string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, income, expenses_json, created_at
		FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash,
		&user.Income, &expenses, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal([]byte(expenses), &user.Expenses); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}
	return user, nil
}

// UpdateUserPassword replaces the stored password hash for a user.
func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateCalculator inserts a new calculator document. A blank ID is assigned
// and CreatedAt is set server-side. The saved document is marked pending
// export.
func (r *SQLiteRepository) CreateCalculator(ctx context.Context, calc *Calculator) error {
	if calc.ID == "" {
		calc.ID = uuid.New().String()
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(calc.Data)
	if err != nil {
		return fmt.Errorf("marshal calculator data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO calculators (id, owner_id, name, data_json, created_at, exported, export_error)
		VALUES (?, ?, ?, ?, ?, 0, 0)`,
		calc.ID, calc.OwnerID, calc.Name, string(data), calc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calculator: %w", err)
	}

	slog.InfoContext(ctx, "Calculator created",
		"id", calc.ID, "owner_id", calc.OwnerID, "name", calc.Name)
	return nil
}

// ListCalculatorsByOwner returns all calculators of one owner, newest first.
func (r *SQLiteRepository) ListCalculatorsByOwner(ctx context.Context, ownerID string) ([]Calculator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, data_json, created_at, exported, export_error
		FROM calculators WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list calculators: %w", err)
	}
	defer rows.Close()

	out := []Calculator{}
	for rows.Next() {
		calc, err := scanCalculator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calculators: %w", err)
	}
	return out, nil
}

// GetCalculator returns ErrNotFound when the id does not exist.
func (r *SQLiteRepository) GetCalculator(ctx context.Context, id string) (*Calculator, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, data_json, created_at, exported, export_error
		FROM calculators WHERE id = ?`, id)
	calc, err := scanCalculator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return calc, nil
}

// UpdateCalculator replaces name and data of an existing calculator and marks
// it pending export again.
func (r *SQLiteRepository) UpdateCalculator(ctx context.Context, id, name string, data core.Document) (*Calculator, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal calculator data: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE calculators SET name = ?, data_json = ?, exported = 0, export_error = 0
		WHERE id = ?`, name, string(payload), id)
	if err != nil {
		return nil, fmt.Errorf("update calculator: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.GetCalculator(ctx, id)
}

// DeleteCalculator removes a calculator, reporting ErrNotFound when absent.
func (r *SQLiteRepository) DeleteCalculator(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calculators WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete calculator: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Calculator deleted", "id", id)
	return nil
}

// ListPendingExport returns calculators not yet mirrored to the export
// backend, oldest first, capped at limit. Backup path for lost queue
// messages.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]Calculator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, data_json, created_at, exported, export_error
		FROM calculators WHERE exported = 0 AND export_error = 0
		ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var out []Calculator
	for rows.Next() {
		calc, err := scanCalculator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending export: %w", err)
	}
	return out, nil
}

// MarkExported records a successful export of a calculator.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE calculators SET exported = 1, export_error = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportError flags a calculator whose export failed so the periodic
// sweep stops retrying it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE calculators SET export_error = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Calculator marked with export error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalculator(row rowScanner) (*Calculator, error) {
	calc := &Calculator{}
	var data string
	err := row.Scan(&calc.ID, &calc.OwnerID, &calc.Name, &data,
		&calc.CreatedAt, &calc.Exported, &calc.ExportError)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &calc.Data); err != nil {
		return nil, fmt.Errorf("unmarshal calculator data: %w", err)
	}
	calc.Data.Normalize()
	return calc, nil
}
