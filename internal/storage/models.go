package storage

import (
	"time"

	"budgetcalc/internal/core"
)

// User is a registered account. Income and Expenses are legacy columns kept
// for compatibility with old user documents; nothing in the calculator flow
// reads them.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"`
	Income       float64        `json:"income"`
	Expenses     []ExpenseEntry `json:"expenses"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// ExpenseEntry is one entry of the legacy per-user expense list.
type ExpenseEntry struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Calculator is one saved budget worksheet owned by a user. Name is unique
// per owner at save time; the check happens in the persistence gateway, not
// here.
type Calculator struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"userId"`
	Name      string        `json:"name"`
	Data      core.Document `json:"data"`
	CreatedAt time.Time     `json:"createdAt"`

	// Export bookkeeping for the spreadsheet mirror; never serialized.
	Exported    bool `json:"-"`
	ExportError bool `json:"-"`
}
