package models

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a single spending record. TenantID is assigned at creation
// from the authenticated session and is part of the lookup key for every
// subsequent read or delete.
type Expense struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	TenantID    uuid.UUID `db:"tenant_id"   json:"-"`
	Date        string    `db:"date"        json:"date"` // YYYY-MM-DD
	Amount      float64   `db:"amount"      json:"amount"`
	Category    string    `db:"category"    json:"category"`
	Subcategory string    `db:"subcategory" json:"subcategory"`
	Note        string    `db:"note"        json:"note"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

// CategorySummary is one row of a per-category spending aggregate.
type CategorySummary struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"count"`
}
