package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a registered user. The account ID doubles as the tenant
// identity: every expense and group membership is partitioned by it.
// Emails are stored lowercase; the raw password never leaves the auth layer.
type Account struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name"  json:"display_name"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}
