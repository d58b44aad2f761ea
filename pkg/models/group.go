package models

import (
	"time"

	"github.com/google/uuid"
)

// Group member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group is a shared expense group. Access is granted by active membership,
// never by the group ID alone.
type Group struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedBy   uuid.UUID `db:"created_by"  json:"created_by"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`

	// Populated by list/detail queries, not stored on the groups row.
	MemberCount int           `db:"-" json:"member_count,omitempty"`
	YourRole    string        `db:"-" json:"your_role,omitempty"`
	Members     []GroupMember `db:"-" json:"members,omitempty"`
}

// GroupMember is one active membership row joined with account details.
type GroupMember struct {
	AccountID   uuid.UUID `db:"account_id"   json:"account_id"`
	Email       string    `db:"email"        json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        string    `db:"role"         json:"role"`
	JoinedAt    time.Time `db:"joined_at"    json:"joined_at"`
}
