package store

import (
	"context"
	"errors"

	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrDuplicateMember = errors.New("account is already a group member")
)

// ExpenseFilter narrows expense queries. Dates are inclusive YYYY-MM-DD
// bounds; Category is optional and only consulted by Summarize.
type ExpenseFilter struct {
	StartDate string
	EndDate   string
	Category  string
}

// Store is the data access interface. All database operations go through here.
//
// Every expense and group method takes the tenant (account) identity as an
// explicit parameter; there is deliberately no variant that omits it. The
// tenant predicate is part of the SQL, so a handler cannot reach another
// tenant's rows even with a guessed record id.
type Store interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)

	CreateExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]*models.Expense, error)
	SummarizeExpenses(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]*models.CategorySummary, error)
	DeleteExpense(ctx context.Context, tenantID uuid.UUID, expenseID uuid.UUID) error

	CreateGroup(ctx context.Context, group *models.Group) error
	ListGroups(ctx context.Context, accountID uuid.UUID) ([]*models.Group, error)
	GetGroup(ctx context.Context, accountID uuid.UUID, groupID uuid.UUID) (*models.Group, error)
	UpdateGroup(ctx context.Context, actorID uuid.UUID, groupID uuid.UUID, name *string, description *string) error
	DeleteGroup(ctx context.Context, actorID uuid.UUID, groupID uuid.UUID) error

	GetMemberRole(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID) (string, error)
	AddGroupMember(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID, role string) error
	RemoveGroupMember(ctx context.Context, groupID uuid.UUID, accountID uuid.UUID) error
	CountGroupAdmins(ctx context.Context, groupID uuid.UUID) (int, error)
}
