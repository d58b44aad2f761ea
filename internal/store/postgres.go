package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Accounts ---

func (s *PostgresStore) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, display_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Email, account.PasswordHash, account.DisplayName,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at, updated_at
		 FROM accounts WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, created_at, updated_at
		 FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// --- Expenses ---

func (s *PostgresStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, tenant_id, date, amount, category, subcategory, note, created_at)
		 VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)`,
		expense.ID, expense.TenantID, expense.Date, expense.Amount,
		expense.Category, expense.Subcategory, expense.Note, expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListExpenses(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, to_char(date, 'YYYY-MM-DD'), amount::float8, category, subcategory, note, created_at
		 FROM expenses
		 WHERE tenant_id = $1 AND date >= $2::date AND date <= $3::date
		 ORDER BY date DESC, created_at DESC`,
		tenantID, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Date, &e.Amount,
			&e.Category, &e.Subcategory, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

func (s *PostgresStore) SummarizeExpenses(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]*models.CategorySummary, error) {
	// tenant_id leads the predicate; the optional category filter narrows
	// but never replaces it.
	query := `SELECT category, SUM(amount)::float8, COUNT(*)
		 FROM expenses
		 WHERE tenant_id = $1 AND date >= $2::date AND date <= $3::date`
	args := []any{tenantID, filter.StartDate, filter.EndDate}
	if filter.Category != "" {
		query += ` AND category = $4`
		args = append(args, filter.Category)
	}
	query += ` GROUP BY category ORDER BY SUM(amount) DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize expenses: %w", err)
	}
	defer rows.Close()

	var summaries []*models.CategorySummary
	for rows.Next() {
		var c models.CategorySummary
		if err := rows.Scan(&c.Category, &c.TotalAmount, &c.Count); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, &c)
	}
	return summaries, rows.Err()
}

func (s *PostgresStore) DeleteExpense(ctx context.Context, tenantID uuid.UUID, expenseID uuid.UUID) error {
	// Conjoint predicate: a guessed id belonging to another tenant deletes
	// nothing and reads as not found.
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND tenant_id = $2`, expenseID, tenantID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
