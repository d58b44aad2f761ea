package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/ankitpatil/kharcha/internal/cache"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/google/uuid"
)

const summaryCacheTTL = 5 * time.Minute

// Service implements the catalog handlers over the tenant-scoped store.
type Service struct {
	store store.Store
	cache cache.Cache
}

func NewService(s store.Store, c cache.Cache) *Service {
	return &Service{store: s, cache: c}
}

func (s *Service) addExpense(ctx context.Context, tenant Tenant, args Args) (any, error) {
	date, err := parseDate(args.String("date"))
	if err != nil {
		return nil, failf(ErrSchemaViolation, "date must be YYYY-MM-DD")
	}
	amount := args.Number("amount")
	if amount <= 0 {
		return nil, failf(ErrSchemaViolation, "amount must be positive")
	}
	category := args.String("category")
	if category == "" {
		return nil, failf(ErrSchemaViolation, "category must not be empty")
	}

	expense := &models.Expense{
		ID:          uuid.New(),
		TenantID:    tenant.ID,
		Date:        date,
		Amount:      amount,
		Category:    category,
		Subcategory: args.String("subcategory"),
		Note:        args.String("note"),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}
	s.bumpSummaryGen(ctx, tenant.ID)
	return expense, nil
}

func (s *Service) listExpenses(ctx context.Context, tenant Tenant, args Args) (any, error) {
	filter, err := dateRange(args)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, tenant.ID, filter)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}
	return expenses, nil
}

func (s *Service) summarize(ctx context.Context, tenant Tenant, args Args) (any, error) {
	filter, err := dateRange(args)
	if err != nil {
		return nil, err
	}
	filter.Category = args.String("category")

	key := s.summaryKey(ctx, tenant.ID, filter)
	if cached, ok := s.getCachedSummary(ctx, key); ok {
		return cached, nil
	}

	summaries, err := s.store.SummarizeExpenses(ctx, tenant.ID, filter)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []*models.CategorySummary{}
	}
	s.putCachedSummary(ctx, key, summaries)
	return summaries, nil
}

func (s *Service) deleteExpense(ctx context.Context, tenant Tenant, args Args) (any, error) {
	expenseID, err := uuid.Parse(args.String("expense_id"))
	if err != nil {
		return nil, failf(ErrSchemaViolation, "expense_id must be a UUID")
	}

	if err := s.store.DeleteExpense(ctx, tenant.ID, expenseID); err != nil {
		return nil, err
	}
	s.bumpSummaryGen(ctx, tenant.ID)
	return map[string]any{"id": expenseID, "deleted": true}, nil
}

// --- summary cache ---
//
// Cached summaries are keyed by a per-tenant generation counter; any expense
// write bumps the counter, orphaning all cached entries for that tenant.
// Cache failures fall through to the store.

func (s *Service) summaryKey(ctx context.Context, tenantID uuid.UUID, f store.ExpenseFilter) string {
	var gen int64
	raw, ok, err := s.cache.Get(ctx, cache.SummaryGenKey(tenantID))
	if err == nil && ok {
		gen, _ = strconv.ParseInt(string(raw), 10, 64)
	}
	return cache.SummaryKey(tenantID, gen, f.StartDate, f.EndDate, f.Category)
}

func (s *Service) getCachedSummary(ctx context.Context, key string) ([]*models.CategorySummary, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var summaries []*models.CategorySummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, false
	}
	return summaries, true
}

func (s *Service) putCachedSummary(ctx context.Context, key string, summaries []*models.CategorySummary) {
	raw, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, summaryCacheTTL); err != nil {
		slog.Warn("summary cache write failed", "error", err)
	}
}

func (s *Service) bumpSummaryGen(ctx context.Context, tenantID uuid.UUID) {
	if _, err := s.cache.Incr(ctx, cache.SummaryGenKey(tenantID)); err != nil {
		slog.Warn("summary cache invalidation failed", "error", err)
	}
}

// --- argument helpers ---

func parseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

func dateRange(args Args) (store.ExpenseFilter, error) {
	start, err := parseDate(args.String("start_date"))
	if err != nil {
		return store.ExpenseFilter{}, failf(ErrSchemaViolation, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDate(args.String("end_date"))
	if err != nil {
		return store.ExpenseFilter{}, failf(ErrSchemaViolation, "end_date must be YYYY-MM-DD")
	}
	if end < start {
		return store.ExpenseFilter{}, failf(ErrSchemaViolation, "end_date is before start_date")
	}
	return store.ExpenseFilter{StartDate: start, EndDate: end}, nil
}
