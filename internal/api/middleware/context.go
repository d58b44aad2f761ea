package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const tenantIDKey contextKey = "tenant_id"

// SetTenantID binds the authenticated tenant identity into the context.
// The auth middleware is the only production caller; tests use it to
// simulate an authenticated request.
func SetTenantID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDKey, id)
}

// GetTenantID extracts the authenticated tenant identity from the request.
func GetTenantID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(tenantIDKey).(uuid.UUID)
	return id, ok
}
