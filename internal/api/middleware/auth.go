package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ankitpatil/kharcha/internal/api/response"
	"github.com/ankitpatil/kharcha/internal/auth"
	"github.com/google/uuid"
)

// TokenValidator verifies a session token and returns the tenant identity
// it asserts.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

// SessionAuth authenticates requests from the session cookie and binds the
// tenant identity into the request context.
type SessionAuth struct {
	carrier   *auth.CookieCarrier
	validator TokenValidator
}

func NewSessionAuth(carrier *auth.CookieCarrier, validator TokenValidator) *SessionAuth {
	return &SessionAuth{carrier: carrier, validator: validator}
}

// Authenticate rejects requests without a valid session. Missing, malformed,
// tampered, and expired tokens all produce the same response; the specific
// reason is only logged.
func (a *SessionAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := a.carrier.Extract(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		tenantID, err := a.validator.ValidateToken(token)
		if err != nil {
			slog.Debug("rejected session token", "reason", err, "path", r.URL.Path)
			response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		ctx := SetTenantID(r.Context(), tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
