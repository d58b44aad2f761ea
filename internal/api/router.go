package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/ankitpatil/kharcha/internal/api/middleware"
	"github.com/ankitpatil/kharcha/internal/api/response"
	"github.com/ankitpatil/kharcha/internal/metrics"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Session *mw.SessionAuth

	HealthHandler http.HandlerFunc
	SignupHandler http.HandlerFunc
	LoginHandler  http.HandlerFunc
	LogoutHandler http.HandlerFunc
	InvokeHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Post("/api/v1/signup", orNotImplemented(deps.SignupHandler))
	r.Post("/api/v1/login", orNotImplemented(deps.LoginHandler))
	r.Post("/api/v1/logout", orNotImplemented(deps.LogoutHandler))
	r.Method("GET", "/metrics", metrics.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Session.Authenticate)

		r.Post("/api/v1/invoke", orNotImplemented(deps.InvokeHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented")
	}
}
