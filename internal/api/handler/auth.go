package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ankitpatil/kharcha/internal/api/response"
	"github.com/ankitpatil/kharcha/internal/auth"
	"github.com/ankitpatil/kharcha/internal/metrics"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/pkg/models"
)

// AuthService is the slice of the authenticator the auth handlers depend on.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.Account, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// NewSignupHandler returns an http.HandlerFunc for POST /api/v1/signup.
// The created account is echoed back without any credential material.
func NewSignupHandler(svc AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}

		account, err := svc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrDuplicateEmail):
				metrics.AuthTotal.WithLabelValues("signup", "duplicate").Inc()
				response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
			case errors.Is(err, auth.ErrWeakPassword):
				metrics.AuthTotal.WithLabelValues("signup", "weak_password").Inc()
				response.Error(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password does not meet the minimum length")
			default:
				metrics.AuthTotal.WithLabelValues("signup", "error").Inc()
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not create account")
			}
			return
		}

		metrics.AuthTotal.WithLabelValues("signup", "ok").Inc()
		response.Created(w, account)
	}
}

// NewLoginHandler returns an http.HandlerFunc for POST /api/v1/login. On
// success the session token travels only in the cookie, never in the body.
func NewLoginHandler(svc AuthService, carrier *auth.CookieCarrier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body")
			return
		}

		token, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			metrics.AuthTotal.WithLabelValues("login", "failed").Inc()
			// Unknown email and wrong password look identical here.
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}

		metrics.AuthTotal.WithLabelValues("login", "ok").Inc()
		carrier.Attach(w, token)
		response.JSON(w, map[string]string{"status": "logged_in"})
	}
}

// NewLogoutHandler returns an http.HandlerFunc for POST /api/v1/logout. It
// replaces the session cookie with an expired one; the token itself remains
// valid until its expiry instant.
func NewLogoutHandler(carrier *auth.CookieCarrier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carrier.Clear(w)
		response.JSON(w, map[string]string{"status": "logged_out"})
	}
}
