// Package auth implements credential handling and session tokens.
//
// Sessions are stateless HS256 JWTs: there is no server-side session record
// and no revocation list. Logout only clears the client's cookie, so a
// captured token stays valid until its natural expiry. Known limitation;
// deployments needing hard session termination must keep SESSION_TTL short.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ankitpatil/kharcha/internal/config"
	"github.com/ankitpatil/kharcha/internal/store"
	"github.com/ankitpatil/kharcha/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredential covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrWeakPassword      = errors.New("password too short")
	ErrInvalidToken      = errors.New("invalid session token")
	ErrExpiredToken      = errors.New("session token expired")
)

// Authenticator verifies credentials against the account store and mints
// session tokens. The signing secret is fixed at construction and never
// exposed afterwards.
type Authenticator struct {
	store          store.Store
	secret         []byte
	ttl            time.Duration
	bcryptCost     int
	passwordMinLen int
}

func NewAuthenticator(s store.Store, session config.SessionConfig, authCfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		store:          s,
		secret:         session.Secret,
		ttl:            session.TTL,
		bcryptCost:     authCfg.BcryptCost,
		passwordMinLen: authCfg.PasswordMinLength,
	}
}

// SessionTTL returns the configured token lifetime, used by the cookie
// carrier so the cookie never outlives the token.
func (a *Authenticator) SessionTTL() time.Duration {
	return a.ttl
}

// Register creates an account. Emails are normalized to lower case, so
// registration and login agree on case handling. Returns
// store.ErrDuplicateEmail if the handle is taken and ErrWeakPassword if the
// password is below the configured minimum length.
func (a *Authenticator) Register(ctx context.Context, email, password, displayName string) (*models.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < a.passwordMinLen {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate checks the credential pair and mints a signed session token.
// bcrypt comparison is constant-time; the same ErrInvalidCredential is
// returned whether the email is unknown or the password wrong.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (string, error) {
	account, err := a.store.GetAccountByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredential
	}
	if err != nil {
		return "", fmt.Errorf("look up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredential
	}

	return a.mintToken(account)
}

// Claims is the session token payload. Subject carries the account id,
// which downstream code treats as the tenant identity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *Authenticator) mintToken(account *models.Account) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: account.ID.String(),
			// Random jti so two logins in the same second still produce
			// distinct token values.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry, and returns the embedded
// tenant identity. Any tampering or parse failure rejects the token.
func (a *Authenticator) ValidateToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, ErrInvalidToken
	}

	tenantID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return tenantID, nil
}

// NormalizeEmail applies the service-wide case rule for account handles.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
