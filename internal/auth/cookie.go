package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the transport artifact carrying the session token.
const SessionCookieName = "kharcha_session"

// CookieCarrier moves session tokens between the server and the browser.
// The attributes are load-bearing: HttpOnly keeps the token away from page
// scripts, Secure keeps it off plaintext channels, SameSite=Strict keeps it
// off cross-site requests, and MaxAge never exceeds the token's own expiry.
type CookieCarrier struct {
	ttl time.Duration
}

func NewCookieCarrier(ttl time.Duration) *CookieCarrier {
	return &CookieCarrier{ttl: ttl}
}

// Attach sets the session cookie on the response.
func (c *CookieCarrier) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear overwrites the cookie with an already-expired one. The token itself
// is not revoked server-side; see the package comment.
func (c *CookieCarrier) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Extract reads the session token from the request, reporting whether one
// was present.
func (c *CookieCarrier) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
