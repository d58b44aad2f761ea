package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitpatil/kharcha/internal/auth"
)

func TestCookieCarrier_Attach(t *testing.T) {
	carrier := auth.NewCookieCarrier(2 * time.Hour)
	w := httptest.NewRecorder()

	carrier.Attach(w, "session-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, auth.SessionCookieName, c.Name)
	assert.Equal(t, "session-token", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int((2 * time.Hour).Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}

func TestCookieCarrier_Clear(t *testing.T) {
	carrier := auth.NewCookieCarrier(time.Hour)
	w := httptest.NewRecorder()

	carrier.Clear(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestCookieCarrier_Extract(t *testing.T) {
	carrier := auth.NewCookieCarrier(time.Hour)

	t.Run("present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "tok"})

		token, ok := carrier.Extract(req)
		assert.True(t, ok)
		assert.Equal(t, "tok", token)
	})

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		_, ok := carrier.Extract(req)
		assert.False(t, ok)
	})

	t.Run("empty value", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: ""})

		_, ok := carrier.Extract(req)
		assert.False(t, ok)
	})
}
