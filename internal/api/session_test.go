// ABOUTME: Tests for login, logout and /me endpoints
// ABOUTME: Covers the login contract, cookie attributes, rate limiting and token checks on /me

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/metrics"
	"github.com/2389/nubarmory/internal/ratelimit"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@nubarmory.com", Password: "admin123"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[SessionResponse](t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, testAdmin.ID, resp.Admin.ID)
	assert.Equal(t, "admin@nubarmory.com", resp.Admin.Email)
	assert.Equal(t, "NubArmory Admin", resp.Admin.Name)
	assert.Empty(t, resp.Error)

	cookie := findCookie(rec, auth.SessionCookieName)
	require.NotNil(t, cookie, "Set-Cookie must carry the session token")
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)

	id, ok := env.codec.Verify(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, testAdmin, id)

	assert.Equal(t, []string{metrics.LoginSuccess}, env.observer.logins)
}

func TestLogin_BlankFields(t *testing.T) {
	env := newTestEnv(t)

	for _, req := range []LoginRequest{
		{Email: "", Password: ""},
		{Email: "admin@nubarmory.com", Password: ""},
		{Email: "   ", Password: "admin123"},
	} {
		rec := env.do(t, http.MethodPost, "/api/admin/login", req, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeBody[SessionResponse](t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Email and password are required", resp.Error)
		assert.Nil(t, findCookie(rec, auth.SessionCookieName))
	}
}

func TestLogin_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/login", "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[SessionResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid request format", resp.Error)
	assert.Equal(t, []string{metrics.LoginBadRequest}, env.observer.logins)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)

	wrongPassword := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@nubarmory.com", Password: "nope"}, nil)
	unknownEmail := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "ghost@nubarmory.com", Password: "admin123"}, nil)

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, findCookie(rec, auth.SessionCookieName))
	}
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	resp := decodeBody[SessionResponse](t, wrongPassword)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Error)
	assert.Equal(t, []string{metrics.LoginInvalid, metrics.LoginInvalid}, env.observer.logins)
}

type failingAuthenticator struct{}

func (failingAuthenticator) Authenticate(_ context.Context, _, _ string) (auth.Identity, error) {
	return auth.Identity{}, errors.New("database is locked")
}

func TestLogin_InternalError(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Authenticator = failingAuthenticator{}
	})

	rec := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@nubarmory.com", Password: "admin123"}, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.NotContains(t, rec.Body.String(), "locked")
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: false, RetryAfter: 20 * time.Second}}
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Limiter = limiter
	})

	rec := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@nubarmory.com", Password: "admin123"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("Retry-After"))

	resp := decodeBody[SessionResponse](t, rec)
	assert.Equal(t, "Too many login attempts", resp.Error)
	assert.Equal(t, []string{"192.0.2.1"}, limiter.keys)
	assert.Equal(t, []string{metrics.LoginRateLimited}, env.observer.logins)
}

func TestLogin_RateLimiterAllows(t *testing.T) {
	limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: true}}
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Limiter = limiter
	})

	rec := env.do(t, http.MethodPost, "/api/admin/login", LoginRequest{Email: "admin@nubarmory.com", Password: "admin123"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/logout", nil, env.sessionCookie(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[SessionResponse](t, rec).Success)

	cookie := findCookie(rec, auth.SessionCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "", cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no cookie", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/me", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", decodeBody[SessionResponse](t, rec).Error)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/me", nil, &http.Cookie{Name: auth.SessionCookieName, Value: "garbage"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decodeBody[SessionResponse](t, rec).Error)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/admin/me", nil, env.sessionCookie(t))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[SessionResponse](t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, testAdmin.Email, resp.Admin.Email)
	})
}

func TestMe_AcceptsEdgeIssuedToken(t *testing.T) {
	env := newTestEnv(t)
	edge, err := auth.NewEdgeCodec(testSecret)
	require.NoError(t, err)

	token, err := edge.Issue(testAdmin)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/admin/me", nil, &http.Cookie{Name: auth.SessionCookieName, Value: token})
	assert.Equal(t, http.StatusOK, rec.Code)
}
