// ABOUTME: Session cookie contract shared by login, the edge gate and route guards
// ABOUTME: One cookie name everywhere, HttpOnly + SameSite=Strict, seven day lifetime

package auth

import (
	"net/http"
	"time"
)

// SessionCookieName is the only name the session cookie is written or read under.
const SessionCookieName = "admin-token"

// CookieOptions controls attributes that differ between deployments.
type CookieOptions struct {
	// Secure marks the cookie HTTPS-only.
	Secure bool
	// MaxAge is the cookie lifetime; zero means TokenTTL.
	MaxAge time.Duration
}

// SetSessionCookie writes the session token cookie.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = TokenTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// TokenFromRequest returns the session cookie value, or "" if there is none.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
