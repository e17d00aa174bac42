// ABOUTME: Login, logout and current-admin endpoints
// ABOUTME: Login issues the session token cookie; /me re-verifies it without the route guard

package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/metrics"
)

// LoginRequest is the JSON request body for POST /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse is the public view of an authenticated admin.
type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionResponse is the body of every session endpoint.
type SessionResponse struct {
	Success bool           `json:"success"`
	Admin   *AdminResponse `json:"admin,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Session endpoint error messages.
const (
	msgInvalidRequest     = "Invalid request format"
	msgFieldsRequired     = "Email and password are required"
	msgInvalidCredentials = "Invalid credentials"
	msgInternal           = "Internal server error"
	msgTooManyAttempts    = "Too many login attempts"
	msgNotAuthenticated   = "Not authenticated"
	msgInvalidToken       = "Invalid token"
)

func toAdminResponse(id auth.Identity) *AdminResponse {
	return &AdminResponse{ID: id.ID, Email: id.Email, Name: id.Name}
}

func (h *Handler) sessionError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, SessionResponse{Success: false, Error: message})
}

// handleLogin handles POST /api/admin/login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil {
		decision, err := h.limiter.Allow(ctx, clientIP(r))
		if err != nil {
			h.logger.Error("rate limiter failed", "error", err)
			h.recordLogin(metrics.LoginServerFailed)
			h.sessionError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		if !decision.Allowed {
			h.recordLogin(metrics.LoginRateLimited)
			if decision.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds()+0.5)))
			}
			h.sessionError(w, http.StatusTooManyRequests, msgTooManyAttempts)
			return
		}
	}

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.recordLogin(metrics.LoginBadRequest)
		h.sessionError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.recordLogin(metrics.LoginBadRequest)
		h.sessionError(w, http.StatusBadRequest, msgFieldsRequired)
		return
	}

	identity, err := h.authn.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.recordLogin(metrics.LoginInvalid)
		h.sessionError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		h.logger.Error("login failed", "error", err)
		h.recordLogin(metrics.LoginServerFailed)
		h.sessionError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	token, err := h.issuer.Issue(identity)
	if err != nil {
		h.logger.Error("issuing session token", "error", err, "admin_id", identity.ID)
		h.recordLogin(metrics.LoginServerFailed)
		h.sessionError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	auth.SetSessionCookie(w, token, h.cookie)
	h.recordLogin(metrics.LoginSuccess)
	h.logger.Info("admin logged in", "admin_id", identity.ID)

	h.writeJSON(w, http.StatusOK, SessionResponse{Success: true, Admin: toAdminResponse(identity)})
}

// handleLogout handles POST /api/admin/logout. The token itself stays valid
// until it expires; only the browser copy is dropped.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookie)
	h.writeJSON(w, http.StatusOK, SessionResponse{Success: true})
}

// handleMe handles GET /api/admin/me.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		h.sessionError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}

	identity, ok := h.verifier.Verify(token)
	if !ok {
		h.sessionError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	h.writeJSON(w, http.StatusOK, SessionResponse{Success: true, Admin: toAdminResponse(identity)})
}

// clientIP returns the host part of the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
