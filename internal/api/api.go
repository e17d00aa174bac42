// ABOUTME: JSON API for the admin backend: session endpoints plus guarded catalog and order routes
// ABOUTME: Wires the authenticator, token codec, route guard and store onto an http.ServeMux

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/ratelimit"
	"github.com/2389/nubarmory/internal/store"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (auth.Identity, error)
}

// LoginLimiter decides whether a login attempt from key may proceed.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

// Observer receives login and guard events, typically a metrics.Manager.
type Observer interface {
	auth.GuardObserver
	LoginAttempt(outcome string)
}

// DataStore is the persistence the guarded routes need.
type DataStore interface {
	store.CatalogStore
	store.OrderStore
}

// Config holds the collaborators for a Handler.
type Config struct {
	Authenticator Authenticator
	Issuer        auth.Issuer
	// Verifier backs the route guard and /me. It may be a different codec
	// from Issuer as long as both share the secret.
	Verifier auth.Verifier
	Store    DataStore
	Cookie   auth.CookieOptions

	// Optional.
	Limiter  LoginLimiter
	Observer Observer
	Logger   *slog.Logger
}

// Handler serves the admin JSON API.
type Handler struct {
	authn    Authenticator
	issuer   auth.Issuer
	verifier auth.Verifier
	store    DataStore
	cookie   auth.CookieOptions
	limiter  LoginLimiter
	observer Observer
	guard    func(http.HandlerFunc) http.HandlerFunc
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// New creates a Handler from cfg.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	var guardObserver auth.GuardObserver
	if cfg.Observer != nil {
		guardObserver = cfg.Observer
	}

	return &Handler{
		authn:    cfg.Authenticator,
		issuer:   cfg.Issuer,
		verifier: cfg.Verifier,
		store:    cfg.Store,
		cookie:   cfg.Cookie,
		limiter:  cfg.Limiter,
		observer: cfg.Observer,
		guard:    auth.RequireAdmin(cfg.Verifier, guardObserver, logger),
		markdown: goldmark.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Session endpoints
	mux.HandleFunc("POST /api/admin/login", h.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", h.handleLogout)
	mux.HandleFunc("GET /api/admin/me", h.handleMe)

	// Products
	mux.HandleFunc("GET /api/admin/products", h.guard(h.handleListProducts))
	mux.HandleFunc("POST /api/admin/products", h.guard(h.handleCreateProduct))
	mux.HandleFunc("GET /api/admin/products/{id}", h.guard(h.handleGetProduct))
	mux.HandleFunc("PUT /api/admin/products/{id}", h.guard(h.handleUpdateProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.guard(h.handleDeleteProduct))

	// Colors
	mux.HandleFunc("GET /api/admin/colors", h.guard(h.handleListColors))
	mux.HandleFunc("POST /api/admin/colors", h.guard(h.handleCreateColor))
	mux.HandleFunc("DELETE /api/admin/colors/{id}", h.guard(h.handleDeleteColor))

	// Orders
	mux.HandleFunc("GET /api/admin/orders", h.guard(h.handleListOrders))
	mux.HandleFunc("GET /api/admin/orders/{id}", h.guard(h.handleGetOrder))
	mux.HandleFunc("PATCH /api/admin/orders/{id}/status", h.guard(h.handleUpdateOrderStatus))

	h.logger.Info("api routes registered")
}

func (h *Handler) recordLogin(outcome string) {
	if h.observer != nil {
		h.observer.LoginAttempt(outcome)
	}
}

// writeJSON writes v with the given status.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (h *Handler) sendJSONError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// sendInternalError logs err and writes the generic 500 body.
func (h *Handler) sendInternalError(w http.ResponseWriter, msg string, err error, args ...any) {
	h.logger.Error(msg, append([]any{"error", err}, args...)...)
	h.sendJSONError(w, http.StatusInternalServerError, msgInternal)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
