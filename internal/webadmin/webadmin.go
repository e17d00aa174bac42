// ABOUTME: Admin web pages for the storefront backend
// ABOUTME: Serves the login page and dashboard shell that sit behind the edge gate

package webadmin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/store"
)

// dashboardRecentOrders is how many orders the dashboard lists.
const dashboardRecentOrders = 10

// DashboardStore is what the dashboard reads to summarize the shop.
type DashboardStore interface {
	ListProducts(ctx context.Context) ([]*store.Product, error)
	ListOrders(ctx context.Context, filter store.OrderFilter) ([]*store.Order, error)
}

// Config holds the collaborators for the admin pages.
type Config struct {
	// Verifier re-checks the session cookie on every page. The edge gate in
	// front of these routes only checks that the cookie exists.
	Verifier auth.Verifier
	Store    DashboardStore
	Logger   *slog.Logger
}

// Admin handles admin UI routes
type Admin struct {
	verifier  auth.Verifier
	store     DashboardStore
	templates *pageTemplates
	logger    *slog.Logger
}

// New creates a new Admin handler. It panics if the embedded templates fail
// to parse.
func New(cfg Config) *Admin {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{
		verifier:  cfg.Verifier,
		store:     cfg.Store,
		templates: mustParseTemplates(),
		logger:    logger.With("component", "admin"),
	}
}

// RegisterRoutes registers all admin routes on the given mux
func (a *Admin) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /admin/login", a.handleLoginPage)

	// Protected routes (auth required)
	mux.HandleFunc("GET /admin", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("GET /admin/{$}", a.requireAuth(a.handleDashboard))

	a.logger.Info("admin routes registered")
}

// requireAuth wraps a page handler so it only runs with a verified session.
// Pages redirect to the login form rather than answering 401.
func (a *Admin) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := a.sessionIdentity(r)
		if !ok {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	}
}

func (a *Admin) sessionIdentity(r *http.Request) (auth.Identity, bool) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return auth.Identity{}, false
	}
	return a.verifier.Verify(token)
}

// handleLoginPage renders the login page
func (a *Admin) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to dashboard
	if _, ok := a.sessionIdentity(r); ok {
		http.Redirect(w, r, "/admin/", http.StatusSeeOther)
		return
	}
	a.renderLoginPage(w)
}

// handleDashboard renders the main dashboard
func (a *Admin) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	ctx := r.Context()

	data := dashboardData{
		Title: "Dashboard",
		Admin: identity,
	}

	products, err := a.store.ListProducts(ctx)
	if err != nil {
		a.logger.Error("failed to list products", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.ProductCount = len(products)
	for _, p := range products {
		if p.Active {
			data.ActiveProductCount++
		}
	}

	pending, err := a.store.ListOrders(ctx, store.OrderFilter{Status: store.OrderStatusPending})
	if err != nil {
		a.logger.Error("failed to list pending orders", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.PendingOrderCount = len(pending)

	recent, err := a.store.ListOrders(ctx, store.OrderFilter{Limit: dashboardRecentOrders})
	if err != nil {
		a.logger.Error("failed to list recent orders", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data.RecentOrders = recent

	a.renderDashboard(w, data)
}
