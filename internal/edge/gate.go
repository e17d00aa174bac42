// ABOUTME: Edge session gate for the admin page tree
// ABOUTME: Redirects cookie-less requests under /admin to the login page without verifying tokens

package edge

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/nubarmory/internal/auth"
)

const (
	// AdminPrefix is the path tree the gate protects.
	AdminPrefix = "/admin"

	// LoginPath is exempt from the gate and is where rejected requests land.
	LoginPath = "/admin/login"
)

// Gate is a presence-only check in front of the admin pages. It never
// verifies signatures; the route guard does that. A request that gets past
// the gate is only known to carry some non-empty session cookie.
type Gate struct {
	next   http.Handler
	logger *slog.Logger
}

// NewGate wraps next with the session gate.
func NewGate(next http.Handler, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		next:   next,
		logger: logger.With("component", "edge_gate"),
	}
}

// Middleware adapts NewGate to the func(http.Handler) http.Handler shape.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return NewGate(next, logger)
	}
}

func (g *Gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if Protects(r.URL.Path) && auth.TokenFromRequest(r) == "" {
		g.logger.Debug("redirecting to login", "path", r.URL.Path)
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	g.next.ServeHTTP(w, r)
}

// Protects reports whether path is inside the gated tree.
// /admin and /admin/... are gated; /admin/login and lookalikes such as
// /administrator are not.
func Protects(path string) bool {
	if path == LoginPath || strings.HasPrefix(path, LoginPath+"/") {
		return false
	}
	return path == AdminPrefix || strings.HasPrefix(path, AdminPrefix+"/")
}
