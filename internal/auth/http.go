// ABOUTME: Route guard middleware for protected admin API endpoints
// ABOUTME: Re-verifies the session cookie on every request before the handler runs

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Guard rejection reasons reported to a GuardObserver.
const (
	RejectMissingToken = "missing_token"
	RejectInvalidToken = "invalid_token"
)

// GuardObserver is notified when the guard turns a request away.
type GuardObserver interface {
	GuardRejected(reason string)
}

// writeUnauthorized sends the uniform 401 body used by every protected endpoint.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// RequireAdmin wraps a handler so it only runs for a request carrying a
// session cookie that passes full verification. The identity is attached to
// the request context. observer may be nil.
func RequireAdmin(verifier Verifier, observer GuardObserver, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "route_guard")

	reject := func(w http.ResponseWriter, r *http.Request, reason string) {
		logger.Debug("request rejected", "path", r.URL.Path, "reason", reason)
		if observer != nil {
			observer.GuardRejected(reason)
		}
		writeUnauthorized(w)
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				reject(w, r, RejectMissingToken)
				return
			}

			id, ok := verifier.Verify(token)
			if !ok {
				reject(w, r, RejectInvalidToken)
				return
			}

			next(w, r.WithContext(WithIdentity(r.Context(), id)))
		}
	}
}
