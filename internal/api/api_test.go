// ABOUTME: Shared fixtures for API handler tests
// ABOUTME: Builds a mux over a temp SQLite store with a provisioned admin and a real token codec

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/ratelimit"
	"github.com/2389/nubarmory/internal/store"
)

var testSecret = []byte("nubarmory-api-test-secret-32byte")

var testAdmin = auth.Identity{
	ID:    "6c1b6f62-4a3e-4f7e-9d0c-0b8e2d7c9a10",
	Email: "admin@nubarmory.com",
	Name:  "NubArmory Admin",
}

const testPassword = "admin123"

type recordingObserver struct {
	logins []string
	guards []string
}

func (o *recordingObserver) GuardRejected(reason string) { o.guards = append(o.guards, reason) }
func (o *recordingObserver) LoginAttempt(outcome string) { o.logins = append(o.logins, outcome) }

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	l.keys = append(l.keys, key)
	return l.decision, l.err
}

type testEnv struct {
	mux      *http.ServeMux
	store    *store.SQLiteStore
	codec    *auth.JWTCodec
	observer *recordingObserver
}

func newTestEnv(t *testing.T, configure ...func(*Config)) *testEnv {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.CreateAdminUser(context.Background(), &store.AdminUser{
		ID:           testAdmin.ID,
		Email:        testAdmin.Email,
		Name:         testAdmin.Name,
		PasswordHash: string(hash),
	}))

	codec, err := auth.NewJWTCodec(testSecret)
	require.NoError(t, err)

	observer := &recordingObserver{}
	cfg := Config{
		Authenticator: auth.NewAuthenticator(s, nil),
		Issuer:        codec,
		Verifier:      codec,
		Store:         s,
		Cookie:        auth.CookieOptions{Secure: true},
		Observer:      observer,
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	mux := http.NewServeMux()
	New(cfg).RegisterRoutes(mux)

	return &testEnv{mux: mux, store: s, codec: codec, observer: observer}
}

// sessionCookie returns a valid session cookie for the test admin.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := e.codec.Issue(testAdmin)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

// do sends a request through the mux. body may be nil, a string, or a value to JSON-encode.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
