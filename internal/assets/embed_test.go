package assets

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestContainsHash(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"admin.a1b2c3d4e5.css", true},
		{"js/login.CU4W1PlC.js", true},
		{"admin.css", false},
		{"manifest.json", false},
		{".gitkeep", false},
	}
	for _, tt := range tests {
		if got := containsHash(tt.path); got != tt.want {
			t.Errorf("containsHash(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestMimeFromExt(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".js", "application/javascript"},
		{".css", "text/css; charset=utf-8"},
		{".woff2", "font/woff2"},
		{".svg", "image/svg+xml"},
		{".qqqqqq", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := mimeFromExt(tt.ext); got != tt.want {
			t.Errorf("mimeFromExt(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestURLFingerprintsKnownFiles(t *testing.T) {
	u := URL("admin.css")
	if !strings.HasPrefix(u, "/static/admin.") || !strings.HasSuffix(u, ".css") {
		t.Fatalf("URL(admin.css) = %q", u)
	}
	if !containsHash(u) {
		t.Errorf("URL(admin.css) = %q, want a content hash", u)
	}
	if u != URL("admin.css") {
		t.Error("fingerprint is not stable")
	}

	if got := URL("missing.js"); got != "/static/missing.js" {
		t.Errorf("URL(missing.js) = %q", got)
	}
}

func serveStatic(t *testing.T, urlPath string) *httptest.ResponseRecorder {
	t.Helper()
	h := http.StripPrefix(Prefix, FileServer())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, urlPath, nil))
	return rec
}

func TestFileServerHashedIsImmutable(t *testing.T) {
	rec := serveStatic(t, URL("admin.css"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Errorf("Cache-Control = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/css; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "font-family") {
		t.Error("body does not look like the stylesheet")
	}
}

func TestFileServerPlainIsNoCache(t *testing.T) {
	rec := serveStatic(t, "/static/admin.css")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestFileServerMissing(t *testing.T) {
	rec := serveStatic(t, "/static/nope.css")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
