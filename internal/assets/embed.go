// Package assets serves the admin UI's static files embedded via go:embed.
// Each file is also reachable under a fingerprinted name carrying a content
// hash, so pages can link it with long-lived cache headers.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
)

// Prefix is the URL path the file server is mounted under.
const Prefix = "/static/"

//go:embed static
var staticFS embed.FS

// hashPattern detects content hashes in filenames (e.g. ".1a2b3c4d.").
var hashPattern = regexp.MustCompile(`\.[a-zA-Z0-9_-]{8,}\.`)

var (
	// fingerprinted maps a logical name ("admin.css") to its hashed name.
	fingerprinted = map[string]string{}
	// original maps a hashed name back to the embedded file.
	original = map[string]string{}
)

func init() {
	// Register MIME types that may not be in the default database.
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".map", "application/json")

	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "static/")
		hashed := fingerprint(name, data)
		fingerprinted[name] = hashed
		original[hashed] = name
		return nil
	})
	if err != nil {
		panic("assets: failed to index static files: " + err.Error())
	}
}

// fingerprint inserts a short content hash before the extension.
func fingerprint(name string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:])[:10] + ext
}

// containsHash reports whether the given path contains a content hash
// (8+ characters between dots, e.g. "admin.a1b2c3d4e5.css").
func containsHash(p string) bool {
	return hashPattern.MatchString(p)
}

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the Go standard library's MIME type database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".woff2":
		return "font/woff2"
	case ".svg":
		return "image/svg+xml"
	case ".map":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// URL returns the fingerprinted URL for a static file. Unknown names get
// their plain URL.
func URL(name string) string {
	if hashed, ok := fingerprinted[name]; ok {
		return Prefix + hashed
	}
	return Prefix + name
}

// FileServer returns an http.Handler that serves the embedded static files.
// Fingerprinted names get immutable cache headers; plain names get no-cache.
// The handler expects paths relative to the static root (strip Prefix before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		immutable := false
		if orig, ok := original[name]; ok {
			name = orig
			immutable = containsHash(r.URL.Path)
		}

		ext := strings.ToLower(path.Ext(name))
		if ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}
		if immutable {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		r2 := r.Clone(r.Context())
		r2.URL.Path = "/" + name
		fileServer.ServeHTTP(w, r2)
	})
}
