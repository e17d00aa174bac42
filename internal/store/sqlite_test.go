// ABOUTME: Tests for SQLite store setup
// ABOUTME: Covers file creation, driver selection, migrations and timestamp encoding

package store

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLiteStoreWithLogger_UsesGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store, err := OpenSQLiteStoreWithLogger(DriverModernc, filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLiteStoreWithLogger failed: %v", err)
	}
	defer store.Close()

	out := buf.String()
	if !strings.Contains(out, "SQLite store initialized") {
		t.Errorf("expected init line in injected logger, got %q", out)
	}
	if !strings.Contains(out, "component=store") {
		t.Errorf("expected component attr, got %q", out)
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestOpenSQLiteStore_UnsupportedDriver(t *testing.T) {
	_, err := OpenSQLiteStore("postgres", filepath.Join(t.TempDir(), "test.db"))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestOpenSQLiteStore_EmptyDriverDefaultsToModernc(t *testing.T) {
	store, err := OpenSQLiteStore("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := first.CreateColor(context.Background(), &Color{ID: "c1", Name: "Black", Hex: "#000000"}); err != nil {
		t.Fatalf("CreateColor failed: %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer second.Close()

	colors, err := second.ListColors(context.Background())
	if err != nil {
		t.Fatalf("ListColors failed: %v", err)
	}
	if len(colors) != 1 {
		t.Errorf("expected 1 color after reopen, got %d", len(colors))
	}
}

func TestMigrationAddsStockColumn(t *testing.T) {
	store := newTestStore(t)
	defer store.Close()

	var exists int
	err := store.db.QueryRow(`SELECT 1 FROM pragma_table_info('products') WHERE name = 'stock'`).Scan(&exists)
	if err != nil {
		t.Fatalf("stock column missing: %v", err)
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := formatTime(base)
	later := formatTime(base.Add(500 * time.Millisecond))

	if len(earlier) != len(later) {
		t.Fatalf("timestamps differ in width: %q vs %q", earlier, later)
	}
	if earlier >= later {
		t.Errorf("expected %q < %q", earlier, later)
	}

	parsed, err := parseTime("created_at", later)
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if !parsed.Equal(base.Add(500 * time.Millisecond)) {
		t.Errorf("round trip mismatch: got %v", parsed)
	}
}

func TestParseTime_Invalid(t *testing.T) {
	if _, err := parseTime("created_at", "yesterday"); err == nil {
		t.Error("expected error for malformed timestamp")
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	return store
}
