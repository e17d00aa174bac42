// ABOUTME: SQLite implementation of the Store interface over database/sql
// ABOUTME: Supports the pure-Go modernc driver and the cgo mattn driver, with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCGo     = "sqlite3" // github.com/mattn/go-sqlite3, needs cgo
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path using the
// modernc driver. See OpenSQLiteStore to pick a driver.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return OpenSQLiteStore(DriverModernc, path)
}

// OpenSQLiteStore opens a store with the named driver, logging through
// slog.Default(). See OpenSQLiteStoreWithLogger.
func OpenSQLiteStore(driver, path string) (*SQLiteStore, error) {
	return OpenSQLiteStoreWithLogger(driver, path, nil)
}

// OpenSQLiteStoreWithLogger opens a store with the named driver.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. A nil logger means slog.Default().
func OpenSQLiteStoreWithLogger(driver, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	switch driver {
	case "":
		driver = DriverModernc
	case DriverModernc, DriverCGo:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "driver", driver)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		-- Admin users (provisioned out of band)
		CREATE TABLE IF NOT EXISTS admin_users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			password_hash TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS colors (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			hex TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
			active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_created ON products(created_at);

		CREATE TABLE IF NOT EXISTS product_colors (
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			color_id TEXT NOT NULL REFERENCES colors(id) ON DELETE CASCADE,
			PRIMARY KEY (product_id, color_id)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			customer_email TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			total_cents INTEGER NOT NULL,
			status TEXT NOT NULL,
			custom INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,

			CHECK (status IN ('pending', 'paid', 'shipped', 'completed', 'cancelled'))
		);

		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
		CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			color_id TEXT,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price_cents INTEGER NOT NULL,
			PRIMARY KEY (order_id, position)
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		table  string
		column string
		apply  string
	}{
		{
			table:  "products",
			column: "stock",
			apply:  `ALTER TABLE products ADD COLUMN stock INTEGER NOT NULL DEFAULT 0`,
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(`SELECT 1 FROM pragma_table_info(?) WHERE name = ?`, m.table, m.column).Scan(&exists)
		if err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to %s: %w", m.column, m.table, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", m.table)
	}

	return nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
