// Package store provides persistent storage for the NubArmory backend using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture:
//
//   - AdminStore: administrator credentials (the credential store)
//   - CatalogStore: products and colors
//   - OrderStore: orders and their line items
//   - Store: all of the above plus Ping and Close
//
// SQLiteStore implements every interface in a single struct.
//
// # Drivers
//
// Two database/sql drivers are registered:
//
//   - "sqlite": modernc.org/sqlite, pure Go (default)
//   - "sqlite3": github.com/mattn/go-sqlite3, requires cgo
//
// # Schema
//
// The schema is created on open and migrations are applied idempotently.
// Timestamps are stored as fixed-width UTC text so they sort lexically.
//
// # Admin Users
//
// Admin records are provisioned out of band. The store never deletes them.
// Email lookups are exact matches; case handling is whatever SQLite's default
// BINARY collation does.
//
// # Errors
//
// Lookups that miss return ErrNotFound or ErrAdminUserNotFound, possibly
// wrapped; compare with errors.Is.
package store
