// ABOUTME: Admin credential records and store methods
// ABOUTME: Admins log in by email; passwords are bcrypt hashes that never leave the store layer

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrAdminUserNotFound is returned when an admin user doesn't exist.
var ErrAdminUserNotFound = errors.New("admin user not found")

// ErrEmailExists is returned when trying to create an admin with an existing email.
var ErrEmailExists = errors.New("email already exists")

// AdminUser represents an administrator credential record.
type AdminUser struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // bcrypt hash, empty disables password login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminStore defines the interface for admin credential persistence.
type AdminStore interface {
	CreateAdminUser(ctx context.Context, user *AdminUser) error
	GetAdminUser(ctx context.Context, id string) (*AdminUser, error)
	GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error)
	UpdateAdminUserPassword(ctx context.Context, id, passwordHash string) error
	CountAdminUsers(ctx context.Context) (int, error)
}

// Ensure SQLiteStore implements AdminStore.
var _ AdminStore = (*SQLiteStore)(nil)

const adminUserColumns = `id, email, name, password_hash, created_at, updated_at`

// CreateAdminUser creates a new admin user.
func (s *SQLiteStore) CreateAdminUser(ctx context.Context, user *AdminUser) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query := `
		INSERT INTO admin_users (` + adminUserColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		// Check for unique constraint violation
		if isUniqueConstraintError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("inserting admin user: %w", err)
	}

	s.logger.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}

// GetAdminUser retrieves an admin user by ID.
func (s *SQLiteStore) GetAdminUser(ctx context.Context, id string) (*AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = ?`
	user, err := scanAdminUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying admin user: %w", err)
	}
	return user, nil
}

// GetAdminUserByEmail retrieves an admin user by exact email match.
func (s *SQLiteStore) GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE email = ?`
	user, err := scanAdminUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("querying admin user by email: %w", err)
	}
	return user, nil
}

func scanAdminUser(row rowScanner) (*AdminUser, error) {
	var user AdminUser
	var passwordHash sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&passwordHash,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminUserNotFound
	}
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	if user.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateAdminUserPassword updates an admin user's password hash.
// Tokens issued before the change stay valid until they expire.
func (s *SQLiteStore) UpdateAdminUserPassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE admin_users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, passwordHash, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("updating admin user password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAdminUserNotFound
	}

	s.logger.Info("updated admin user password", "id", id)
	return nil
}

// CountAdminUsers returns the number of admin users.
func (s *SQLiteStore) CountAdminUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admin users: %w", err)
	}
	return count, nil
}

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	// SQLite returns "UNIQUE constraint failed" in the error message
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}
