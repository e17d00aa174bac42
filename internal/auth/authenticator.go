// ABOUTME: Email and password authentication against the admin credential store
// ABOUTME: Returns one uniform error for unknown email and wrong password

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/nubarmory/internal/store"
)

// PasswordCost is the bcrypt cost used when provisioning admin passwords.
const PasswordCost = 12

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the email is unknown so that both
// failure paths spend the same bcrypt time.
var dummyHash = []byte("$2a$12$C6UzMDM.H6dfI/f/IKcEeO5oQ5Fk3mN1qgq2o7JmLgK3x3iKqv3yW")

// CredentialStore looks up admin credentials by email.
type CredentialStore interface {
	GetAdminUserByEmail(ctx context.Context, email string) (*store.AdminUser, error)
}

// Authenticator checks admin email/password pairs.
type Authenticator struct {
	store  CredentialStore
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator over the given credential store.
func NewAuthenticator(s CredentialStore, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		store:  s,
		logger: logger.With("component", "authenticator"),
	}
}

// Authenticate returns the admin identity for a matching email and password.
// Unknown emails and wrong passwords both return ErrInvalidCredentials;
// any other error means the store failed.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	user, err := a.store.GetAdminUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAdminUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("looking up admin: %w", err)
	}

	if user.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Identity{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			a.logger.Warn("stored password hash unusable", "admin_id", user.ID, "error", err)
		}
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// HashPassword hashes a plaintext password at PasswordCost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
