// ABOUTME: Session token codec backed by golang-jwt for the full server runtime
// ABOUTME: Issues and verifies HS256 tokens carrying the admin identity snapshot

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinSecretLength is the minimum accepted signing secret size in bytes.
	MinSecretLength = 32

	// TokenTTL is how long an issued session token stays valid.
	TokenTTL = 7 * 24 * time.Hour
)

// Token errors
var (
	ErrSecretTooShort = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	ErrEmptyIdentity  = errors.New("identity id is required")
)

// Identity is the public admin identity embedded in a session token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verifier checks a session token. A false result covers every failure
// (malformed, expired, tampered); callers cannot tell them apart.
type Verifier interface {
	Verify(token string) (Identity, bool)
}

// Issuer creates session tokens.
type Issuer interface {
	Issue(id Identity) (string, error)
}

// Codec is one logical token format; JWTCodec and EdgeCodec are its two
// implementations and accept each other's tokens.
type Codec interface {
	Issuer
	Verifier
}

var (
	_ Codec = (*JWTCodec)(nil)
	_ Codec = (*EdgeCodec)(nil)
)

// sessionClaims is the token payload: {id, email, name, iat, exp}.
type sessionClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Option configures a codec.
type Option func(*codecOptions)

type codecOptions struct {
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// WithTTL overrides TokenTTL.
func WithTTL(ttl time.Duration) Option {
	return func(o *codecOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock sets the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *codecOptions) { o.now = now }
}

// WithLogger sets the logger used to record verification failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *codecOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(component string, opts []Option) codecOptions {
	o := codecOptions{
		ttl:    TokenTTL,
		now:    time.Now,
		logger: slog.Default().With("component", component),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// JWTCodec implements Codec using HS256 signed JWTs.
type JWTCodec struct {
	secret []byte
	opts   codecOptions
	parser *jwt.Parser
}

// NewJWTCodec creates a codec with the given secret.
// Returns ErrSecretTooShort if the secret is shorter than MinSecretLength.
func NewJWTCodec(secret []byte, opts ...Option) (*JWTCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	o := buildOptions("auth.jwt", opts)
	return &JWTCodec{
		secret: secret,
		opts:   o,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(o.now),
		),
	}, nil
}

// Issue signs a token for id that expires after the configured TTL.
func (c *JWTCodec) Issue(id Identity) (string, error) {
	if id.ID == "" {
		return "", ErrEmptyIdentity
	}

	now := c.opts.now()
	claims := sessionClaims{
		ID:    id.ID,
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry and returns the embedded identity.
func (c *JWTCodec) Verify(tokenString string) (Identity, bool) {
	if tokenString == "" {
		return Identity{}, false
	}

	var claims sessionClaims
	token, err := c.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.opts.logger.Debug("session token expired")
		} else {
			c.opts.logger.Warn("session token rejected", "error", err)
		}
		return Identity{}, false
	}
	if !token.Valid || claims.ID == "" {
		c.opts.logger.Warn("session token missing identity")
		return Identity{}, false
	}

	return Identity{ID: claims.ID, Email: claims.Email, Name: claims.Name}, true
}
