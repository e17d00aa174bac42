// ABOUTME: Unit tests for the golang-jwt session token codec
// ABOUTME: Tests round trips, expiry, tampering, and wrong-key or wrong-algorithm tokens

package auth

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSecret is a 32-byte secret that meets MinSecretLength requirement.
var testSecret = []byte("nubarmory-token-test-secret-32b!")

var testIdentity = Identity{
	ID:    "0f8c7f0e-5b7a-4c53-9d1e-2f0d5b1e6a11",
	Email: "admin@nubarmory.com",
	Name:  "NubArmory Admin",
}

func newTestJWTCodec(t *testing.T, opts ...Option) *JWTCodec {
	t.Helper()
	codec, err := NewJWTCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func TestNewJWTCodec_ShortSecret(t *testing.T) {
	_, err := NewJWTCodec([]byte("too-short"))
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := newTestJWTCodec(t)

	token, err := codec.Issue(testIdentity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, testIdentity, got)
}

func TestJWTCodec_IssueRequiresID(t *testing.T) {
	codec := newTestJWTCodec(t)

	_, err := codec.Issue(Identity{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}

func TestJWTCodec_ExpiresAfterSevenDays(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	codec := newTestJWTCodec(t, WithClock(func() time.Time { return now }))

	token, err := codec.Issue(testIdentity)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour).Unix(), exp.Unix())

	now = issuedAt.Add(7*24*time.Hour - time.Minute)
	_, ok := codec.Verify(token)
	assert.True(t, ok, "token should still be valid just before expiry")

	now = issuedAt.Add(7*24*time.Hour + time.Second)
	_, ok = codec.Verify(token)
	assert.False(t, ok, "token should be rejected after expiry")
}

func TestJWTCodec_ExpiredTokenRejected(t *testing.T) {
	past := time.Now().Add(-8 * 24 * time.Hour)
	issuer := newTestJWTCodec(t, WithClock(func() time.Time { return past }))

	token, err := issuer.Issue(testIdentity)
	require.NoError(t, err)

	verifier := newTestJWTCodec(t)
	_, ok := verifier.Verify(token)
	assert.False(t, ok)
}

func TestJWTCodec_InvalidTokens(t *testing.T) {
	codec := newTestJWTCodec(t)
	valid, err := codec.Issue(testIdentity)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)

	otherCodec, err := NewJWTCodec([]byte("a-completely-different-secret-32!"))
	require.NoError(t, err)
	otherKeyToken, err := otherCodec.Issue(testIdentity)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  testIdentity.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs384Token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"id":  testIdentity.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExpToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": testIdentity.ID,
	}).SignedString(testSecret)
	require.NoError(t, err)

	noIDToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": testIdentity.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
		{name: "wrong secret", token: otherKeyToken},
		{name: "alg none", token: noneToken},
		{name: "HS384", token: hs384Token},
		{name: "missing exp", token: noExpToken},
		{name: "missing id", token: noIDToken},
		{name: "tampered payload", token: parts[0] + "." + flipChar(parts[1], len(parts[1])/2) + "." + parts[2]},
		{name: "tampered signature", token: parts[0] + "." + parts[1] + "." + flipChar(parts[2], 0)},
		{name: "truncated", token: parts[0] + "." + parts[1]},
	}
	for i, sig := range lastCharVariants(parts[2]) {
		tests = append(tests, struct {
			name  string
			token string
		}{name: fmt.Sprintf("last signature char changed %d", i), token: parts[0] + "." + parts[1] + "." + sig})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := codec.Verify(tt.token)
			assert.False(t, ok)
			assert.Equal(t, Identity{}, got)
		})
	}
}

// flipChar swaps the base64url character at i for a different one.
// lastCharVariants returns s with its final character replaced by every other
// base64url character.
func lastCharVariants(s string) []string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := s[len(s)-1]
	variants := make([]string, 0, len(alphabet)-1)
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == last {
			continue
		}
		variants = append(variants, s[:len(s)-1]+string(alphabet[i]))
	}
	return variants
}

func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
