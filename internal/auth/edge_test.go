// ABOUTME: Tests for the HMAC-only edge codec
// ABOUTME: Covers cross-acceptance with JWTCodec, expiry, and tampering

package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEdgeCodec(t *testing.T, opts ...Option) *EdgeCodec {
	t.Helper()
	codec, err := NewEdgeCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func TestNewEdgeCodec_ShortSecret(t *testing.T) {
	_, err := NewEdgeCodec(nil)
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestEdgeCodec_RoundTrip(t *testing.T) {
	codec := newTestEdgeCodec(t)

	token, err := codec.Issue(testIdentity)
	require.NoError(t, err)

	got, ok := codec.Verify(token)
	require.True(t, ok)
	assert.Equal(t, testIdentity, got)
}

func TestCodecs_AcceptEachOther(t *testing.T) {
	full := newTestJWTCodec(t)
	edge := newTestEdgeCodec(t)

	fromFull, err := full.Issue(testIdentity)
	require.NoError(t, err)
	fromEdge, err := edge.Issue(testIdentity)
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier Verifier
		token    string
	}{
		{name: "edge verifies full", verifier: edge, token: fromFull},
		{name: "full verifies edge", verifier: full, token: fromEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.verifier.Verify(tt.token)
			require.True(t, ok)
			assert.Equal(t, testIdentity, got)
		})
	}
}

func TestEdgeCodec_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	now := issuedAt
	clock := WithClock(func() time.Time { return now })
	edge := newTestEdgeCodec(t, clock)
	full := newTestJWTCodec(t, clock)

	token, err := full.Issue(testIdentity)
	require.NoError(t, err)

	now = issuedAt.Add(TokenTTL - time.Second)
	_, ok := edge.Verify(token)
	assert.True(t, ok)

	now = issuedAt.Add(TokenTTL)
	_, ok = edge.Verify(token)
	assert.False(t, ok, "a token is invalid from its exp second onward")
}

func TestEdgeCodec_RejectsTampering(t *testing.T) {
	edge := newTestEdgeCodec(t)
	token, err := newTestJWTCodec(t).Issue(testIdentity)
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	forged := forgeClaims(t, parts[1], func(c map[string]any) { c["email"] = "attacker@example.com" })
	algNone := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	other, err := NewEdgeCodec([]byte("a-completely-different-secret-32!"))
	require.NoError(t, err)
	otherToken, err := other.Issue(testIdentity)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "two segments", token: parts[0] + "." + parts[1]},
		{name: "four segments", token: token + ".x"},
		{name: "forged claims", token: parts[0] + "." + forged + "." + parts[2]},
		{name: "flipped payload char", token: parts[0] + "." + flipChar(parts[1], 5) + "." + parts[2]},
		{name: "flipped signature char", token: parts[0] + "." + parts[1] + "." + flipChar(parts[2], 0)},
		{name: "alg none header", token: algNone + "." + parts[1] + "." + parts[2]},
		{name: "alg none empty signature", token: algNone + "." + parts[1] + "."},
		{name: "bad base64 signature", token: parts[0] + "." + parts[1] + ".!!!"},
		{name: "wrong secret", token: otherToken},
	}
	for i, sig := range lastCharVariants(parts[2]) {
		tests = append(tests, struct {
			name  string
			token string
		}{name: fmt.Sprintf("last signature char changed %d", i), token: parts[0] + "." + parts[1] + "." + sig})
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := edge.Verify(tt.token)
			assert.False(t, ok)
			assert.Equal(t, Identity{}, got)
		})
	}
}

func TestEdgeCodec_RequiresExp(t *testing.T) {
	edge := newTestEdgeCodec(t)

	payload, err := json.Marshal(map[string]any{"id": "admin-1"})
	require.NoError(t, err)
	input := edgeHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	token := input + "." + edge.sign(input)

	_, ok := edge.Verify(token)
	assert.False(t, ok)
}

func TestEdgeCodec_NotBefore(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	edge := newTestEdgeCodec(t, WithClock(func() time.Time { return now }))

	payload, err := json.Marshal(map[string]any{
		"id":  "admin-1",
		"exp": now.Add(time.Hour).Unix(),
		"nbf": now.Add(time.Minute).Unix(),
	})
	require.NoError(t, err)
	input := edgeHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	token := input + "." + edge.sign(input)

	_, ok := edge.Verify(token)
	assert.False(t, ok)
}

func forgeClaims(t *testing.T, segment string, mutate func(map[string]any)) string {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	require.NoError(t, err)
	claims := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &claims))
	mutate(claims)
	out, err := json.Marshal(claims)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(out)
}
