// ABOUTME: Reduced session token codec for the edge gate runtime
// ABOUTME: Speaks the same HS256 compact format as JWTCodec using only HMAC primitives

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	errMalformedToken = errors.New("malformed token")
	errBadSignature   = errors.New("signature mismatch")
	errBadAlgorithm   = errors.New("unexpected signing algorithm")
	errExpired        = errors.New("token expired")
	errNotYetValid    = errors.New("token not valid yet")
)

var edgeHeader = mustEncodeSegment(map[string]string{"alg": "HS256", "typ": "JWT"})

// edgeClaims mirrors sessionClaims without depending on the jwt package.
type edgeClaims struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      string       `json:"name"`
	IssuedAt  *json.Number `json:"iat,omitempty"`
	ExpiresAt *json.Number `json:"exp,omitempty"`
	NotBefore *json.Number `json:"nbf,omitempty"`
}

// EdgeCodec implements Codec with nothing but HMAC-SHA256 and base64url.
type EdgeCodec struct {
	secret []byte
	opts   codecOptions
}

// NewEdgeCodec creates an edge codec with the given secret.
func NewEdgeCodec(secret []byte, opts ...Option) (*EdgeCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	return &EdgeCodec{secret: secret, opts: buildOptions("auth.edge", opts)}, nil
}

// Issue signs a token for id. Output is interchangeable with JWTCodec.Issue.
func (c *EdgeCodec) Issue(id Identity) (string, error) {
	if id.ID == "" {
		return "", ErrEmptyIdentity
	}

	now := c.opts.now()
	iat := json.Number(fmt.Sprint(now.Unix()))
	exp := json.Number(fmt.Sprint(now.Add(c.opts.ttl).Unix()))
	payload, err := encodeSegment(edgeClaims{
		ID:        id.ID,
		Email:     id.Email,
		Name:      id.Name,
		IssuedAt:  &iat,
		ExpiresAt: &exp,
	})
	if err != nil {
		return "", fmt.Errorf("encoding claims: %w", err)
	}

	signingInput := edgeHeader + "." + payload
	return signingInput + "." + c.sign(signingInput), nil
}

// Verify validates signature and expiry and returns the embedded identity.
func (c *EdgeCodec) Verify(token string) (Identity, bool) {
	claims, err := c.parse(token)
	if err != nil {
		if errors.Is(err, errExpired) {
			c.opts.logger.Debug("session token expired")
		} else {
			c.opts.logger.Warn("session token rejected", "error", err)
		}
		return Identity{}, false
	}
	return Identity{ID: claims.ID, Email: claims.Email, Name: claims.Name}, true
}

func (c *EdgeCodec) parse(token string) (*edgeClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, errMalformedToken
	}

	var header struct {
		Alg string `json:"alg"`
	}
	if err := decodeSegment(parts[0], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", errMalformedToken, err)
	}
	if header.Alg != "HS256" {
		return nil, fmt.Errorf("%w: %q", errBadAlgorithm, header.Alg)
	}

	sig, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", errMalformedToken, err)
	}
	if !hmac.Equal(sig, c.mac(parts[0]+"."+parts[1])) {
		return nil, errBadSignature
	}

	var claims edgeClaims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", errMalformedToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing id", errMalformedToken)
	}

	now := c.opts.now()
	exp, err := numericDate(claims.ExpiresAt)
	if err != nil || exp.IsZero() {
		return nil, fmt.Errorf("%w: exp", errMalformedToken)
	}
	if !now.Before(exp) {
		return nil, errExpired
	}
	if nbf, err := numericDate(claims.NotBefore); err != nil {
		return nil, fmt.Errorf("%w: nbf", errMalformedToken)
	} else if !nbf.IsZero() && now.Before(nbf) {
		return nil, errNotYetValid
	}

	return &claims, nil
}

func (c *EdgeCodec) mac(signingInput string) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(signingInput))
	return h.Sum(nil)
}

func (c *EdgeCodec) sign(signingInput string) string {
	return base64.RawURLEncoding.EncodeToString(c.mac(signingInput))
}

// numericDate converts a JSON NumericDate into a time. Nil yields the zero time.
func numericDate(n *json.Number) (time.Time, error) {
	if n == nil {
		return time.Time{}, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, errMalformedToken
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)), nil
}

func encodeSegment(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func mustEncodeSegment(v any) string {
	s, err := encodeSegment(v)
	if err != nil {
		panic(err)
	}
	return s
}

// segmentEncoding rejects non-zero padding bits, so every character of a
// segment is significant.
var segmentEncoding = base64.RawURLEncoding.Strict()

func decodeSegment(seg string, v any) error {
	b, err := segmentEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
