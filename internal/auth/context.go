// ABOUTME: Request context helpers for the authenticated admin identity
// ABOUTME: Provides WithIdentity/FromContext for handlers behind the route guard

package auth

import (
	"context"
)

// identityContextKey is the key type for storing the Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context carrying the verified admin identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the admin identity, reporting whether one was present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

// MustFromContext retrieves the admin identity, panicking if not present.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic("auth: Identity not found in context")
	}
	return id
}
