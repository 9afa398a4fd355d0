package auth

import (
	"context"
	"strings"
)

// Identity captures the authenticated principal details extracted from a Firebase session.
type Identity struct {
	UID   string
	Email string
}

// HasEmail reports whether the identity carries a usable email attribute.
func (i *Identity) HasEmail() bool {
	return i != nil && strings.TrimSpace(i.Email) != ""
}

type contextKey string

const identityContextKey contextKey = "github.com/menuboard/api/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
