package auth

import (
	"context"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/menuboard/api/internal/platform/httpx"
)

// SessionVerifier validates session cookies issued at login.
type SessionVerifier interface {
	VerifySessionCookie(ctx context.Context, cookie string) (*firebaseauth.Token, error)
}

// Authenticator wires Firebase session verification into HTTP middleware.
type Authenticator struct {
	verifier   SessionVerifier
	cookieName string
}

// AuthenticatorOption customises Authenticator behaviour.
type AuthenticatorOption func(*Authenticator)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) AuthenticatorOption {
	return func(a *Authenticator) {
		name = strings.TrimSpace(name)
		if name != "" {
			a.cookieName = name
		}
	}
}

// NewAuthenticator constructs an Authenticator backed by the provided verifier.
func NewAuthenticator(verifier SessionVerifier, opts ...AuthenticatorOption) *Authenticator {
	authenticator := &Authenticator{
		verifier:   verifier,
		cookieName: "session",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(authenticator)
		}
	}
	return authenticator
}

// CookieName returns the configured session cookie name.
func (a *Authenticator) CookieName() string {
	if a == nil {
		return "session"
	}
	return a.cookieName
}

// RequireSession enforces a valid session cookie and stores the Identity on the context.
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	if next == nil {
		next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if a == nil || a.verifier == nil {
			httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "authentication not configured", http.StatusServiceUnavailable))
			return
		}

		cookie, err := r.Cookie(a.cookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in required", http.StatusUnauthorized))
			return
		}

		token, err := a.verifier.VerifySessionCookie(ctx, cookie.Value)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "session expired or invalid", http.StatusUnauthorized))
			return
		}

		identity := &Identity{
			UID:   token.UID,
			Email: emailClaim(token),
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

func emailClaim(token *firebaseauth.Token) string {
	if token == nil {
		return ""
	}
	if email, ok := token.Claims["email"].(string); ok {
		return strings.TrimSpace(email)
	}
	return ""
}
