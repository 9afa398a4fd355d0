package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/menuboard/api/internal/access"
	"github.com/menuboard/api/internal/platform/auth"
	"github.com/menuboard/api/internal/platform/httpx"
	"github.com/menuboard/api/internal/platform/observability"
)

// Panel paths returned as login redirect targets.
const (
	ClientPanelPath    = "/adminpage"
	DeveloperPanelPath = "/admindev"
)

const defaultSessionTTL = 12 * time.Hour

// PasswordSignIn verifies email/password credentials.
type PasswordSignIn interface {
	SignIn(ctx context.Context, email, password string) (auth.SignInResult, error)
}

// SessionManager mints and revokes Firebase sessions.
type SessionManager interface {
	MintSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// AuthHandlers implements the generic login entry point and logout.
type AuthHandlers struct {
	passwords     PasswordSignIn
	sessions      SessionManager
	verifier      auth.SessionVerifier
	policy        *access.Policy
	cookieName    string
	sessionTTL    time.Duration
	secureCookies bool
}

// AuthHandlersDeps wires dependencies for AuthHandlers.
type AuthHandlersDeps struct {
	Passwords  PasswordSignIn
	Sessions   SessionManager
	Verifier   auth.SessionVerifier
	Policy     *access.Policy
	CookieName string
	SessionTTL time.Duration
	// SecureCookies marks the session cookie Secure; off for local dev.
	SecureCookies bool
}

// NewAuthHandlers constructs AuthHandlers.
func NewAuthHandlers(deps AuthHandlersDeps) (*AuthHandlers, error) {
	if deps.Passwords == nil {
		return nil, errors.New("auth handlers: password client is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("auth handlers: session manager is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("auth handlers: access policy is required")
	}
	cookieName := strings.TrimSpace(deps.CookieName)
	if cookieName == "" {
		cookieName = "session"
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthHandlers{
		passwords:     deps.Passwords,
		sessions:      deps.Sessions,
		verifier:      deps.Verifier,
		policy:        deps.Policy,
		cookieName:    cookieName,
		sessionTTL:    ttl,
		secureCookies: deps.SecureCookies,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Redirect string `json:"redirect"`
	Role     string `json:"role"`
}

// Login verifies credentials, classifies the principal, and either mints a
// session cookie with the panel redirect target or, for principals on
// neither allow-list, revokes the fresh session and answers 403.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed login payload", http.StatusBadRequest))
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "email and password are required", http.StatusBadRequest))
		return
	}

	result, err := h.passwords.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "email or password is incorrect", http.StatusUnauthorized))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "identity service unavailable", http.StatusServiceUnavailable))
		return
	}

	email := result.Email
	if email == "" {
		email = req.Email
	}

	decision := h.policy.Classify(email)
	observability.FromContext(ctx).Info("login decision",
		zap.String("email", observability.SanitizeEmail(email)),
		zap.String("role", decision.String()),
	)
	if decision == access.Denied {
		_ = h.sessions.RevokeSessions(ctx, result.UID)
		h.clearCookie(w)
		httpx.WriteError(ctx, w, httpx.NewError("access_denied", "account is not authorized for any panel", http.StatusForbidden))
		return
	}

	cookie, err := h.sessions.MintSessionCookie(ctx, result.IDToken, h.sessionTTL)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "could not establish session", http.StatusServiceUnavailable))
		return
	}
	h.setCookie(w, cookie)

	redirect := ClientPanelPath
	if decision == access.DeveloperAccess {
		redirect = DeveloperPanelPath
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, loginResponse{Redirect: redirect, Role: decision.String()})
}

// Logout revokes the refresh tokens behind the session, when one is
// present, and clears the cookie either way.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" && h.verifier != nil {
		if token, err := h.verifier.VerifySessionCookie(ctx, cookie.Value); err == nil {
			_ = h.sessions.RevokeSessions(ctx, token.UID)
		}
	}
	h.clearCookie(w)
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// ClearSessionCookie removes the session cookie with the same attributes
// Login sets it with. The developer panel uses it on denied principals.
func (h *AuthHandlers) ClearSessionCookie(w http.ResponseWriter) {
	h.clearCookie(w)
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandlers) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
