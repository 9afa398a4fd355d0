package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/menuboard/api/internal/platform/config"
)

const defaultVerifyTimeout = 5 * time.Second

var (
	// ErrSessionExpired signals that the session cookie has expired or was revoked.
	ErrSessionExpired = errors.New("auth: session expired")
	// ErrSessionInvalid signals that the session cookie is invalid for other reasons.
	ErrSessionInvalid = errors.New("auth: session invalid")
)

// FirebaseVerifier coordinates Firebase Admin SDK initialisation for session management.
type FirebaseVerifier struct {
	client  *firebaseauth.Client
	timeout time.Duration
}

// FirebaseOption customises FirebaseVerifier instances.
type FirebaseOption func(*FirebaseVerifier)

// WithFirebaseTimeout overrides the timeout used for Admin SDK calls.
func WithFirebaseTimeout(d time.Duration) FirebaseOption {
	return func(v *FirebaseVerifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewFirebaseApp initialises the Admin SDK app shared by the auth and
// database clients.
func NewFirebaseApp(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID, DatabaseURL: cfg.DatabaseURL}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}
	return app, nil
}

// NewFirebaseVerifier constructs a FirebaseVerifier over an initialised app.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App, opts ...FirebaseOption) (*FirebaseVerifier, error) {
	if app == nil {
		return nil, errors.New("firebase app is required")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase auth client: %w", err)
	}

	verifier := &FirebaseVerifier{
		client:  authClient,
		timeout: defaultVerifyTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(verifier)
		}
	}

	return verifier, nil
}

// MintSessionCookie exchanges a verified ID token for a session cookie valid for ttl.
func (v *FirebaseVerifier) MintSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	if v == nil || v.client == nil {
		return "", errors.New("firebase verifier not initialised")
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}

	return v.client.SessionCookie(ctx, idToken, ttl)
}

// VerifySessionCookie validates the session cookie and checks for revocation.
func (v *FirebaseVerifier) VerifySessionCookie(ctx context.Context, cookie string) (*firebaseauth.Token, error) {
	if v == nil || v.client == nil {
		return nil, errors.New("firebase verifier not initialised")
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}

	token, err := v.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		switch {
		case firebaseauth.IsSessionCookieExpired(err), firebaseauth.IsSessionCookieRevoked(err):
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
		}
	}
	return token, nil
}

// RevokeSessions invalidates every outstanding session for the given UID.
func (v *FirebaseVerifier) RevokeSessions(ctx context.Context, uid string) error {
	if v == nil || v.client == nil {
		return errors.New("firebase verifier not initialised")
	}

	ctx, cancel := v.contextWithTimeout(ctx)
	if cancel != nil {
		defer cancel()
	}

	return v.client.RevokeRefreshTokens(ctx, uid)
}

func (v *FirebaseVerifier) contextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if v == nil || v.timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, v.timeout)
}
