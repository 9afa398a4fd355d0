package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	identityToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"
	signInTimeout          = 10 * time.Second
)

// ErrInvalidCredentials is returned when the identity service rejects the email/password pair.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// SignInResult carries the principal attributes returned by a successful password sign-in.
type SignInResult struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

// PasswordClient verifies email/password pairs against the Firebase Identity Toolkit REST API.
type PasswordClient struct {
	client *resty.Client
	apiKey string
}

// PasswordClientOption customises PasswordClient construction.
type PasswordClientOption func(*PasswordClient)

// WithBaseURL overrides the Identity Toolkit endpoint (emulator or tests).
func WithBaseURL(baseURL string) PasswordClientOption {
	return func(c *PasswordClient) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.client.SetBaseURL(trimmed)
		}
	}
}

// NewPasswordClient constructs a PasswordClient using the given web API key.
func NewPasswordClient(apiKey string, opts ...PasswordClientOption) (*PasswordClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("auth: web api key is required")
	}

	client := &PasswordClient{
		client: resty.New().
			SetBaseURL(identityToolkitBaseURL).
			SetTimeout(signInTimeout),
		apiKey: apiKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type signInErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn verifies the email/password pair and returns the signed-in principal.
func (c *PasswordClient) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	if c == nil || c.client == nil {
		return SignInResult{}, errors.New("auth: password client not initialised")
	}

	var success signInResponse
	var failure signInErrorResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&success).
		SetError(&failure).
		Post("/accounts:signInWithPassword")
	if err != nil {
		return SignInResult{}, fmt.Errorf("auth: sign in request: %w", err)
	}

	if resp.IsError() {
		switch failure.Error.Message {
		case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
			return SignInResult{}, ErrInvalidCredentials
		default:
			return SignInResult{}, fmt.Errorf("auth: sign in failed: %s", failure.Error.Message)
		}
	}

	return SignInResult{
		UID:          success.LocalID,
		Email:        success.Email,
		IDToken:      success.IDToken,
		RefreshToken: success.RefreshToken,
	}, nil
}
