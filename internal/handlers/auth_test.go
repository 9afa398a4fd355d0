package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/menuboard/api/internal/access"
	"github.com/menuboard/api/internal/platform/auth"
	"github.com/menuboard/api/internal/platform/observability"
)

type stubPasswords struct {
	accounts map[string]string
	uids     map[string]string
}

func (s *stubPasswords) SignIn(_ context.Context, email, password string) (auth.SignInResult, error) {
	if s.accounts[email] != password {
		return auth.SignInResult{}, auth.ErrInvalidCredentials
	}
	return auth.SignInResult{UID: s.uids[email], Email: email, IDToken: "idtoken-" + email}, nil
}

type stubSessions struct {
	minted  []string
	revoked []string
	mintErr error
}

func (s *stubSessions) MintSessionCookie(_ context.Context, idToken string, _ time.Duration) (string, error) {
	if s.mintErr != nil {
		return "", s.mintErr
	}
	s.minted = append(s.minted, idToken)
	return "cookie-" + idToken, nil
}

func (s *stubSessions) RevokeSessions(_ context.Context, uid string) error {
	s.revoked = append(s.revoked, uid)
	return nil
}

type stubVerifier struct {
	// sessions maps cookie value to uid/email.
	sessions map[string][2]string
}

func (s *stubVerifier) VerifySessionCookie(_ context.Context, cookie string) (*firebaseauth.Token, error) {
	entry, ok := s.sessions[cookie]
	if !ok {
		return nil, auth.ErrSessionInvalid
	}
	return &firebaseauth.Token{UID: entry[0], Claims: map[string]any{"email": entry[1]}}, nil
}

func testPolicy() *access.Policy {
	return access.NewPolicy(
		[]string{"owner@trattoria.example"},
		[]string{"dev@studio.example"},
	)
}

func newAuthForTest(t *testing.T) (*AuthHandlers, *stubSessions, *stubVerifier) {
	t.Helper()
	passwords := &stubPasswords{
		accounts: map[string]string{
			"owner@trattoria.example": "pw-owner",
			"dev@studio.example":      "pw-dev",
			"stranger@example.com":    "pw-stranger",
		},
		uids: map[string]string{
			"owner@trattoria.example": "uid-owner",
			"dev@studio.example":      "uid-dev",
			"stranger@example.com":    "uid-stranger",
		},
	}
	sessions := &stubSessions{}
	verifier := &stubVerifier{sessions: map[string][2]string{
		"cookie-idtoken-owner@trattoria.example": {"uid-owner", "owner@trattoria.example"},
	}}
	h, err := NewAuthHandlers(AuthHandlersDeps{
		Passwords: passwords,
		Sessions:  sessions,
		Verifier:  verifier,
		Policy:    testPolicy(),
	})
	require.NoError(t, err)
	return h, sessions, verifier
}

func doLogin(t *testing.T, h *AuthHandlers, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLoginClientRedirect(t *testing.T) {
	h, sessions, _ := newAuthForTest(t)

	rec := doLogin(t, h, "owner@trattoria.example", "pw-owner")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, ClientPanelPath, resp.Redirect)
	require.Equal(t, "client", resp.Role)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "session", cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Len(t, sessions.minted, 1)
}

func TestLoginDeveloperRedirect(t *testing.T) {
	h, _, _ := newAuthForTest(t)

	rec := doLogin(t, h, "dev@studio.example", "pw-dev")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, DeveloperPanelPath, resp.Redirect)
	require.Equal(t, "developer", resp.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	h, sessions, _ := newAuthForTest(t)

	rec := doLogin(t, h, "owner@trattoria.example", "wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, sessions.minted)
	require.Empty(t, rec.Result().Cookies())
}

func TestLoginDeniedSignsOut(t *testing.T) {
	h, sessions, _ := newAuthForTest(t)

	rec := doLogin(t, h, "stranger@example.com", "pw-stranger")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, []string{"uid-stranger"}, sessions.revoked)
	require.Empty(t, sessions.minted)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestLoginMalformedPayload(t *testing.T) {
	h, _, _ := newAuthForTest(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doLogin(t, h, "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRevokesAndClears(t *testing.T) {
	h, sessions, _ := newAuthForTest(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-idtoken-owner@trattoria.example"})
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"uid-owner"}, sessions.revoked)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Negative(t, cookies[0].MaxAge)
}

func TestLogoutWithoutCookieStillClears(t *testing.T) {
	h, sessions, _ := newAuthForTest(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/admin/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, sessions.revoked)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestLoginLogsDecision(t *testing.T) {
	h, _, _ := newAuthForTest(t)

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := observability.WithLogger(context.Background(), zap.New(core))

	body, err := json.Marshal(map[string]string{"email": "owner@trattoria.example", "password": "pw-owner"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("login decision").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "owner@trattoria.example", fields["email"])
	require.Equal(t, "client", fields["role"])
}
