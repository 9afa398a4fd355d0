package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
)

type stubAccessor struct {
	responses map[string]string
	err       error
	calls     []string
}

func (s *stubAccessor) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	s.calls = append(s.calls, req.GetName())
	if s.err != nil {
		return nil, s.err
	}
	value, ok := s.responses[req.GetName()]
	if !ok {
		return nil, errors.New("not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}, nil
}

func TestResolveFromSecretManager(t *testing.T) {
	accessor := &stubAccessor{responses: map[string]string{
		"projects/menu-demo/secrets/web-api-key/versions/latest": "api-key-value",
	}}

	fetcher, err := NewFetcher(context.Background(), WithAccessor(accessor), WithProject("menu-demo"))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.Resolve(context.Background(), "secret://web-api-key")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "api-key-value" {
		t.Fatalf("unexpected value %q", value)
	}

	// Second resolution is served from cache.
	if _, err := fetcher.Resolve(context.Background(), "secret://web-api-key"); err != nil {
		t.Fatalf("Resolve cached: %v", err)
	}
	if len(accessor.calls) != 1 {
		t.Fatalf("expected one remote call, got %d", len(accessor.calls))
	}
}

func TestResolveVersionPin(t *testing.T) {
	accessor := &stubAccessor{responses: map[string]string{
		"projects/menu-demo/secrets/web-api-key/versions/4": "pinned",
	}}
	fetcher, err := NewFetcher(context.Background(), WithAccessor(accessor), WithProject("menu-demo"))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.Resolve(context.Background(), "secret://web-api-key?version=4")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "pinned" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestResolveFallbackFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".secrets.local")
	if err := os.WriteFile(path, []byte("# local secrets\nweb-api-key=local-value\n"), 0o600); err != nil {
		t.Fatalf("write fallback: %v", err)
	}

	accessor := &stubAccessor{err: errors.New("unavailable")}
	fetcher, err := NewFetcher(context.Background(), WithAccessor(accessor), WithProject("menu-demo"), WithFallbackFile(path))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.Resolve(context.Background(), "secret://web-api-key")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "local-value" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestResolveUnknownReference(t *testing.T) {
	fetcher, err := NewFetcher(context.Background(), WithAccessor(&stubAccessor{}), WithProject("menu-demo"))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	if _, err := fetcher.Resolve(context.Background(), "secret://missing"); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
	if _, err := fetcher.Resolve(context.Background(), "env://nope"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
