package config

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"MENU_FIREBASE_PROJECT_ID":   "menu-demo",
			"MENU_FIREBASE_DATABASE_URL": "https://menu-demo-default-rtdb.europe-west1.firebasedatabase.app",
		}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Backend != "firebase" {
		t.Fatalf("unexpected store backend %q", cfg.Store.Backend)
	}
	if cfg.Session.CookieName != "session" {
		t.Fatalf("unexpected session cookie %q", cfg.Session.CookieName)
	}
	if cfg.Store.PollInterval != 3*time.Second {
		t.Fatalf("unexpected poll interval %v", cfg.Store.PollInterval)
	}
}

func TestLoadAccessLists(t *testing.T) {
	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"MENU_STORE_BACKEND":     "memory",
			"MENU_ACCESS_CLIENTS":    "owner@example.com , ",
			"MENU_ACCESS_DEVELOPERS": "dev@example.com,ops@example.com",
		}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Access.Clients) != 1 || cfg.Access.Clients[0] != "owner@example.com" {
		t.Fatalf("unexpected clients %#v", cfg.Access.Clients)
	}
	if len(cfg.Access.Developers) != 2 {
		t.Fatalf("unexpected developers %#v", cfg.Access.Developers)
	}
}

func TestLoadMissingFirebaseFields(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{}))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := validation.Fields()
	if len(fields) != 2 {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref != "secret://menu/web-api-key" {
			t.Fatalf("unexpected ref %q", ref)
		}
		return "resolved-key", nil
	})

	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithSecretResolver(resolver),
		WithEnvMap(map[string]string{
			"MENU_STORE_BACKEND":        "memory",
			"MENU_FIREBASE_WEB_API_KEY": "secret://menu/web-api-key",
		}),
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Firebase.WebAPIKey != "resolved-key" {
		t.Fatalf("expected resolved key, got %q", cfg.Firebase.WebAPIKey)
	}
}

func TestLoadSecretResolverMissing(t *testing.T) {
	_, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"MENU_STORE_BACKEND":        "memory",
			"MENU_FIREBASE_WEB_API_KEY": "secret://menu/web-api-key",
		}),
	)
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %v", err)
	}
}

func TestLoadBootstrapSecretsProject(t *testing.T) {
	boot, err := LoadBootstrap(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"MENU_SECRETS_PROJECT":       "menu-secrets",
			"MENU_SECRETS_FALLBACK_FILE": "/etc/menu/secrets.env",
		}),
	)
	if err != nil {
		t.Fatalf("LoadBootstrap: %v", err)
	}
	if boot.SecretsProject != "menu-secrets" {
		t.Fatalf("unexpected secrets project %q", boot.SecretsProject)
	}
	if boot.SecretsFallbackFile != "/etc/menu/secrets.env" {
		t.Fatalf("unexpected fallback file %q", boot.SecretsFallbackFile)
	}
}

func TestLoadBootstrapFallsBackToFirebaseProject(t *testing.T) {
	boot, err := LoadBootstrap(
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"MENU_FIREBASE_PROJECT_ID": "menu-demo",
		}),
	)
	if err != nil {
		t.Fatalf("LoadBootstrap: %v", err)
	}
	if boot.SecretsProject != "menu-demo" {
		t.Fatalf("unexpected secrets project %q", boot.SecretsProject)
	}
	if boot.SecretsFallbackFile != "" {
		t.Fatalf("unexpected fallback file %q", boot.SecretsFallbackFile)
	}
}
