package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/menuboard/api/internal/store"
)

func newSettingsForTest(t *testing.T) (SettingsService, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	svc, err := NewSettingsService(SettingsServiceDeps{Store: mem})
	if err != nil {
		t.Fatalf("NewSettingsService: %v", err)
	}
	return svc, mem
}

func TestSettingsSaveMerges(t *testing.T) {
	svc, _ := newSettingsForTest(t)
	ctx := context.Background()

	if err := svc.Save(ctx, SettingsCommand{Title: "Trattoria", Phone: "+39 06 123"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Save(ctx, SettingsCommand{Address: "Via Roma 1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.Title != "Trattoria" || settings.Phone != "+39 06 123" || settings.Address != "Via Roma 1" {
		t.Fatalf("merge lost fields: %+v", settings)
	}
}

func TestSettingsSaveSanitizesAbout(t *testing.T) {
	svc, _ := newSettingsForTest(t)
	ctx := context.Background()

	if err := svc.Save(ctx, SettingsCommand{
		About: `Family kitchen <script>alert(1)</script><b>since 1962</b>`,
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if strings.Contains(settings.About, "<script>") {
		t.Fatalf("script tag survived sanitization: %q", settings.About)
	}
	if !strings.Contains(settings.About, "<b>since 1962</b>") {
		t.Fatalf("benign markup should survive: %q", settings.About)
	}
}

func TestSettingsSaveValidatesMapURL(t *testing.T) {
	svc, _ := newSettingsForTest(t)
	ctx := context.Background()

	for _, bad := range []string{"javascript:alert(1)", "ftp://maps.example.com", "/relative/embed"} {
		if err := svc.Save(ctx, SettingsCommand{MapURL: bad}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", bad, err)
		}
	}
	if err := svc.Save(ctx, SettingsCommand{MapURL: "https://maps.example.com/embed?pb=1"}); err != nil {
		t.Fatalf("valid map url rejected: %v", err)
	}
}

func TestSettingsSaveEmptyCommand(t *testing.T) {
	svc, _ := newSettingsForTest(t)
	if err := svc.Save(context.Background(), SettingsCommand{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSettingsSaveKeepsOpacityAsSubmitted(t *testing.T) {
	svc, _ := newSettingsForTest(t)
	ctx := context.Background()

	if err := svc.Save(ctx, SettingsCommand{HeroOverlayOpacity: "0.5"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	settings, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.HeroOverlayOpacity != "0.5" {
		t.Fatalf("opacity should round-trip untyped: %v", settings.HeroOverlayOpacity)
	}
}
