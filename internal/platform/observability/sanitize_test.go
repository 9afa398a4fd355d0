package observability

import (
	"strings"
	"testing"
)

func TestSanitizeEmailStripsControlCharacters(t *testing.T) {
	got := SanitizeEmail("owner@trattoria.example\r\n\x00")
	if got != "owner@trattoria.example" {
		t.Fatalf("unexpected sanitized email %q", got)
	}
}

func TestSanitizeEmailCapsLength(t *testing.T) {
	long := strings.Repeat("a", 200) + "@trattoria.example"
	got := SanitizeEmail(long)
	if len(got) != 120 {
		t.Fatalf("expected 120 runes, got %d", len(got))
	}
}

func TestSanitizeRouteDefaultsToRoot(t *testing.T) {
	if got := SanitizeRoute(""); got != "/" {
		t.Fatalf("unexpected route %q", got)
	}
}
