package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

const (
	defaultOverlayHex     = "#000000"
	defaultOverlayOpacity = 0.35
	defaultHeroTextColor  = "#ffffff"
)

// Overlay derives the hero overlay color from the stored hex color and
// opacity. The hex accepts 3 or 6 digits with or without the leading hash,
// the 3-digit form expanding by doubling each digit; an absent or broken
// value falls back to black. Opacity arrives as a number or a numeric
// string, defaults to 0.35 when unparsable, and clamps to [0, 1].
func Overlay(hex string, opacityRaw any) string {
	n := parseHex(hex)
	r := (n >> 16) & 255
	g := (n >> 8) & 255
	b := n & 255
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(parseOpacity(opacityRaw)))
}

// HeroTextColor returns the stored hero title color, defaulting to white.
// The value is inserted as-is, no validation.
func HeroTextColor(stored string) string {
	if strings.TrimSpace(stored) == "" {
		return defaultHeroTextColor
	}
	return stored
}

func parseHex(hex string) uint32 {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if hex == "" {
		hex = strings.TrimPrefix(defaultOverlayHex, "#")
	}
	if len(hex) == 3 {
		var expanded strings.Builder
		for _, c := range hex {
			expanded.WriteRune(c)
			expanded.WriteRune(c)
		}
		hex = expanded.String()
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return 0
	}
	return uint32(n)
}

func parseOpacity(raw any) float64 {
	if raw == nil {
		return defaultOverlayOpacity
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(value) {
		return defaultOverlayOpacity
	}
	return math.Min(1, math.Max(0, value))
}

// formatAlpha keeps whole alphas short (1, not 1.000000) and trims trailing
// zeros from fractional ones, matching how a browser prints the value.
func formatAlpha(alpha float64) string {
	return strconv.FormatFloat(alpha, 'g', -1, 64)
}
