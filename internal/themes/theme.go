package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	ErrThemeCodeInvalid = errors.New("themes: theme code is invalid")
	ErrThemeExists      = errors.New("themes: theme already registered")
	ErrThemeNotFound    = errors.New("themes: theme not found")
	ErrVariantUnknown   = errors.New("themes: variant not offered by theme")
)

// DefaultCode names the built-in theme.
const DefaultCode = "default"

// Theme describes a public site theme.
type Theme struct {
	Code          string            `json:"code"`
	Names         map[string]string `json:"names"`
	Version       string            `json:"version"`
	Variants      []string          `json:"variants,omitempty"`
	MenuLocations []string          `json:"menu_locations,omitempty"`
	Assets        Assets            `json:"assets"`
	PrimaryColor  string            `json:"primary_color,omitempty"`
}

// Assets lists the stylesheet and script files of a theme, relative to
// BasePath.
type Assets struct {
	BasePath string   `json:"base_path,omitempty"`
	Styles   []string `json:"styles,omitempty"`
	Scripts  []string `json:"scripts,omitempty"`
}

// Name returns the localized theme name.
func (t Theme) Name(locale, fallback string) string {
	if name := strings.TrimSpace(t.Names[locale]); name != "" {
		return name
	}
	if name := strings.TrimSpace(t.Names[fallback]); name != "" {
		return name
	}
	return t.Code
}

// HasVariant reports whether variant is offered. The empty variant always is.
func (t Theme) HasVariant(variant string) bool {
	return variant == "" || slices.Contains(t.Variants, variant)
}

// Builtin is the theme used when nothing else is registered or selected.
func Builtin() Theme {
	return Theme{
		Code:          DefaultCode,
		Names:         map[string]string{"ms": "Lalai", "en": "Default"},
		Version:       "1.0.0",
		Variants:      []string{"light", "high-contrast"},
		MenuLocations: []string{"header", "footer"},
		Assets: Assets{
			BasePath: "themes/default",
			Styles:   []string{"css/site.css"},
			Scripts:  []string{"js/site.js"},
		},
		PrimaryColor: "#0b3d91",
	}
}

// ParseManifest decodes a theme.json document.
func ParseManifest(r io.Reader) (Theme, error) {
	var theme Theme
	if err := json.NewDecoder(r).Decode(&theme); err != nil {
		return Theme{}, fmt.Errorf("themes: parse manifest: %w", err)
	}
	if strings.TrimSpace(theme.Version) == "" {
		return Theme{}, fmt.Errorf("themes: manifest %q missing version", theme.Code)
	}
	return theme, nil
}

// NormalizeCode canonicalises a theme code.
func NormalizeCode(code string) (string, error) {
	normalized, err := slug.Normalize(strings.TrimSpace(code))
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return "", fmt.Errorf("%w: %q", ErrThemeCodeInvalid, code)
	}
	return normalized, nil
}
