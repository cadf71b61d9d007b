package i18n

import "strings"

// Config lists the locales a translator serves. DefaultLocale is the last
// fallback for every lookup.
type Config struct {
	DefaultLocale string   `json:"default_locale"`
	Locales       []string `json:"locales"`
}

// FromModuleConfig builds a Config from the runtime configuration values.
func FromModuleConfig(defaultLocale string, locales []string) Config {
	return Config{
		DefaultLocale: normalizeLocale(defaultLocale),
		Locales:       normalizeLocales(locales),
	}
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

func normalizeLocales(locales []string) []string {
	out := make([]string, 0, len(locales))
	seen := map[string]struct{}{}
	for _, locale := range locales {
		locale = normalizeLocale(locale)
		if locale == "" {
			continue
		}
		if _, ok := seen[locale]; ok {
			continue
		}
		seen[locale] = struct{}{}
		out = append(out, locale)
	}
	return out
}
