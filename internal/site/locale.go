package site

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// NegotiateLocale picks the locale to render. An explicit supported locale
// wins, then the best Accept-Language match, then the default.
func NegotiateLocale(requested, acceptLanguage string, supported []string, defaultLocale string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested != "" && slices.Contains(supported, requested) {
		return requested
	}
	if strings.TrimSpace(acceptLanguage) == "" || len(supported) == 0 {
		return defaultLocale
	}
	preferred, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(preferred) == 0 {
		return defaultLocale
	}

	tags := make([]language.Tag, 0, len(supported)+1)
	codes := make([]string, 0, len(supported)+1)
	// The matcher treats its first tag as the fallback, so the default goes
	// first.
	if slices.Contains(supported, defaultLocale) {
		tags = append(tags, language.Make(defaultLocale))
		codes = append(codes, defaultLocale)
	}
	for _, code := range supported {
		if code == defaultLocale {
			continue
		}
		tags = append(tags, language.Make(code))
		codes = append(codes, code)
	}
	if len(tags) == 0 {
		return defaultLocale
	}
	_, index, confidence := language.NewMatcher(tags).Match(preferred...)
	if confidence == language.No || index < 0 || index >= len(codes) {
		return defaultLocale
	}
	return codes[index]
}
