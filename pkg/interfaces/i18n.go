package interfaces

// Translator resolves a translation key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler produces the fallback text rendered when a key
// cannot be resolved.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// LocaleService exposes the configured locales alongside the translator.
type LocaleService interface {
	Translator() Translator
	DefaultLocale() string
	Locales() []string
}
