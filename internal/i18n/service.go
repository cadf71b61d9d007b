package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

// ErrMissingTranslation is returned alongside the fallback text when no
// locale in the chain defines a key.
var ErrMissingTranslation = errors.New("i18n: missing translation")

// Service exposes the translator together with locale configuration.
type Service interface {
	interfaces.LocaleService
}

// Option configures the in-memory service.
type Option func(*translator)

// WithMissingHandler overrides the text rendered for unknown keys. The
// default renders the key itself.
func WithMissingHandler(handler interfaces.MissingTranslationHandler) Option {
	return func(t *translator) {
		if handler != nil {
			t.missing = handler
		}
	}
}

type service struct {
	cfg        Config
	translator *translator
}

// NewInMemoryService builds a service over translations keyed by locale.
func NewInMemoryService(cfg Config, translations map[string]map[string]string, opts ...Option) (Service, error) {
	cfg = FromModuleConfig(cfg.DefaultLocale, cfg.Locales)
	if cfg.DefaultLocale == "" {
		return nil, errors.New("i18n: default locale is required")
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{cfg.DefaultLocale}
	}

	catalog := make(map[string]map[string]string, len(translations))
	for locale, messages := range translations {
		locale = normalizeLocale(locale)
		if locale == "" {
			continue
		}
		if catalog[locale] == nil {
			catalog[locale] = make(map[string]string, len(messages))
		}
		for key, value := range messages {
			catalog[locale][strings.TrimSpace(key)] = value
		}
	}

	t := &translator{
		defaultLocale: cfg.DefaultLocale,
		catalog:       catalog,
		missing: func(_ string, key string, _ []any, _ error) string {
			return key
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return &service{cfg: cfg, translator: t}, nil
}

// NewDefaultService builds a service over the embedded bundle, narrowed to
// the given configuration.
func NewDefaultService(cfg Config, opts ...Option) (Service, error) {
	bundle, err := DefaultBundle()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		cfg = bundle.Config
	}
	return NewInMemoryService(cfg, bundle.Translations, opts...)
}

// LoadService builds a service over the embedded bundle overlaid with the
// bundle file at path. An empty path is NewDefaultService.
func LoadService(ctx context.Context, cfg Config, path string, opts ...Option) (Service, error) {
	if strings.TrimSpace(path) == "" {
		return NewDefaultService(cfg, opts...)
	}
	base, err := DefaultBundle()
	if err != nil {
		return nil, err
	}
	overlay, err := NewLoader(path).Load(ctx)
	if err != nil {
		return nil, err
	}
	merged := Overlay(base, overlay)
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		cfg = merged.Config
	}
	return NewInMemoryService(cfg, merged.Translations, opts...)
}

func (s *service) Translator() interfaces.Translator {
	return s.translator
}

func (s *service) DefaultLocale() string {
	return s.cfg.DefaultLocale
}

func (s *service) Locales() []string {
	return append([]string(nil), s.cfg.Locales...)
}

type translator struct {
	defaultLocale string
	catalog       map[string]map[string]string
	missing       interfaces.MissingTranslationHandler
}

// Translate looks key up in locale, its regional parent ("en-gb" -> "en")
// and then the default locale. Arguments are applied with fmt verbs.
func (t *translator) Translate(locale, key string, args ...any) (string, error) {
	key = strings.TrimSpace(key)
	for _, candidate := range t.chain(locale) {
		if message, ok := t.catalog[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(message, args...), nil
			}
			return message, nil
		}
	}
	err := fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
	return t.missing(locale, key, args, err), err
}

func (t *translator) chain(locale string) []string {
	locale = normalizeLocale(locale)
	chain := make([]string, 0, 3)
	if locale != "" {
		chain = append(chain, locale)
		if idx := strings.IndexByte(locale, '-'); idx > 0 {
			chain = append(chain, locale[:idx])
		}
	}
	if t.defaultLocale != "" && (len(chain) == 0 || chain[len(chain)-1] != t.defaultLocale) {
		chain = append(chain, t.defaultLocale)
	}
	return chain
}

// Label translates key and swallows the missing translation error.
func Label(translator interfaces.Translator, locale, key string) string {
	if translator == nil {
		return key
	}
	text, _ := translator.Translate(locale, key)
	return text
}
