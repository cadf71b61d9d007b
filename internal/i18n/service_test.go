package i18n

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestServiceTranslateWithFallback(t *testing.T) {
	svc, bundle := mustLoadFixtureService(t)
	translator := svc.Translator()

	t.Run("regional locale wins when defined", func(t *testing.T) {
		got, err := translator.Translate("en-GB", "site.greeting", "Aminah")
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		if got != "Good day, Aminah!" {
			t.Fatalf("expected regional greeting, got %q", got)
		}
	})

	t.Run("falls back to regional parent", func(t *testing.T) {
		got, err := translator.Translate("en_GB", "navigation.groups.settings")
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		if got != "Settings" {
			t.Fatalf("expected English translation, got %q", got)
		}
	})

	t.Run("falls back to default locale", func(t *testing.T) {
		got, err := translator.Translate("en", "site.only_ms")
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		if got != "Hanya Melayu" {
			t.Fatalf("expected Malay fallback, got %q", got)
		}
	})

	t.Run("defaults locale when empty", func(t *testing.T) {
		got, err := translator.Translate("", "navigation.groups.settings")
		if err != nil {
			t.Fatalf("translate: %v", err)
		}
		if got != "Tetapan" {
			t.Fatalf("expected default locale text, got %q", got)
		}
	})

	t.Run("missing key renders key", func(t *testing.T) {
		got, err := translator.Translate("en", "unknown.key")
		if !errors.Is(err, ErrMissingTranslation) {
			t.Fatalf("expected ErrMissingTranslation, got %v", err)
		}
		if got != "unknown.key" {
			t.Fatalf("missing translation should return key, got %q", got)
		}
	})

	if svc.DefaultLocale() != bundle.Config.DefaultLocale {
		t.Fatalf("expected default locale %q got %q", bundle.Config.DefaultLocale, svc.DefaultLocale())
	}
}

func TestMissingHandlerOverride(t *testing.T) {
	svc, err := NewInMemoryService(Config{DefaultLocale: "ms"}, nil, WithMissingHandler(func(locale, key string, _ []any, _ error) string {
		return "[" + locale + ":" + key + "]"
	}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got := Label(svc.Translator(), "en", "x"); got != "[en:x]" {
		t.Fatalf("unexpected missing text %q", got)
	}
}

func TestDefaultBundleCoversBothLocales(t *testing.T) {
	bundle, err := DefaultBundle()
	if err != nil {
		t.Fatalf("default bundle: %v", err)
	}
	ms, en := bundle.Translations["ms"], bundle.Translations["en"]
	if len(ms) == 0 || len(ms) != len(en) {
		t.Fatalf("expected matching ms/en catalogs, got %d and %d keys", len(ms), len(en))
	}
	for key := range ms {
		if _, ok := en[key]; !ok {
			t.Fatalf("key %q missing from en catalog", key)
		}
	}

	svc, err := NewDefaultService(Config{})
	if err != nil {
		t.Fatalf("default service: %v", err)
	}
	if svc.DefaultLocale() != "ms" || len(svc.Locales()) != 2 {
		t.Fatalf("unexpected locale configuration %q %v", svc.DefaultLocale(), svc.Locales())
	}
}

func mustLoadFixtureService(t *testing.T) (Service, *Bundle) {
	t.Helper()

	loader := NewLoader(filepath.Join("testdata", "translations_fixture.json"))
	bundle, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	service, err := NewInMemoryService(bundle.Config, bundle.Translations)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, bundle
}

func TestLoadServiceOverlaysBundleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.json")
	overrides := `{"translations": {"ms": {"navigation.groups.settings": "Tetapan Sistem"}, "en": {"site.notice": "Office closed"}}}`
	if err := os.WriteFile(path, []byte(overrides), 0o600); err != nil {
		t.Fatalf("write overrides: %v", err)
	}

	svc, err := LoadService(context.Background(), Config{DefaultLocale: "ms", Locales: []string{"ms", "en"}}, path)
	if err != nil {
		t.Fatalf("LoadService: %v", err)
	}
	translator := svc.Translator()

	cases := map[[2]string]string{
		{"ms", "navigation.groups.settings"}: "Tetapan Sistem",
		{"ms", "navigation.groups.content"}:  "Kandungan",
		{"en", "navigation.groups.settings"}: "Settings",
		{"en", "site.notice"}:                "Office closed",
	}
	for in, want := range cases {
		got, err := translator.Translate(in[0], in[1])
		if err != nil || got != want {
			t.Fatalf("Translate(%s, %s) = %q, %v; want %q", in[0], in[1], got, err, want)
		}
	}
}

func TestLoadServiceRejectsMissingOrUnknownFile(t *testing.T) {
	cfg := Config{DefaultLocale: "ms", Locales: []string{"ms", "en"}}
	if _, err := LoadService(context.Background(), cfg, filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected missing bundle error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"messages": {}}`), 0o600); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	if _, err := LoadService(context.Background(), cfg, path); err == nil {
		t.Fatal("expected unknown field error")
	}

	svc, err := LoadService(context.Background(), cfg, " ")
	if err != nil || svc.DefaultLocale() != "ms" {
		t.Fatalf("blank path should use the embedded bundle, got %v", err)
	}
}
