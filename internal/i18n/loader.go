package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// Bundle is a serialised set of configuration plus translations keyed by
// locale then message key.
type Bundle struct {
	Config       Config                       `json:"config"`
	Translations map[string]map[string]string `json:"translations"`
}

//go:embed locales/portal.json
var embedded embed.FS

// DefaultBundle loads the built-in ms/en bundle.
func DefaultBundle() (*Bundle, error) {
	data, err := embedded.ReadFile("locales/portal.json")
	if err != nil {
		return nil, fmt.Errorf("i18n: read embedded bundle: %w", err)
	}
	return decodeBundle(bytes.NewReader(data))
}

// Overlay returns base with every message of overlay added or replaced.
// The overlay config wins when it names a default locale.
func Overlay(base, overlay *Bundle) *Bundle {
	out := &Bundle{Translations: map[string]map[string]string{}}
	for _, b := range []*Bundle{base, overlay} {
		if b == nil {
			continue
		}
		if strings.TrimSpace(b.Config.DefaultLocale) != "" {
			out.Config = Config{DefaultLocale: b.Config.DefaultLocale, Locales: slices.Clone(b.Config.Locales)}
		}
		for locale, messages := range b.Translations {
			locale = normalizeLocale(locale)
			if out.Translations[locale] == nil {
				out.Translations[locale] = make(map[string]string, len(messages))
			}
			maps.Copy(out.Translations[locale], messages)
		}
	}
	return out
}

// Loader reads a translation bundle file, such as a deployment's wording
// overrides.
type Loader struct {
	path string
}

// NewLoader constructs a loader that reads the provided file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the configured bundle file.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	if l == nil || l.path == "" {
		return nil, errors.New("i18n: loader path cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("i18n: open bundle %q: %w", l.path, err)
	}
	defer file.Close()

	return decodeBundle(file)
}

func decodeBundle(r io.Reader) (*Bundle, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var bundle Bundle
	if err := decoder.Decode(&bundle); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if bundle.Translations == nil {
		bundle.Translations = map[string]map[string]string{}
	}

	return &bundle, nil
}
