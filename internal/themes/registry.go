package themes

import (
	"cmp"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"sync"
)

// Registry holds the installed themes.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

// NewRegistry returns a registry holding the built-in theme.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]Theme)}
	builtin := Builtin()
	r.themes[builtin.Code] = builtin
	return r
}

// Register installs theme under its normalised code.
func (r *Registry) Register(theme Theme) (Theme, error) {
	code, err := NormalizeCode(theme.Code)
	if err != nil {
		return Theme{}, err
	}
	theme.Code = code

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.themes[code]; exists {
		return Theme{}, fmt.Errorf("%w: %s", ErrThemeExists, code)
	}
	r.themes[code] = theme
	return theme, nil
}

// LoadFS registers every */theme.json manifest found in fsys. Asset base
// paths default to the manifest directory.
func (r *Registry) LoadFS(fsys fs.FS) ([]Theme, error) {
	manifests, err := fs.Glob(fsys, "*/theme.json")
	if err != nil {
		return nil, fmt.Errorf("themes: scan manifests: %w", err)
	}
	slices.Sort(manifests)
	loaded := make([]Theme, 0, len(manifests))
	for _, manifest := range manifests {
		file, err := fsys.Open(manifest)
		if err != nil {
			return loaded, fmt.Errorf("themes: open %s: %w", manifest, err)
		}
		theme, err := ParseManifest(file)
		file.Close()
		if err != nil {
			return loaded, err
		}
		if theme.Code == "" {
			theme.Code = path.Dir(manifest)
		}
		if theme.Assets.BasePath == "" {
			theme.Assets.BasePath = path.Dir(manifest)
		}
		registered, err := r.Register(theme)
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, registered)
	}
	return loaded, nil
}

// Get returns the theme registered under code.
func (r *Registry) Get(code string) (Theme, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Theme{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	theme, ok := r.themes[normalized]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, normalized)
	}
	return theme, nil
}

// List returns every theme ordered by code.
func (r *Registry) List() []Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	themes := slices.Collect(maps.Values(r.themes))
	slices.SortFunc(themes, func(a, b Theme) int { return cmp.Compare(a.Code, b.Code) })
	return themes
}
