package themes

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Selection is the theme the public site renders with.
type Selection struct {
	Theme        Theme
	Variant      string
	PrimaryColor string
	LogoURL      string
}

// Selector tracks the active theme chosen in the appearance settings. An
// unknown theme falls back to the configured default, then the built-in one.
type Selector struct {
	mu          sync.RWMutex
	registry    *Registry
	defaultCode string
	active      Selection
	logger      interfaces.Logger
}

// NewSelector builds a selector starting on defaultCode.
func NewSelector(registry *Registry, defaultCode string, logger interfaces.Logger) *Selector {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	s := &Selector{registry: registry, defaultCode: defaultCode, logger: logger}
	s.active = s.resolve(settings.Values{})
	return s
}

// Load reads the appearance group.
func (s *Selector) Load(ctx context.Context, reader interface {
	Get(ctx context.Context, group settings.Group) (settings.Values, error)
}) error {
	values, err := reader.Get(ctx, settings.GroupAppearance)
	if err != nil {
		return err
	}
	s.apply(values)
	return nil
}

// SettingsChanged switches theme after the appearance group is saved.
func (s *Selector) SettingsChanged(_ context.Context, change settings.Change) error {
	if change.Group == settings.GroupAppearance {
		s.apply(change.Values)
	}
	return nil
}

// Active returns the current selection.
func (s *Selector) Active() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Registry exposes the installed themes.
func (s *Selector) Registry() *Registry {
	return s.registry
}

func (s *Selector) apply(values settings.Values) {
	selection := s.resolve(values)
	s.mu.Lock()
	s.active = selection
	s.mu.Unlock()
	s.logger.Info("themes.selection.applied", "theme", selection.Theme.Code, "variant", selection.Variant)
}

func (s *Selector) resolve(values settings.Values) Selection {
	requested := values.String("theme")
	theme, err := s.lookup(requested)
	if err != nil {
		if requested != "" {
			s.logger.Warn("themes.selection.fallback", "requested", requested, "error", err)
		}
		theme = Builtin()
	}

	variant := values.String("variant")
	if !theme.HasVariant(variant) {
		s.logger.Warn("themes.variant.unknown", "theme", theme.Code, "variant", variant)
		variant = ""
	}
	color := values.String("primary_color")
	if color == "" {
		color = theme.PrimaryColor
	}
	return Selection{
		Theme:        theme,
		Variant:      variant,
		PrimaryColor: color,
		LogoURL:      values.String("logo_url"),
	}
}

func (s *Selector) lookup(requested string) (Theme, error) {
	var errs []error
	for _, code := range []string{requested, s.defaultCode} {
		if code == "" {
			continue
		}
		theme, err := s.registry.Get(code)
		if err == nil {
			return theme, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Theme{}, ErrThemeNotFound
	}
	return Theme{}, errors.Join(errs...)
}
