package portal

import (
	"context"
	"net/http"

	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/migrations"
	"github.com/goliatone/go-portal/internal/navigation"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/site"
	"github.com/goliatone/go-portal/internal/storagedisk"
	"github.com/goliatone/go-portal/internal/themes"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// MenuService exports the menu tree contract.
type MenuService = menus.Service

// SettingsService exports the settings contract.
type SettingsService = settings.Service

// Navigation is the assembled admin sidebar.
type Navigation = panel.Navigation

// SiteContext is the public layout context.
type SiteContext = site.Context

// SiteRequest describes one public page view.
type SiteRequest = site.Request

// Module is the top level portal runtime.
type Module struct {
	container *di.Container
}

// New constructs a portal module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Bootstrap loads stored settings into the runtime services.
func (m *Module) Bootstrap(ctx context.Context) error {
	return m.container.Bootstrap(ctx)
}

// Menus returns the configured menu service.
func (m *Module) Menus() MenuService {
	return m.container.MenuService()
}

// Settings returns the configured settings service.
func (m *Module) Settings() SettingsService {
	return m.container.SettingsService()
}

// NavigationResolver answers sidebar ordering and visibility lookups.
func (m *Module) NavigationResolver() *navigation.Resolver {
	return m.container.NavigationResolver()
}

// Sidebar assembles the admin sidebar for a viewer.
func (m *Module) Sidebar(ctx context.Context, locale string, checker permissions.Checker) Navigation {
	return m.container.Panel().Build(ctx, panel.BuildRequest{Locale: locale, Permissions: checker})
}

// Site builds the public layout context.
func (m *Module) Site(ctx context.Context, req SiteRequest) (*SiteContext, error) {
	return m.container.Site().Build(ctx, req)
}

// StorageDisks returns the configured disk resolver.
func (m *Module) StorageDisks() *storagedisk.Resolver {
	return m.container.StorageDisks()
}

// Mailer returns the configured mailer.
func (m *Module) Mailer() interfaces.Mailer {
	return m.container.Mailer()
}

// Themes returns the theme selector, nil when themes are disabled.
func (m *Module) Themes() *themes.Selector {
	return m.container.Themes()
}

// Handler returns the admin and public HTTP API.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Migrator returns a runner over the embedded migrations.
func (m *Module) Migrator() (*migrations.Runner, error) {
	return m.container.Migrator(GetMigrationsFS())
}
