package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	nethttp "net/http"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portal/internal/adapters/cache"
	"github.com/goliatone/go-portal/internal/adapters/noop"
	"github.com/goliatone/go-portal/internal/commands"
	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/crypto"
	portalhttp "github.com/goliatone/go-portal/internal/http"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/logging/console"
	"github.com/goliatone/go-portal/internal/logging/gologger"
	"github.com/goliatone/go-portal/internal/mailer"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/migrations"
	"github.com/goliatone/go-portal/internal/navigation"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/internal/runtimeconfig"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/site"
	"github.com/goliatone/go-portal/internal/storageconfig"
	"github.com/goliatone/go-portal/internal/storagedisk"
	"github.com/goliatone/go-portal/internal/themes"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Container wires module dependencies. Without a bun handle every
// repository is in memory.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	cacheProvider interfaces.CacheProvider
	encrypter     interfaces.Encrypter
	themesFS      fs.FS
	mailDialer    mailer.DialerFactory

	menuRepo        menus.MenuRepository
	menuItemRepo    menus.MenuItemRepository
	settingsRepo    settings.Repository
	profileRepo     storageconfig.Repository
	menuURLResolver menus.URLResolver
	routeManager    *urlkit.RouteManager

	i18nSvc     i18n.Service
	menuSvc     menus.Service
	settingsSvc settings.Service

	sidebar   *navigation.Cache
	resolver  *navigation.Resolver
	assembler *panel.Assembler
	disks     *storagedisk.Resolver
	mail      *mailer.Mailer
	themes    *themes.Selector
	site      *site.Builder

	invalidate *commands.Handler[navigationcmd.InvalidateNavigationCommand]
	reorder    *commands.Handler[navigationcmd.ReorderMenuItemsCommand]
	mailTest   *commands.Handler[mailcmd.SendTestMailCommand]
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB switches every repository to bun.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache used by the bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithCacheProvider overrides the cache holding resolved navigation.
func WithCacheProvider(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cacheProvider = provider
	}
}

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithEncrypter overrides the credential encrypter built from the app key.
func WithEncrypter(encrypter interfaces.Encrypter) Option {
	return func(c *Container) {
		c.encrypter = encrypter
	}
}

// WithThemesFS registers the theme manifests found in fsys.
func WithThemesFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.themesFS = fsys
	}
}

// WithMenuRepositories overrides the menu stores.
func WithMenuRepositories(menuRepo menus.MenuRepository, itemRepo menus.MenuItemRepository) Option {
	return func(c *Container) {
		c.menuRepo = menuRepo
		c.menuItemRepo = itemRepo
	}
}

// WithSettingsRepository overrides the settings store.
func WithSettingsRepository(repo settings.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithMailDialer overrides how the mailer reaches the SMTP server.
func WithMailDialer(factory mailer.DialerFactory) Option {
	return func(c *Container) {
		c.mailDialer = factory
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "portal")

	if err := c.configureEncrypter(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureNavigation()

	i18nSvc, err := i18n.LoadService(context.Background(), i18n.FromModuleConfig(cfg.DefaultLocale, cfg.I18N.Locales), cfg.I18N.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("di: i18n: %w", err)
	}
	c.i18nSvc = i18nSvc

	c.configureMenus()
	if err := c.configureThemes(); err != nil {
		return nil, err
	}
	c.configureSettings()
	c.configureCommands()

	c.site = site.NewBuilder(c.menuSvc, c.settingsSvc, c.themes, c.i18nSvc,
		site.WithMenus(cfg.Navigation.HeaderMenu, cfg.Navigation.FooterMenu),
		site.WithLogger(logging.ModuleLogger(c.loggerProvider, "portal.site")),
	)

	c.logger.Info("container.configured",
		"persistence", c.persistence(),
		"sidebar", cfg.Navigation.SidebarMenu,
		"themes", cfg.Features.Themes,
		"mail", cfg.Features.Mail,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: gologger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{Format: console.Format(strings.ToLower(strings.TrimSpace(logCfg.Format)))}
		if level, ok := console.ParseLevel(logCfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureEncrypter() error {
	if c.encrypter != nil {
		return nil
	}
	appKey := strings.TrimSpace(c.Config.Security.AppKey)
	if appKey == "" {
		c.encrypter = crypto.Disabled()
		return nil
	}
	key, err := runtimeconfig.DecodeAppKey(appKey)
	if err != nil {
		return fmt.Errorf("%w: %w", runtimeconfig.ErrAppKeyInvalid, err)
	}
	box, err := crypto.NewSecretBox(key)
	if err != nil {
		return err
	}
	c.encrypter = box
	return nil
}

func (c *Container) configureCacheDefaults() {
	if c.cacheProvider == nil {
		if c.Config.Cache.Enabled {
			c.cacheProvider = cache.New(cache.DefaultConfig())
		} else {
			c.cacheProvider = noop.Cache()
		}
	}
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if ttl := c.Config.Cache.DefaultTTL; ttl > 0 {
			cfg.TTL = ttl
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("repository.cache.disabled", "error", err)
		} else {
			c.cacheService = service
		}
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.menuRepo == nil {
			c.menuRepo = menus.NewBunMenuRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer,
				menus.WithBunLogger(logging.MenusLogger(c.loggerProvider)))
		}
		if c.menuItemRepo == nil {
			c.menuItemRepo = menus.NewBunMenuItemRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer,
				menus.WithBunLogger(logging.MenusLogger(c.loggerProvider)))
		}
		if c.settingsRepo == nil {
			c.settingsRepo = settings.NewBunRepository(c.bunDB)
		}
		if c.profileRepo == nil {
			c.profileRepo = storageconfig.NewBunRepository(c.bunDB)
		}
		return
	}
	if c.menuRepo == nil {
		c.menuRepo = menus.NewMemoryMenuRepository()
	}
	if c.menuItemRepo == nil {
		c.menuItemRepo = menus.NewMemoryMenuItemRepository()
	}
	if c.settingsRepo == nil {
		c.settingsRepo = settings.NewMemoryRepository()
	}
	if c.profileRepo == nil {
		c.profileRepo = storageconfig.NewMemoryRepository()
	}
}

func (c *Container) configureNavigation() {
	navCfg := c.Config.Navigation
	if navCfg.RouteConfig == nil {
		return
	}
	c.routeManager = urlkit.NewRouteManager(navCfg.RouteConfig)
	c.menuURLResolver = menus.NewURLKitResolver(menus.URLKitResolverOptions{
		Manager:      c.routeManager,
		DefaultGroup: strings.TrimSpace(navCfg.URLKit.DefaultGroup),
		LocaleGroups: navCfg.URLKit.LocaleGroups,
		LocaleParam:  strings.TrimSpace(navCfg.URLKit.LocaleParam),
	})
}

func (c *Container) configureMenus() {
	navCfg := c.Config.Navigation
	navLogger := logging.NavigationLogger(c.loggerProvider)

	loader := navigation.NewLoader(c.menuRepo, c.menuItemRepo, navigation.WithLoaderLogger(navLogger))
	c.sidebar = navigation.NewCache(c.cacheProvider, loader,
		navigation.WithMenu(navCfg.SidebarMenu),
		navigation.WithTTL(navCfg.CacheTTL),
		navigation.WithLogger(navLogger),
	)
	c.resolver = navigation.NewResolver(c.sidebar)

	menuOpts := []menus.ServiceOption{
		menus.WithLogger(logging.MenusLogger(c.loggerProvider)),
		menus.WithObserver(c.sidebar),
		menus.WithDefaultLocale(c.Config.DefaultLocale),
	}
	if c.menuURLResolver != nil {
		menuOpts = append(menuOpts, menus.WithURLResolver(c.menuURLResolver))
	}
	c.menuSvc = menus.NewService(c.menuRepo, c.menuItemRepo, menuOpts...)

	c.assembler = panel.NewAssembler(c.resolver, c.i18nSvc.Translator(),
		panel.WithDefaultLocale(c.Config.DefaultLocale),
		panel.WithLogger(logging.PanelLogger(c.loggerProvider)),
	)
}

func (c *Container) configureThemes() error {
	if !c.Config.Features.Themes {
		return nil
	}
	registry := themes.NewRegistry()
	if c.themesFS != nil {
		loaded, err := registry.LoadFS(c.themesFS)
		if err != nil {
			return fmt.Errorf("di: themes: %w", err)
		}
		c.logger.Info("themes.loaded", "count", len(loaded))
	}
	c.themes = themes.NewSelector(registry, c.Config.Themes.DefaultTheme, logging.ModuleLogger(c.loggerProvider, "portal.themes"))
	return nil
}

func (c *Container) configureSettings() {
	c.disks = storagedisk.NewResolver(storagedisk.Defaults{
		DefaultDisk: c.Config.Storage.DefaultDisk,
		LocalRoot:   c.Config.Storage.LocalRoot,
		PublicURL:   c.Config.Storage.PublicURL,
	},
		storagedisk.WithProfiles(c.profileRepo),
		storagedisk.WithLogger(logging.StorageLogger(c.loggerProvider)),
	)

	settingsOpts := []settings.ServiceOption{
		settings.WithEncrypter(c.encrypter),
		settings.WithLogger(logging.SettingsLogger(c.loggerProvider)),
		settings.WithObserver(c.disks),
	}
	if c.Config.Features.Mail {
		mailOpts := []mailer.Option{
			mailer.WithTranslator(c.i18nSvc.Translator()),
			mailer.WithLogger(logging.MailLogger(c.loggerProvider)),
			mailer.WithFallbackSender(c.Config.Mail.FromAddress, c.Config.Mail.FromName),
		}
		if c.mailDialer != nil {
			mailOpts = append(mailOpts, mailer.WithDialerFactory(c.mailDialer))
		}
		c.mail = mailer.New(mailOpts...)
		settingsOpts = append(settingsOpts, settings.WithObserver(c.mail))
	}
	if c.themes != nil {
		settingsOpts = append(settingsOpts, settings.WithObserver(c.themes))
	}
	c.settingsSvc = settings.NewService(c.settingsRepo, settingsOpts...)
}

func (c *Container) configureCommands() {
	invalidators := []navigationcmd.Invalidator{c.sidebar}
	c.invalidate = navigationcmd.NewInvalidateHandler(invalidators, commands.Logger(c.loggerProvider, "navigation"))
	c.reorder = navigationcmd.NewReorderHandler(c.menuSvc, commands.Logger(c.loggerProvider, "navigation"))
	if c.mail != nil {
		c.mailTest = mailcmd.NewSendTestHandler(c.mail, commands.Logger(c.loggerProvider, "mail"))
	}
}

// Bootstrap loads the stored settings into the disk resolver, mailer and
// theme selector. Call it once the schema exists.
func (c *Container) Bootstrap(ctx context.Context) error {
	var errs []error
	if err := c.disks.Load(ctx, c.settingsSvc); err != nil {
		errs = append(errs, fmt.Errorf("storage disks: %w", err))
	}
	if c.mail != nil {
		if err := c.mail.Load(ctx, c.settingsSvc); err != nil {
			errs = append(errs, fmt.Errorf("mailer: %w", err))
		}
	}
	if c.themes != nil {
		if err := c.themes.Load(ctx, c.settingsSvc); err != nil {
			errs = append(errs, fmt.Errorf("themes: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		c.logger.Error("container.bootstrap.failed", "error", err)
		return err
	}
	c.logger.Info("container.bootstrap.completed", "disks", c.disks.Names())
	return nil
}

// SubscribeCommands registers the command handlers with the go-command
// dispatcher and returns a function removing them.
func (c *Container) SubscribeCommands(retries int) func() {
	unsubscribe := []func(){navigationcmd.Subscribe(c.invalidate, c.reorder, retries)}
	if c.mailTest != nil {
		unsubscribe = append(unsubscribe, dispatcher.SubscribeCommand(c.mailTest).Unsubscribe)
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}

// Handler returns the admin and public JSON API. Viewer roles are read from
// portalhttp.RolesHeader.
func (c *Container) Handler() (nethttp.Handler, error) {
	mux := nethttp.NewServeMux()
	admin := portalhttp.NewAdminAPI(
		portalhttp.WithMenuService(c.menuSvc),
		portalhttp.WithPanel(c.assembler),
		portalhttp.WithSettingsService(c.settingsSvc),
		portalhttp.WithNavigationCommands(c.invalidate, c.reorder),
		portalhttp.WithMailTestCommand(c.mailTest),
		portalhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
	if err := admin.Register(mux); err != nil {
		return nil, err
	}
	if err := portalhttp.NewSiteAPI(c.site, "").Register(mux); err != nil {
		return nil, err
	}
	return portalhttp.Authorize(permissions.DefaultRoles(), mux), nil
}

// Migrator returns a migration runner over the bun handle.
func (c *Container) Migrator(fsys fs.FS) (*migrations.Runner, error) {
	if c.bunDB == nil {
		return nil, errors.New("di: migrations need a bun database")
	}
	return migrations.NewRunner(c.bunDB, fsys, migrations.WithLogger(logging.ModuleLogger(c.loggerProvider, "portal.migrations")))
}

func (c *Container) persistence() string {
	if c.bunDB == nil {
		return "memory"
	}
	return c.bunDB.Dialect().Name().String()
}

// LoggerProvider exposes the configured logger provider. It is nil when
// logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

// MenuService returns the configured menu service.
func (c *Container) MenuService() menus.Service { return c.menuSvc }

// SettingsService returns the configured settings service.
func (c *Container) SettingsService() settings.Service { return c.settingsSvc }

// I18nService returns the configured i18n service.
func (c *Container) I18nService() i18n.Service { return c.i18nSvc }

// NavigationCache returns the resolved cache of the sidebar menu.
func (c *Container) NavigationCache() *navigation.Cache { return c.sidebar }

// NavigationResolver answers section ordering and visibility.
func (c *Container) NavigationResolver() *navigation.Resolver { return c.resolver }

// Panel returns the sidebar assembler.
func (c *Container) Panel() *panel.Assembler { return c.assembler }

// StorageDisks returns the disk resolver.
func (c *Container) StorageDisks() *storagedisk.Resolver { return c.disks }

// StorageProfiles returns the repository the disk resolver publishes to.
func (c *Container) StorageProfiles() storageconfig.Repository { return c.profileRepo }

// Mailer returns the SMTP mailer, or a no-op when mail is disabled.
func (c *Container) Mailer() interfaces.Mailer {
	if c.mail == nil {
		return noop.Mailer()
	}
	return c.mail
}

// Themes returns the theme selector. It is nil when themes are disabled.
func (c *Container) Themes() *themes.Selector { return c.themes }

// Site returns the public site context builder.
func (c *Container) Site() *site.Builder { return c.site }

// InvalidateHandler returns the navigation invalidate command handler.
func (c *Container) InvalidateHandler() *commands.Handler[navigationcmd.InvalidateNavigationCommand] {
	return c.invalidate
}

// ReorderHandler returns the menu reorder command handler.
func (c *Container) ReorderHandler() *commands.Handler[navigationcmd.ReorderMenuItemsCommand] {
	return c.reorder
}

// MailTestHandler returns the test mail handler. It is nil when mail is
// disabled.
func (c *Container) MailTestHandler() *commands.Handler[mailcmd.SendTestMailCommand] {
	return c.mailTest
}
