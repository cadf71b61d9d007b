package runtimeconfig

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrDefaultLocaleRequired     = errors.New("portal config: default locale is required")
	ErrDefaultLocaleNotSupported = errors.New("portal config: default locale must be listed in i18n locales")
	ErrSidebarMenuRequired       = errors.New("portal config: navigation sidebar menu name is required")
	ErrNavigationCacheTTLInvalid = errors.New("portal config: navigation cache ttl must be positive")
	ErrThemesFeatureRequired     = errors.New("portal config: themes feature must be enabled to configure themes")
	ErrMailFeatureRequired       = errors.New("portal config: mail feature must be enabled to configure a mail sender")
	ErrStorageDiskUnknown        = errors.New("portal config: storage default disk is invalid")
	ErrAppKeyInvalid             = errors.New("portal config: security app key must decode to 32 bytes")
	ErrLoggingProviderRequired   = errors.New("portal config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown    = errors.New("portal config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("portal config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("portal config: logging format is invalid")
)

// Config aggregates feature flags and adapter bindings for the portal module.
type Config struct {
	DefaultLocale string
	I18N          I18NConfig
	Cache         CacheConfig
	Navigation    NavigationConfig
	Storage       StorageConfig
	Themes        ThemeConfig
	Mail          MailConfig
	Security      SecurityConfig
	Features      Features
	Logging       LoggingConfig
}

// I18NConfig lists the locales the portal serves. BundlePath optionally
// names a JSON bundle whose messages override the embedded translations.
type I18NConfig struct {
	Locales    []string
	BundlePath string
}

// CacheConfig captures cache behaviour toggles for repository decorators.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// NavigationConfig names the menus the portal renders and how their
// resolved projections are cached.
type NavigationConfig struct {
	SidebarMenu string
	HeaderMenu  string
	FooterMenu  string
	CacheTTL    time.Duration
	RouteConfig *urlkit.Config
	URLKit      URLKitResolverConfig
}

// URLKitResolverConfig configures named route resolution for public menus.
type URLKitResolverConfig struct {
	DefaultGroup string
	LocaleGroups map[string]string
	LocaleParam  string
}

// StorageConfig seeds the storage disk resolver before settings exist.
type StorageConfig struct {
	DefaultDisk string
	LocalRoot   string
	PublicURL   string
}

// ThemeConfig captures the theme registry defaults.
type ThemeConfig struct {
	DefaultTheme string
	Available    []string
}

// MailConfig holds the fallback sender used when mail settings are empty.
type MailConfig struct {
	FromAddress string
	FromName    string
}

// SecurityConfig holds the base64 key used to seal stored credentials.
type SecurityConfig struct {
	AppKey string
}

// Features toggles module functionality.
type Features struct {
	Themes bool
	Mail   bool
	Logger bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults for a bilingual ministry portal.
func DefaultConfig() Config {
	return Config{
		DefaultLocale: "ms",
		I18N: I18NConfig{
			Locales: []string{"ms", "en"},
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Navigation: NavigationConfig{
			SidebarMenu: "admin_sidebar",
			HeaderMenu:  "public_header",
			FooterMenu:  "public_footer",
			CacheTTL:    time.Hour,
		},
		Storage: StorageConfig{
			DefaultDisk: "public",
			LocalRoot:   "storage/app",
			PublicURL:   "/storage",
		},
		Themes: ThemeConfig{
			DefaultTheme: "default",
			Available:    []string{"default"},
		},
		Features: Features{
			Themes: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	locale := strings.TrimSpace(cfg.DefaultLocale)
	if locale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.I18N.Locales) > 0 && !slices.Contains(cfg.I18N.Locales, locale) {
		return fmt.Errorf("%w: %s", ErrDefaultLocaleNotSupported, locale)
	}
	if strings.TrimSpace(cfg.Navigation.SidebarMenu) == "" {
		return ErrSidebarMenuRequired
	}
	if cfg.Navigation.CacheTTL <= 0 {
		return ErrNavigationCacheTTLInvalid
	}
	if !cfg.Features.Themes && strings.TrimSpace(cfg.Themes.DefaultTheme) != "" {
		return ErrThemesFeatureRequired
	}
	if !cfg.Features.Mail && strings.TrimSpace(cfg.Mail.FromAddress) != "" {
		return ErrMailFeatureRequired
	}
	if disk := strings.TrimSpace(cfg.Storage.DefaultDisk); disk != "" && !isSupportedDisk(disk) {
		return fmt.Errorf("%w: %s", ErrStorageDiskUnknown, disk)
	}
	if key := strings.TrimSpace(cfg.Security.AppKey); key != "" && !validAppKey(key) {
		return ErrAppKeyInvalid
	}
	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := normalize(cfg.Logging.Level); level != "" && !slices.Contains(supportedLevels, level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := normalize(cfg.Logging.Format); format != "" && !slices.Contains(formatsFor(provider), format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// SupportedDisks lists the storage disk identifiers understood by the resolver.
var SupportedDisks = []string{"local", "public", "s3", "r2", "gcs", "azure"}

var supportedLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal"}

func formatsFor(provider string) []string {
	if provider == "gologger" {
		return []string{"json", "console", "pretty"}
	}
	return []string{"text", "json"}
}

func isSupportedDisk(disk string) bool {
	return slices.Contains(SupportedDisks, normalize(disk))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
