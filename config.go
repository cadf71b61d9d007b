package portal

import "github.com/goliatone/go-portal/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired     = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotSupported = runtimeconfig.ErrDefaultLocaleNotSupported
	ErrSidebarMenuRequired       = runtimeconfig.ErrSidebarMenuRequired
	ErrNavigationCacheTTLInvalid = runtimeconfig.ErrNavigationCacheTTLInvalid
	ErrThemesFeatureRequired     = runtimeconfig.ErrThemesFeatureRequired
	ErrMailFeatureRequired       = runtimeconfig.ErrMailFeatureRequired
	ErrStorageDiskUnknown        = runtimeconfig.ErrStorageDiskUnknown
	ErrAppKeyInvalid             = runtimeconfig.ErrAppKeyInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	I18NConfig           = runtimeconfig.I18NConfig
	CacheConfig          = runtimeconfig.CacheConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	URLKitResolverConfig = runtimeconfig.URLKitResolverConfig
	StorageConfig        = runtimeconfig.StorageConfig
	ThemeConfig          = runtimeconfig.ThemeConfig
	MailConfig           = runtimeconfig.MailConfig
	SecurityConfig       = runtimeconfig.SecurityConfig
	Features             = runtimeconfig.Features
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
