package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	rootModule       = "portal"
	menusModule      = "portal.menus"
	navigationModule = "portal.navigation"
	panelModule      = "portal.panel"
	settingsModule   = "portal.settings"
	storageModule    = "portal.storage"
	mailModule       = "portal.mail"
	httpModule       = "portal.http"
)

const (
	fieldMenu   = "menu"
	fieldLocale = "locale"
	fieldGroup  = "settings_group"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// MenusLogger returns the logger namespace reserved for menu tree writes.
func MenusLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, menusModule)
}

// NavigationLogger returns the logger namespace reserved for navigation resolution.
func NavigationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationModule)
}

// PanelLogger returns the logger namespace reserved for panel assembly.
func PanelLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, panelModule)
}

// SettingsLogger returns the logger namespace reserved for settings persistence.
func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

// StorageLogger returns the logger namespace reserved for storage disk resolution.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// MailLogger returns the logger namespace reserved for outgoing mail.
func MailLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mailModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP layer.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithMenuContext enriches the logger with the menu name and locale. Empty
// values are ignored.
func WithMenuContext(logger interfaces.Logger, menu, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(menu); trimmed != "" {
		fields[fieldMenu] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// WithSettingsGroup tags the logger with the settings group being processed.
func WithSettingsGroup(logger interfaces.Logger, group string) interfaces.Logger {
	if trimmed := strings.TrimSpace(group); trimmed != "" {
		return WithFields(logger, map[string]any{fieldGroup: trimmed})
	}
	return logger
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
