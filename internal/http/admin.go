package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-portal/internal/commands"
	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// AdminAPI registers the back office endpoints.
type AdminAPI struct {
	basePath   string
	menus      menus.Service
	panel      *panel.Assembler
	settings   settings.Service
	invalidate *commands.Handler[navigationcmd.InvalidateNavigationCommand]
	reorder    *commands.Handler[navigationcmd.ReorderMenuItemsCommand]
	mailTest   *commands.Handler[mailcmd.SendTestMailCommand]
	logger     interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithMenuService wires the menu service.
func WithMenuService(service menus.Service) AdminOption {
	return func(api *AdminAPI) {
		api.menus = service
	}
}

// WithPanel wires the sidebar assembler.
func WithPanel(assembler *panel.Assembler) AdminOption {
	return func(api *AdminAPI) {
		api.panel = assembler
	}
}

// WithSettingsService wires the settings service.
func WithSettingsService(service settings.Service) AdminOption {
	return func(api *AdminAPI) {
		api.settings = service
	}
}

// WithNavigationCommands wires the invalidate and reorder handlers. A nil
// reorder handler falls back to the menu service.
func WithNavigationCommands(invalidate *commands.Handler[navigationcmd.InvalidateNavigationCommand], reorder *commands.Handler[navigationcmd.ReorderMenuItemsCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.invalidate = invalidate
		api.reorder = reorder
	}
}

// WithMailTestCommand wires the test mail handler.
func WithMailTestCommand(handler *commands.Handler[mailcmd.SendTestMailCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.mailTest = handler
	}
}

// WithLogger sets the API logger.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerMenuRoutes(mux, base)
	api.registerNavigationRoutes(mux, base)
	api.registerSettingsRoutes(mux, base)

	return nil
}
