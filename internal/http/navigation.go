package http

import (
	"net/http"
	"strings"

	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/permissions"
)

type invalidatePayload struct {
	Menu string `json:"menu,omitempty"`
}

func (api *AdminAPI) registerNavigationRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "navigation")
	mux.HandleFunc("GET "+root, api.handleNavigation)
	mux.HandleFunc("POST "+root+"/invalidate", api.handleNavigationInvalidate)
}

// handleNavigation renders the sidebar for the caller's permissions.
func (api *AdminAPI) handleNavigation(w http.ResponseWriter, r *http.Request) {
	if api.panel == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.NavigationRead) {
		return
	}
	nav := api.panel.Build(r.Context(), panel.BuildRequest{
		Locale:      strings.TrimSpace(r.URL.Query().Get("locale")),
		Permissions: permissions.CheckerFromContext(r.Context()),
	})
	writeJSON(w, http.StatusOK, nav)
}

func (api *AdminAPI) handleNavigationInvalidate(w http.ResponseWriter, r *http.Request) {
	if api.invalidate == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.NavigationManage) {
		return
	}
	var payload invalidatePayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	if payload.Menu == "" {
		payload.Menu = r.URL.Query().Get("menu")
	}
	if err := api.invalidate.Execute(r.Context(), navigationcmd.InvalidateNavigationCommand{Menu: payload.Menu}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
