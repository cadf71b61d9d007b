package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/internal/site"
)

// SiteAPI serves the public site context.
type SiteAPI struct {
	basePath string
	builder  *site.Builder
}

// NewSiteAPI mounts builder under basePath (defaults to "/api").
func NewSiteAPI(builder *site.Builder, basePath string) *SiteAPI {
	if strings.TrimSpace(basePath) == "" {
		basePath = "/api"
	}
	return &SiteAPI{basePath: basePath, builder: builder}
}

// Register attaches the public endpoints to the provided mux.
func (api *SiteAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: site api is nil")
	}
	mux.HandleFunc("GET "+joinPath(api.basePath, "site"), api.handleSite)
	return nil
}

func (api *SiteAPI) handleSite(w http.ResponseWriter, r *http.Request) {
	if api.builder == nil {
		unavailable(w)
		return
	}
	out, err := api.builder.Build(r.Context(), site.Request{
		Locale:         r.URL.Query().Get("locale"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		Roles:          permissions.RolesFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Language", out.Locale)
	writeJSON(w, http.StatusOK, out)
}
