package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-portal/internal/permissions"
)

// RolesHeader carries the comma separated roles of the authenticated viewer.
// It is set by the upstream authentication proxy.
const RolesHeader = "X-Portal-Roles"

// Authorize maps the viewer roles to permissions through roles and stores
// both on the request context. Requests without roles get an empty
// permission set, which denies every guarded route.
func Authorize(roles permissions.RoleMap, next http.Handler) http.Handler {
	if roles == nil {
		roles = permissions.DefaultRoles()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := parseRoles(r.Header.Get(RolesHeader))
		ctx := permissions.WithChecker(r.Context(), roles.Checker(viewer...))
		ctx = permissions.WithRoles(ctx, viewer...)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseRoles(header string) []string {
	var out []string
	for _, part := range strings.Split(header, ",") {
		if role := strings.TrimSpace(part); role != "" {
			out = append(out, role)
		}
	}
	return out
}
