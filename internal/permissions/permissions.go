package permissions

import (
	"context"
	"errors"
	"slices"
	"strings"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	ResourceMenus      = "menus"
	ResourceNavigation = "navigation"
	ResourceSettings   = "settings"
)

const (
	MenusRead   = "menus:read"
	MenusCreate = "menus:create"
	MenusUpdate = "menus:update"
	MenusDelete = "menus:delete"

	NavigationRead   = "navigation:read"
	NavigationManage = "navigation:update"

	SettingsRead   = "settings:read"
	SettingsUpdate = "settings:update"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// PermissionSet captures the CRUD permission tokens of one resource.
type PermissionSet struct {
	Read   string `json:"read,omitempty"`
	Create string `json:"create,omitempty"`
	Update string `json:"update,omitempty"`
	Delete string `json:"delete,omitempty"`
}

// ResourcePermissions creates a permission set for a resource.
func ResourcePermissions(resource string) PermissionSet {
	normalized := normalizeToken(resource)
	return PermissionSet{
		Read:   Join(normalized, ActionRead),
		Create: Join(normalized, ActionCreate),
		Update: Join(normalized, ActionUpdate),
		Delete: Join(normalized, ActionDelete),
	}
}

// SettingsGroupPermissions returns the permissions guarding one settings group.
func SettingsGroupPermissions(group string) PermissionSet {
	return ResourcePermissions(ResourceSettings + "." + normalizeToken(group))
}

// Join builds a permission token from resource and action.
func Join(resource string, action Action) string {
	res := normalizeToken(resource)
	act := normalizeToken(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

// List returns the non-empty permissions in the set.
func (p PermissionSet) List() []string {
	out := make([]string, 0, 4)
	for _, perm := range []string{p.Read, p.Create, p.Update, p.Delete} {
		if perm != "" {
			out = append(out, perm)
		}
	}
	return out
}

type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// Set is a static permission list. "resource:*" grants every action on a
// resource and its dotted sub-resources ("settings:*" covers
// "settings.mail:read"); "*" grants everything.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	resource, _ := splitPermission(normalized)
	for resource != "" {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
		idx := strings.LastIndexByte(resource, '.')
		if idx < 0 {
			break
		}
		resource = resource[:idx]
	}
	if _, ok := s["*"]; ok {
		return true
	}
	return false
}

// List returns the permissions of the set in sorted order.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for perm := range s {
		out = append(out, perm)
	}
	slices.Sort(out)
	return out
}

// RoleMap grants permission lists to role names.
type RoleMap map[string][]string

// DefaultRoles is the ministry role table.
func DefaultRoles() RoleMap {
	return RoleMap{
		"super_admin": {"*"},
		"admin": {
			"menus:*", "navigation:*", "settings:*", "users:*", "roles:*",
			"broadcasts:*", "achievements:*", "policies:*", "pages:*",
			"staff-directory:*", "media:*", "feedback:*", "homepage:*",
		},
		"editor": {
			"broadcasts:*", "achievements:*", "policies:*", "pages:*",
			"media:*", "homepage:read", "homepage:update", "navigation:read",
		},
		"officer": {
			"feedback:read", "feedback:update", "staff-directory:read", "navigation:read",
		},
	}
}

// Checker returns the union of the permissions granted to roles.
func (m RoleMap) Checker(roles ...string) Set {
	set := Set{}
	for _, role := range roles {
		for _, perm := range m[normalizeToken(role)] {
			if normalized := normalizePermission(perm); normalized != "" {
				set[normalized] = struct{}{}
			}
		}
	}
	return set
}

type Permissioner interface {
	HasPermission(permission string) bool
}

type contextKey string

const (
	checkerKey contextKey = "portal.permissions.checker"
	rolesKey   contextKey = "portal.permissions.roles"
)

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil || len(perms) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// WithRoles stores the viewer roles on the context. Navigation uses them for
// role gated menu items.
func WithRoles(ctx context.Context, roles ...string) context.Context {
	if ctx == nil || len(roles) == 0 {
		return ctx
	}
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		if role = normalizeToken(role); role != "" {
			normalized = append(normalized, role)
		}
	}
	return context.WithValue(ctx, rolesKey, normalized)
}

// RolesFromContext returns the roles stored with WithRoles.
func RolesFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	roles, _ := ctx.Value(rolesKey).([]string)
	return slices.Clone(roles)
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	value := ctx.Value(checkerKey)
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case Checker:
		return typed
	case Permissioner:
		return CheckerFunc(typed.HasPermission)
	case []string:
		return NewSet(typed...)
	case map[string]struct{}:
		return Set(typed)
	case map[string]bool:
		set := Set{}
		for key, allowed := range typed {
			if !allowed {
				continue
			}
			if normalized := normalizePermission(key); normalized != "" {
				set[normalized] = struct{}{}
			}
		}
		return set
	default:
		return nil
	}
}

// Allowed reports whether the provided permission is allowed for the context.
// Contexts without a checker allow everything.
func Allowed(ctx context.Context, permission string) bool {
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return true
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return true
	}
	return checker.Allowed(normalized)
}

// Require enforces a permission requirement when a checker is available on the context.
func Require(ctx context.Context, permission string) error {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return nil
	}
	if checker.Allowed(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

func splitPermission(permission string) (string, Action) {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return "", ""
	}
	parts := strings.SplitN(normalized, ":", 2)
	resource := normalizeToken(parts[0])
	if len(parts) == 1 {
		return resource, ""
	}
	return resource, Action(normalizeToken(parts[1]))
}

func normalizePermission(permission string) string {
	trimmed := strings.TrimSpace(permission)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
