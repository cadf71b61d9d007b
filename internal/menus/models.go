package menus

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Link targets accepted for menu items.
const (
	TargetSelf  = "_self"
	TargetBlank = "_blank"
)

// Menu is a named navigation container. Its items form a two level tree.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID        uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	Name      string            `bun:"name,notnull,unique" json:"name"`
	Labels    map[string]string `bun:"labels,type:jsonb" json:"labels,omitempty"`
	IsActive  bool              `bun:"is_active,notnull" json:"is_active"`
	CreatedBy uuid.UUID         `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy uuid.UUID         `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
	Items     []*MenuItem       `bun:"rel:has-many,join:id=menu_id" json:"items,omitempty"`
}

// MenuItem is a single entry of a menu. RouteName doubles as the stable key
// used by navigation lookups.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items,alias:mi"`

	ID              uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	MenuID          uuid.UUID         `bun:"menu_id,notnull,type:uuid" json:"menu_id"`
	ParentID        *uuid.UUID        `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Labels          map[string]string `bun:"labels,type:jsonb" json:"labels"`
	URL             string            `bun:"url" json:"url,omitempty"`
	RouteName       string            `bun:"route_name" json:"route_name,omitempty"`
	RouteParams     map[string]string `bun:"route_params,type:jsonb" json:"route_params,omitempty"`
	Icon            string            `bun:"icon" json:"icon,omitempty"`
	SortOrder       int               `bun:"sort_order,notnull,default:0" json:"sort_order"`
	Target          string            `bun:"target,notnull" json:"target"`
	IsActive        bool              `bun:"is_active,notnull" json:"is_active"`
	Roles           []string          `bun:"roles,type:jsonb" json:"roles,omitempty"`
	MegaMenuColumns *int              `bun:"mega_menu_columns" json:"mega_menu_columns,omitempty"`
	CreatedBy       uuid.UUID         `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy       uuid.UUID         `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt       time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsRoot reports whether the item sits at the top level of its menu.
func (i *MenuItem) IsRoot() bool {
	return i != nil && i.ParentID == nil
}

// Key returns the stable lookup key.
func (i *MenuItem) Key() string {
	if i == nil {
		return ""
	}
	return strings.TrimSpace(i.RouteName)
}

// Label picks the label for locale, then fallback, then any non-empty label
// in locale order.
func (i *MenuItem) Label(locale, fallback string) string {
	if i == nil {
		return ""
	}
	return pickLabel(i.Labels, locale, fallback)
}

// VisibleTo reports whether a viewer holding roles may see the item. Items
// without roles are public.
func (i *MenuItem) VisibleTo(roles []string) bool {
	if i == nil {
		return false
	}
	if len(i.Roles) == 0 {
		return true
	}
	for _, required := range i.Roles {
		if slices.ContainsFunc(roles, func(role string) bool {
			return strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(required))
		}) {
			return true
		}
	}
	return false
}

// Label returns the localized menu label.
func (m *Menu) Label(locale, fallback string) string {
	if m == nil {
		return ""
	}
	if label := pickLabel(m.Labels, locale, fallback); label != "" {
		return label
	}
	return m.Name
}

func pickLabel(labels map[string]string, locale, fallback string) string {
	if v := strings.TrimSpace(labels[locale]); v != "" {
		return v
	}
	if v := strings.TrimSpace(labels[fallback]); v != "" {
		return v
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(labels[k]); v != "" {
			return v
		}
	}
	return ""
}
