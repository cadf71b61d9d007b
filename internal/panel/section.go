package panel

import (
	"context"
	"strings"

	"github.com/goliatone/go-portal/internal/permissions"
)

// Section is an admin panel entry declared in code.
type Section interface {
	Name() string
	LabelKey() string
	GroupKey() string
	Icon() string
	DefaultSort() (int, bool)
	Permissions() permissions.PermissionSet
}

// ConfigurableSection is a Section whose ordering and visibility are data.
// NavigationKey names the menu item holding its configuration; an empty key
// opts the section out.
type ConfigurableSection interface {
	Section
	NavigationKey() string
}

// SectionResolver answers ordering and visibility by stable key.
// *navigation.Resolver satisfies it.
type SectionResolver interface {
	Sort(ctx context.Context, key string) (int, bool)
	Visible(ctx context.Context, key string) bool
}

// SortFor returns the sort order of s. Configurable sections ask the
// resolver first and fall back to their default when it reports absence.
func SortFor(ctx context.Context, resolver SectionResolver, s Section) (int, bool) {
	if key := navigationKey(s); key != "" && resolver != nil {
		if sort, ok := resolver.Sort(ctx, key); ok {
			return sort, true
		}
	}
	return s.DefaultSort()
}

// VisibleFor reports whether s renders. Sections without a navigation key
// are always visible.
func VisibleFor(ctx context.Context, resolver SectionResolver, s Section) bool {
	key := navigationKey(s)
	if key == "" || resolver == nil {
		return true
	}
	return resolver.Visible(ctx, key)
}

func navigationKey(s Section) string {
	configurable, ok := s.(ConfigurableSection)
	if !ok {
		return ""
	}
	return strings.TrimSpace(configurable.NavigationKey())
}

// Definition is a plain Section. Sort is nil when the section has no
// default position.
type Definition struct {
	SectionName string
	Label       string
	Group       string
	IconName    string
	Sort        *int
	Perms       permissions.PermissionSet
}

var _ Section = Definition{}

func (d Definition) Name() string     { return d.SectionName }
func (d Definition) LabelKey() string { return d.Label }
func (d Definition) GroupKey() string { return d.Group }
func (d Definition) Icon() string     { return d.IconName }

func (d Definition) DefaultSort() (int, bool) {
	if d.Sort == nil {
		return 0, false
	}
	return *d.Sort, true
}

func (d Definition) Permissions() permissions.PermissionSet {
	return d.Perms
}

// Keyed is a Definition that reads its ordering and visibility from the
// navigation menu item with Key.
type Keyed struct {
	Definition
	Key string
}

var _ ConfigurableSection = Keyed{}

func (k Keyed) NavigationKey() string { return k.Key }
