package navigation

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Projections supplies the group and item views of the watched menu.
// *Cache is the production implementation.
type Projections interface {
	Groups(ctx context.Context) *GroupSet
	Items(ctx context.Context) *ItemSet
}

// Resolver answers ordering and visibility questions by stable key.
// Unknown keys are never errors: Sort and GroupSort report absence and
// Visible defaults to true so unconfigured sections still render.
type Resolver struct {
	projections Projections
}

// NewResolver creates a resolver over projections.
func NewResolver(projections Projections) *Resolver {
	return &Resolver{projections: projections}
}

// Sort returns the configured sort order of the section with key.
func (r *Resolver) Sort(ctx context.Context, key string) (int, bool) {
	item, ok := r.Item(ctx, key)
	if !ok {
		return 0, false
	}
	return item.Sort, true
}

// Visible reports whether the section with key should render.
func (r *Resolver) Visible(ctx context.Context, key string) bool {
	item, ok := r.Item(ctx, key)
	if !ok {
		return true
	}
	return item.Active
}

// Item returns the projected item with key.
func (r *Resolver) Item(ctx context.Context, key string) (Item, bool) {
	key = strings.TrimSpace(key)
	if r == nil || r.projections == nil || key == "" {
		return Item{}, false
	}
	return r.projections.Items(ctx).Lookup(key)
}

// Groups returns every configured group in ascending sort order, inactive
// ones included. The slice is empty when the menu is missing or the store is
// unreachable.
func (r *Resolver) Groups(ctx context.Context) []Group {
	if r == nil || r.projections == nil {
		return []Group{}
	}
	set := r.projections.Groups(ctx)
	if set == nil {
		return []Group{}
	}
	return slices.Clone(set.Groups)
}

// Group returns the projected group with key.
func (r *Resolver) Group(ctx context.Context, key string) (Group, bool) {
	if r == nil || r.projections == nil {
		return Group{}, false
	}
	return r.projections.Groups(ctx).Lookup(key)
}

// GroupSort returns the configured sort order of the group with key.
func (r *Resolver) GroupSort(ctx context.Context, key string) (int, bool) {
	group, ok := r.Group(ctx, key)
	if !ok {
		return 0, false
	}
	return group.Sort, true
}

// ResolvedAt reports when the current group projection was computed.
func (r *Resolver) ResolvedAt(ctx context.Context) time.Time {
	if r == nil || r.projections == nil {
		return time.Time{}
	}
	if set := r.projections.Groups(ctx); set != nil {
		return set.ResolvedAt
	}
	return time.Time{}
}
