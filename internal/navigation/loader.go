package navigation

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// MenuFinder looks a menu up by its unique name.
type MenuFinder interface {
	GetByName(ctx context.Context, name string) (*menus.Menu, error)
}

// ItemLister lists the two levels of a menu ordered by sort order.
type ItemLister interface {
	ListRoots(ctx context.Context, menuID uuid.UUID) ([]*menus.MenuItem, error)
	ListNested(ctx context.Context, menuID uuid.UUID) ([]*menus.MenuItem, error)
}

// Source computes projections of a named menu. The bool result reports
// whether the projection reflects the store; false means the read failed and
// an empty projection was substituted.
type Source interface {
	LoadGroups(ctx context.Context, menu string) (*GroupSet, bool)
	LoadItems(ctx context.Context, menu string) (*ItemSet, bool)
	MenuID(ctx context.Context, menu string) (uuid.UUID, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used to report swallowed store errors.
func WithLoaderLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLoaderClock overrides the ResolvedAt timestamp source.
func WithLoaderClock(now func() time.Time) LoaderOption {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// Loader reads projections straight from the menu store. Store failures,
// missing tables included, never escape: they are logged at warn level and
// produce empty projections so boot does not depend on a seeded database.
type Loader struct {
	menus  MenuFinder
	items  ItemLister
	logger interfaces.Logger
	now    func() time.Time
}

var _ Source = (*Loader)(nil)

// NewLoader creates a store backed Source.
func NewLoader(menuFinder MenuFinder, items ItemLister, opts ...LoaderOption) *Loader {
	l := &Loader{
		menus:  menuFinder,
		items:  items,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *Loader) LoadGroups(ctx context.Context, name string) (*GroupSet, bool) {
	set := &GroupSet{Menu: name, Groups: []Group{}, ResolvedAt: l.now().UTC()}
	menu, ok := l.menu(ctx, name)
	if !ok {
		return set, false
	}
	if menu == nil {
		return set, true
	}
	set.MenuID = menu.ID
	if !menu.IsActive {
		return set, true
	}

	roots, err := l.items.ListRoots(ctx, menu.ID)
	if err != nil {
		l.logger.Warn("navigation.groups.load_failed", "menu", name, "error", err)
		return set, false
	}
	for _, root := range roots {
		key := root.Key()
		if key == "" || slices.ContainsFunc(set.Groups, func(g Group) bool { return g.Key == key }) {
			continue
		}
		set.Groups = append(set.Groups, Group{
			Key:    key,
			Labels: maps.Clone(root.Labels),
			Sort:   root.SortOrder,
			Active: root.IsActive,
			Icon:   root.Icon,
		})
	}
	// Stores order by sort order already; re-sorting stably guards custom
	// repositories that do not.
	slices.SortStableFunc(set.Groups, func(a, b Group) int { return cmp.Compare(a.Sort, b.Sort) })
	return set, true
}

func (l *Loader) LoadItems(ctx context.Context, name string) (*ItemSet, bool) {
	set := &ItemSet{Menu: name, Items: map[string]Item{}, ResolvedAt: l.now().UTC()}
	menu, ok := l.menu(ctx, name)
	if !ok {
		return set, false
	}
	if menu == nil {
		return set, true
	}
	set.MenuID = menu.ID
	if !menu.IsActive {
		return set, true
	}

	roots, err := l.items.ListRoots(ctx, menu.ID)
	if err != nil {
		l.logger.Warn("navigation.items.load_failed", "menu", name, "error", err)
		return set, false
	}
	parents := make(map[uuid.UUID]string, len(roots))
	for _, root := range roots {
		parents[root.ID] = root.Key()
	}

	nested, err := l.items.ListNested(ctx, menu.ID)
	if err != nil {
		l.logger.Warn("navigation.items.load_failed", "menu", name, "error", err)
		return set, false
	}
	for _, item := range nested {
		key := item.Key()
		if key == "" {
			continue
		}
		if _, exists := set.Items[key]; exists {
			continue
		}
		var parentKey string
		if item.ParentID != nil {
			parentKey = parents[*item.ParentID]
		}
		set.Items[key] = Item{
			Key:       key,
			ParentKey: parentKey,
			Labels:    maps.Clone(item.Labels),
			Sort:      item.SortOrder,
			Active:    item.IsActive,
			Icon:      item.Icon,
			Roles:     slices.Clone(item.Roles),
		}
	}
	return set, true
}

// menu returns (nil, true) for a missing menu, which is a normal unconfigured
// state, and (nil, false) when the store failed. Inactive menus project as
// empty.
func (l *Loader) menu(ctx context.Context, name string) (*menus.Menu, bool) {
	name = strings.TrimSpace(name)
	if l == nil || l.menus == nil || l.items == nil || name == "" {
		return nil, true
	}
	menu, err := l.menus.GetByName(ctx, name)
	if err != nil {
		if menus.IsNotFound(err) {
			l.logger.Debug("navigation.menu.missing", "menu", name)
			return nil, true
		}
		l.logger.Warn("navigation.menu.load_failed", "menu", name, "error", err)
		return nil, false
	}
	return menu, true
}

// MenuID resolves the id of the named menu.
func (l *Loader) MenuID(ctx context.Context, name string) (uuid.UUID, bool) {
	menu, ok := l.menu(ctx, name)
	if !ok || menu == nil {
		return uuid.Nil, false
	}
	return menu.ID, true
}
