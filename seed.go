package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/identity"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

var ErrSeedMenuServiceRequired = errors.New("portal: menu service is required")

// SeedSidebarOptions configures SeedAdminSidebar. Zero values seed the
// default groups and sections into "admin_sidebar" as the system actor.
type SeedSidebarOptions struct {
	Menus      MenuService
	Translator interfaces.Translator
	Locales    []string
	MenuName   string
	Actor      uuid.UUID
	Groups     []panel.GroupDefinition
	Sections   []panel.Section
	// Reset moves existing seeded items back to their default group, sort
	// order and visibility. Without it items edited by an administrator are
	// left alone and only missing ones are created.
	Reset bool
}

// SeedResult counts what SeedAdminSidebar changed.
type SeedResult struct {
	MenuCreated bool
	Created     int
	Reset       int
	Skipped     int
}

// SeedAdminSidebar converges the sidebar menu onto the group table and the
// keyed sections. Item ids are derived from the menu id and navigation key,
// so repeated runs find the rows they created.
func SeedAdminSidebar(ctx context.Context, opts SeedSidebarOptions) (SeedResult, error) {
	var result SeedResult
	if opts.Menus == nil {
		return result, ErrSeedMenuServiceRequired
	}
	name := strings.TrimSpace(opts.MenuName)
	if name == "" {
		name = DefaultConfig().Navigation.SidebarMenu
	}
	if opts.Actor == uuid.Nil {
		opts.Actor = identity.SystemActor()
	}
	if len(opts.Locales) == 0 {
		opts.Locales = DefaultConfig().I18N.Locales
	}
	if opts.Groups == nil {
		opts.Groups = panel.StaticGroups()
	}
	if opts.Sections == nil {
		opts.Sections = panel.DefaultSections()
	}

	menu, err := opts.Menus.GetMenuByName(ctx, name)
	switch {
	case menus.IsNotFound(err):
		menu, err = opts.Menus.CreateMenu(ctx, menus.CreateMenuInput{
			ID:        identity.MenuUUID(name),
			Name:      name,
			Labels:    labels(opts.Translator, opts.Locales, "panel.menu."+name, name),
			CreatedBy: opts.Actor,
		})
		if err != nil {
			return result, fmt.Errorf("portal: seed menu %s: %w", name, err)
		}
		result.MenuCreated = true
	case err != nil:
		return result, err
	}

	groupIDs := make(map[string]uuid.UUID, len(opts.Groups))
	for idx, group := range opts.Groups {
		item := seedItem{
			key:    group.Key,
			labels: labels(opts.Translator, opts.Locales, group.LabelKey, group.Key),
			sort:   idx + 1,
		}
		id, err := converge(ctx, opts, menu.ID, item, &result)
		if err != nil {
			return result, err
		}
		groupIDs[group.Key] = id
	}

	for _, section := range opts.Sections {
		configurable, ok := section.(panel.ConfigurableSection)
		if !ok {
			continue
		}
		key := strings.TrimSpace(configurable.NavigationKey())
		if key == "" {
			continue
		}
		sort, _ := section.DefaultSort()
		item := seedItem{
			key:    key,
			labels: labels(opts.Translator, opts.Locales, section.LabelKey(), section.Name()),
			icon:   section.Icon(),
			sort:   sort,
		}
		if parent, ok := groupIDs[section.GroupKey()]; ok {
			item.parent = &parent
		}
		if _, err := converge(ctx, opts, menu.ID, item, &result); err != nil {
			return result, err
		}
	}
	return result, nil
}

type seedItem struct {
	key    string
	labels map[string]string
	icon   string
	sort   int
	parent *uuid.UUID
}

func converge(ctx context.Context, opts SeedSidebarOptions, menuID uuid.UUID, item seedItem, result *SeedResult) (uuid.UUID, error) {
	id := identity.MenuItemUUID(menuID, item.key)
	existing, err := opts.Menus.GetMenuItem(ctx, id)
	switch {
	case err == nil:
		if !opts.Reset {
			result.Skipped++
			return existing.ID, nil
		}
		active := true
		update := menus.UpdateMenuItemInput{
			ID:        existing.ID,
			Labels:    item.labels,
			SortOrder: &item.sort,
			IsActive:  &active,
			UpdatedBy: opts.Actor,
		}
		if item.parent != nil {
			update.ParentID = item.parent
		} else {
			update.ClearParent = true
		}
		if _, err := opts.Menus.UpdateMenuItem(ctx, update); err != nil && !errors.Is(err, menus.ErrNotifyFailed) {
			return uuid.Nil, fmt.Errorf("portal: reset %s: %w", item.key, err)
		}
		result.Reset++
		return existing.ID, nil
	case !menus.IsNotFound(err):
		return uuid.Nil, err
	}

	_, err = opts.Menus.AddMenuItem(ctx, menus.AddMenuItemInput{
		ID:        id,
		MenuID:    menuID,
		ParentID:  item.parent,
		Labels:    item.labels,
		RouteName: item.key,
		Icon:      item.icon,
		SortOrder: item.sort,
		CreatedBy: opts.Actor,
	})
	switch {
	case errors.Is(err, menus.ErrDuplicateKey):
		// An administrator created the key by hand; leave their row in place.
		result.Skipped++
		return existingKey(ctx, opts.Menus, menuID, item)
	case err != nil && !errors.Is(err, menus.ErrNotifyFailed):
		return uuid.Nil, fmt.Errorf("portal: seed %s: %w", item.key, err)
	}
	result.Created++
	return id, nil
}

func existingKey(ctx context.Context, svc MenuService, menuID uuid.UUID, item seedItem) (uuid.UUID, error) {
	items, err := svc.ListMenuItems(ctx, menuID)
	if err != nil {
		return uuid.Nil, err
	}
	for _, candidate := range items {
		if candidate.Key() != item.key {
			continue
		}
		if (candidate.ParentID == nil) == (item.parent == nil) {
			return candidate.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("portal: seed %s: %w", item.key, menus.ErrDuplicateKey)
}

func labels(translator interfaces.Translator, locales []string, key, fallback string) map[string]string {
	out := make(map[string]string, len(locales))
	for _, locale := range locales {
		text := i18n.Label(translator, locale, key)
		if text == "" || text == key {
			text = fallback
		}
		out[locale] = text
	}
	return out
}
