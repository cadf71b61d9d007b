package portal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	portal "github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/permissions"
)

func newModule(t *testing.T) *portal.Module {
	t.Helper()
	module, err := portal.New(portal.DefaultConfig())
	if err != nil {
		t.Fatalf("portal.New: %v", err)
	}
	return module
}

func seed(t *testing.T, module *portal.Module, reset bool) portal.SeedResult {
	t.Helper()
	result, err := portal.SeedAdminSidebar(context.Background(), portal.SeedSidebarOptions{
		Menus:      module.Menus(),
		Translator: module.Container().I18nService().Translator(),
		Reset:      reset,
	})
	if err != nil {
		t.Fatalf("SeedAdminSidebar: %v", err)
	}
	return result
}

func keyedSections() int {
	count := 0
	for _, section := range panel.DefaultSections() {
		if _, ok := section.(panel.ConfigurableSection); ok {
			count++
		}
	}
	return count
}

func TestSeedAdminSidebarCreatesGroupsAndSections(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)

	result := seed(t, module, false)
	want := len(panel.StaticGroups()) + keyedSections()
	if !result.MenuCreated || result.Created != want {
		t.Fatalf("expected menu and %d items, got %+v", want, result)
	}

	tree, err := module.Menus().MenuTree(ctx, "admin_sidebar")
	if err != nil {
		t.Fatalf("MenuTree: %v", err)
	}
	if len(tree) != len(panel.StaticGroups()) {
		t.Fatalf("expected %d roots, got %d", len(panel.StaticGroups()), len(tree))
	}
	if tree[0].Item.RouteName != panel.GroupContent {
		t.Fatalf("expected content first, got %q", tree[0].Item.RouteName)
	}
	if tree[0].Item.Labels["ms"] != "Kandungan" || tree[0].Item.Labels["en"] != "Content" {
		t.Fatalf("unexpected group labels %v", tree[0].Item.Labels)
	}

	nav := module.Sidebar(ctx, "en", permissions.NewSet("*"))
	if len(nav.Groups) == 0 || nav.Groups[0].Key != panel.GroupContent {
		t.Fatalf("unexpected sidebar %+v", nav.Groups)
	}
	for _, group := range nav.Groups {
		for _, section := range group.Sections {
			if section.Name == "audit-log" && group.Key != panel.GroupSettings {
				t.Fatalf("audit-log moved to %q", group.Key)
			}
		}
	}
}

func TestSeedAdminSidebarKeepsAdminEditsUnlessReset(t *testing.T) {
	ctx := context.Background()
	module := newModule(t)
	seed(t, module, false)

	menu, err := module.Menus().GetMenuByName(ctx, "admin_sidebar")
	if err != nil {
		t.Fatalf("GetMenuByName: %v", err)
	}
	items, err := module.Menus().ListMenuItems(ctx, menu.ID)
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	var broadcasts *menus.MenuItem
	for _, item := range items {
		if item.Key() == "broadcasts" {
			broadcasts = item
		}
	}
	if broadcasts == nil {
		t.Fatalf("broadcasts item not seeded")
	}

	hidden := false
	sortOrder := 42
	if _, err := module.Menus().UpdateMenuItem(ctx, menus.UpdateMenuItemInput{
		ID:        broadcasts.ID,
		IsActive:  &hidden,
		SortOrder: &sortOrder,
		UpdatedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}

	again := seed(t, module, false)
	if again.MenuCreated || again.Created != 0 || again.Skipped == 0 {
		t.Fatalf("expected idempotent reseed, got %+v", again)
	}
	if module.NavigationResolver().Visible(ctx, "broadcasts") {
		t.Fatalf("reseed must keep the hidden section hidden")
	}

	reset := seed(t, module, true)
	if reset.Reset == 0 {
		t.Fatalf("expected reset items, got %+v", reset)
	}
	if !module.NavigationResolver().Visible(ctx, "broadcasts") {
		t.Fatalf("reset must restore visibility")
	}
	if sort, ok := module.NavigationResolver().Sort(ctx, "broadcasts"); !ok || sort != 1 {
		t.Fatalf("expected default sort 1, got %d %v", sort, ok)
	}
}

func TestSeedAdminSidebarRequiresMenus(t *testing.T) {
	if _, err := portal.SeedAdminSidebar(context.Background(), portal.SeedSidebarOptions{}); err != portal.ErrSeedMenuServiceRequired {
		t.Fatalf("expected ErrSeedMenuServiceRequired, got %v", err)
	}
}
