package menus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func newBunService(t *testing.T) menus.Service {
	t.Helper()
	db := testsupport.NewBunDB(t, (*menus.Menu)(nil), (*menus.MenuItem)(nil))

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	serializer := repocache.NewDefaultKeySerializer()

	return menus.NewService(
		menus.NewBunMenuRepositoryWithCache(db, cacheService, serializer),
		menus.NewBunMenuItemRepositoryWithCache(db, cacheService, serializer),
	)
}

func TestMenuService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()
	svc := newBunService(t)

	menu := mustMenu(t, svc, "admin_sidebar")
	content := mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "content", SortOrder: 2, Icon: "file"})
	settings := mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "settings", SortOrder: 1})
	broadcasts := mustItem(t, svc, menus.AddMenuItemInput{
		MenuID:    menu.ID,
		ParentID:  &content.ID,
		RouteName: "broadcasts",
		Roles:     []string{"editor"},
		Labels:    map[string]string{"ms": "Siaran Media", "en": "Media Releases"},
	})

	// Warm the read cache before mutating.
	if _, err := svc.GetMenuItem(ctx, broadcasts.ID); err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}

	updated, err := svc.UpdateMenuItem(ctx, menus.UpdateMenuItemInput{ID: broadcasts.ID, Icon: testsupport.Ptr("megaphone")})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if updated.Icon != "megaphone" {
		t.Fatalf("expected icon update, got %q", updated.Icon)
	}
	reloaded, err := svc.GetMenuItem(ctx, broadcasts.ID)
	if err != nil {
		t.Fatalf("GetMenuItem after update: %v", err)
	}
	if reloaded.Icon != "megaphone" {
		t.Fatalf("expected cache to be invalidated, got icon %q", reloaded.Icon)
	}
	if reloaded.Labels["en"] != "Media Releases" || len(reloaded.Roles) != 1 {
		t.Fatalf("expected json columns to round trip, got %+v", reloaded)
	}

	tree, err := svc.MenuTree(ctx, "admin_sidebar")
	if err != nil {
		t.Fatalf("MenuTree: %v", err)
	}
	if len(tree) != 2 || tree[0].Item.ID != settings.ID || len(tree[1].Children) != 1 {
		t.Fatalf("unexpected tree %+v", tree)
	}

	if _, err := svc.ReorderMenuItems(ctx, menus.ReorderMenuItemsInput{
		MenuID: menu.ID,
		Items:  []menus.ItemOrder{{ID: content.ID, SortOrder: 0}},
	}); err != nil {
		t.Fatalf("ReorderMenuItems: %v", err)
	}
	roots, err := svc.MenuTree(ctx, "admin_sidebar")
	if err != nil {
		t.Fatalf("MenuTree after reorder: %v", err)
	}
	if roots[0].Item.ID != content.ID {
		t.Fatalf("expected content first after reorder")
	}

	if err := svc.DeleteMenuItem(ctx, menus.DeleteMenuItemRequest{ID: content.ID}); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if _, err := svc.GetMenuItem(ctx, broadcasts.ID); !menus.IsNotFound(err) {
		t.Fatalf("expected child removed with its root, got %v", err)
	}

	if err := svc.DeleteMenu(ctx, menus.DeleteMenuRequest{ID: menu.ID}); err != nil {
		t.Fatalf("DeleteMenu: %v", err)
	}
	if _, err := svc.GetMenuByName(ctx, "admin_sidebar"); !menus.IsNotFound(err) {
		t.Fatalf("expected menu removed, got %v", err)
	}
	if _, err := svc.GetMenuItem(ctx, settings.ID); !menus.IsNotFound(err) {
		t.Fatalf("expected items removed with menu, got %v", err)
	}
}

// failingEvictions serves reads through a real cache but rejects every
// prefix eviction.
type failingEvictions struct {
	repocache.CacheService
}

func (failingEvictions) DeleteByPrefix(context.Context, string) error {
	return errors.New("cache backend unavailable")
}

func TestMenuService_CommittedWriteSurvivesFailedEviction(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*menus.Menu)(nil), (*menus.MenuItem)(nil))

	base, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	cacheService := failingEvictions{CacheService: base}
	serializer := repocache.NewDefaultKeySerializer()
	logger := testsupport.NewRecordingLogger()

	var events []menus.Event
	svc := menus.NewService(
		menus.NewBunMenuRepositoryWithCache(db, cacheService, serializer, menus.WithBunLogger(logger)),
		menus.NewBunMenuItemRepositoryWithCache(db, cacheService, serializer, menus.WithBunLogger(logger)),
		menus.WithObserver(menus.ObserverFunc(func(_ context.Context, event menus.Event) error {
			events = append(events, event)
			return nil
		})),
	)

	menu := mustMenu(t, svc, "admin_sidebar")
	item := mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "content"})

	updated, err := svc.UpdateMenuItem(ctx, menus.UpdateMenuItemInput{ID: item.ID, Icon: testsupport.Ptr("file")})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if updated.Icon != "file" {
		t.Fatalf("expected committed icon, got %q", updated.Icon)
	}
	if len(events) == 0 || events[len(events)-1].Type != menus.EventItemUpdated || events[len(events)-1].ItemID != item.ID {
		t.Fatalf("expected item update event after commit, got %+v", events)
	}
	if !logger.Has("WARN", "menus.cache.evict_failed") {
		t.Fatalf("expected eviction failure to be logged, got %+v", logger.Entries())
	}
}
