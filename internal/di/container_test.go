package di_test

import (
	"context"
	"encoding/base64"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/di"
	portalhttp "github.com/goliatone/go-portal/internal/http"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/runtimeconfig"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Navigation.SidebarMenu = ""
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrSidebarMenuRequired) {
		t.Fatalf("expected ErrSidebarMenuRequired, got %v", err)
	}
}

func TestNewContainerRejectsBadAppKey(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Security.AppKey = "base64:" + base64.StdEncoding.EncodeToString([]byte("short"))
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrAppKeyInvalid) {
		t.Fatalf("expected ErrAppKeyInvalid, got %v", err)
	}
}

func TestContainerLogsConfiguration(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	rec := testsupport.NewRecordingLogger()

	if _, err := di.NewContainer(cfg, di.WithLoggerProvider(rec)); err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	var entry *testsupport.LogEntry
	for _, e := range rec.Entries() {
		if e.Message == "container.configured" {
			entry = &e
			break
		}
	}
	if entry == nil {
		t.Fatalf("expected container.configured entry, got %#v", rec.Entries())
	}
	if got := entry.Fields["module"]; got != "portal" {
		t.Fatalf("expected module portal, got %v", got)
	}
	if !argEquals(entry.Args, "persistence", "memory") {
		t.Fatalf("expected memory persistence, got %v", entry.Args)
	}
}

func TestContainerNavigationFollowsMenuWrites(t *testing.T) {
	ctx := context.Background()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	actor := uuid.New()
	svc := container.MenuService()

	menu, err := svc.CreateMenu(ctx, menus.CreateMenuInput{Name: container.Config.Navigation.SidebarMenu, CreatedBy: actor})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	group, err := svc.AddMenuItem(ctx, menus.AddMenuItemInput{
		MenuID:    menu.ID,
		Labels:    map[string]string{"ms": "Kandungan", "en": "Content"},
		RouteName: "content",
		SortOrder: 1,
		CreatedBy: actor,
	})
	if err != nil {
		t.Fatalf("AddMenuItem group: %v", err)
	}
	item, err := svc.AddMenuItem(ctx, menus.AddMenuItemInput{
		MenuID:    menu.ID,
		ParentID:  &group.ID,
		Labels:    map[string]string{"ms": "Siaran", "en": "Broadcasts"},
		RouteName: "broadcasts",
		SortOrder: 4,
		CreatedBy: actor,
	})
	if err != nil {
		t.Fatalf("AddMenuItem item: %v", err)
	}

	resolver := container.NavigationResolver()
	if sort, ok := resolver.Sort(ctx, "broadcasts"); !ok || sort != 4 {
		t.Fatalf("expected sort 4, got %d %v", sort, ok)
	}

	sortOrder := 9
	if _, err := svc.UpdateMenuItem(ctx, menus.UpdateMenuItemInput{ID: item.ID, SortOrder: &sortOrder, UpdatedBy: actor}); err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if sort, ok := resolver.Sort(ctx, "broadcasts"); !ok || sort != 9 {
		t.Fatalf("expected refreshed sort 9, got %d %v", sort, ok)
	}
}

func TestContainerBootstrapsFromSQLite(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = false
	cfg.Security.AppKey = "base64:" + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	container, err := di.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	runner, err := container.Migrator(os.DirFS("../.."))
	if err != nil {
		t.Fatalf("Migrator: %v", err)
	}
	if _, err := runner.Up(ctx); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := container.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if got := container.StorageDisks().Default().Name; got != "public" {
		t.Fatalf("expected public default disk, got %q", got)
	}

	if _, err := container.SettingsService().Put(ctx, settings.PutInput{
		Group:     settings.GroupStorage,
		Values:    map[string]any{"default_disk": "local"},
		UpdatedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("Put storage: %v", err)
	}
	if got := container.StorageDisks().Default().Name; got != "local" {
		t.Fatalf("expected local default disk after settings change, got %q", got)
	}

	stored, err := container.SettingsService().Get(ctx, settings.GroupStorage)
	if err != nil {
		t.Fatalf("Get storage: %v", err)
	}
	if stored.String("default_disk") != "local" {
		t.Fatalf("expected persisted default disk, got %v", stored)
	}
}

func TestContainerHandlerServesNavigation(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	handler, err := container.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/admin/api/navigation?locale=en", nil)
	req.Header.Set(portalhttp.RolesHeader, "super_admin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	anonymous := httptest.NewRequest(nethttp.MethodGet, "/admin/api/navigation", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, anonymous)
	if rec.Code != nethttp.StatusForbidden {
		t.Fatalf("expected 403 without roles, got %d", rec.Code)
	}

	site := httptest.NewRequest(nethttp.MethodGet, "/api/site", nil)
	site.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, site)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("expected site 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected en content language, got %q", got)
	}
}

func TestContainerMailDisabledUsesNoop(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Mail = false
	cfg.Mail.FromAddress = ""

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if container.MailTestHandler() != nil {
		t.Fatalf("expected no mail test handler")
	}
	if container.Mailer() == nil {
		t.Fatalf("expected noop mailer")
	}
	unsubscribe := container.SubscribeCommands(1)
	unsubscribe()
}

func argEquals(args []any, key string, want any) bool {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1] == want
		}
	}
	return false
}
