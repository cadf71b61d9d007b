package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-portal/internal/adapters/cache"
	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/crypto"
	portalhttp "github.com/goliatone/go-portal/internal/http"
	"github.com/goliatone/go-portal/internal/i18n"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/navigation"
	"github.com/goliatone/go-portal/internal/panel"
	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/site"
	"github.com/goliatone/go-portal/internal/themes"
)

type recordingSender struct {
	recipients []string
}

func (s *recordingSender) SendTest(_ context.Context, recipient, _ string) error {
	s.recipients = append(s.recipients, recipient)
	return nil
}

type testServer struct {
	handler http.Handler
	menus   menus.Service
	sender  *recordingSender
}

func setupServer(t *testing.T) testServer {
	t.Helper()

	locales, err := i18n.NewDefaultService(i18n.Config{DefaultLocale: "ms", Locales: []string{"ms", "en"}})
	if err != nil {
		t.Fatalf("i18n service: %v", err)
	}
	box, err := crypto.NewSecretBox([]byte(strings.Repeat("k", 32)))
	if err != nil {
		t.Fatalf("secret box: %v", err)
	}

	menuRepo := menus.NewMemoryMenuRepository()
	itemRepo := menus.NewMemoryMenuItemRepository()
	navCache := navigation.NewCache(cache.New(cache.DefaultConfig()), navigation.NewLoader(menuRepo, itemRepo))
	menuSvc := menus.NewService(menuRepo, itemRepo, menus.WithObserver(navCache))

	selector := themes.NewSelector(themes.NewRegistry(), themes.DefaultCode, nil)
	settingsSvc := settings.NewService(settings.NewMemoryRepository(),
		settings.WithEncrypter(box),
		settings.WithObserver(selector),
	)
	sender := &recordingSender{}

	admin := portalhttp.NewAdminAPI(
		portalhttp.WithMenuService(menuSvc),
		portalhttp.WithPanel(panel.NewAssembler(navigation.NewResolver(navCache), locales.Translator())),
		portalhttp.WithSettingsService(settingsSvc),
		portalhttp.WithNavigationCommands(
			navigationcmd.NewInvalidateHandler([]navigationcmd.Invalidator{navCache}, nil),
			navigationcmd.NewReorderHandler(menuSvc, nil),
		),
		portalhttp.WithMailTestCommand(mailcmd.NewSendTestHandler(sender, nil)),
	)
	public := portalhttp.NewSiteAPI(site.NewBuilder(menuSvc, settingsSvc, selector, locales), "")

	mux := http.NewServeMux()
	if err := admin.Register(mux); err != nil {
		t.Fatalf("register admin api: %v", err)
	}
	if err := public.Register(mux); err != nil {
		t.Fatalf("register site api: %v", err)
	}
	return testServer{
		handler: portalhttp.Authorize(nil, mux),
		menus:   menuSvc,
		sender:  sender,
	}
}

func (s testServer) do(t *testing.T, roles, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if roles != "" {
		req.Header.Set(portalhttp.RolesHeader, roles)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d (%s)", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

const admin = "admin"

func TestAdminAPI_MenuLifecycle(t *testing.T) {
	srv := setupServer(t)

	var menu menus.Menu
	decodeJSONBody(t, srv.do(t, admin, http.MethodPost, "/admin/api/menus",
		map[string]any{"name": "admin_sidebar", "labels": map[string]string{"ms": "Sisi", "en": "Sidebar"}},
		http.StatusCreated), &menu)
	if !menu.IsActive || menu.Name != "admin_sidebar" {
		t.Fatalf("unexpected menu %+v", menu)
	}

	srv.do(t, admin, http.MethodPost, "/admin/api/menus", map[string]any{"name": "admin_sidebar"}, http.StatusConflict)
	srv.do(t, admin, http.MethodPost, "/admin/api/menus", map[string]any{"name": "Bad Name"}, http.StatusBadRequest)

	itemsPath := "/admin/api/menus/" + menu.ID.String() + "/items"
	var root menus.MenuItem
	decodeJSONBody(t, srv.do(t, admin, http.MethodPost, itemsPath, map[string]any{
		"labels":     map[string]string{"ms": "Kandungan", "en": "Content"},
		"route_name": "content",
		"sort_order": 1,
	}, http.StatusCreated), &root)

	var child menus.MenuItem
	decodeJSONBody(t, srv.do(t, admin, http.MethodPost, itemsPath, map[string]any{
		"parent_id":  root.ID,
		"labels":     map[string]string{"ms": "Siaran Media"},
		"route_name": "broadcasts",
		"sort_order": 9,
	}, http.StatusCreated), &child)

	srv.do(t, admin, http.MethodPost, itemsPath, map[string]any{
		"parent_id":  root.ID,
		"labels":     map[string]string{"ms": "Pendua"},
		"route_name": "broadcasts",
	}, http.StatusConflict)
	srv.do(t, admin, http.MethodPost, itemsPath, map[string]any{
		"parent_id":  child.ID,
		"labels":     map[string]string{"ms": "Terlalu dalam"},
		"route_name": "deep",
	}, http.StatusBadRequest)

	var listed []menus.MenuItem
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, itemsPath, nil, http.StatusOK), &listed)
	if len(listed) != 2 {
		t.Fatalf("expected 2 items got %d", len(listed))
	}

	var nav panel.Navigation
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, "/admin/api/navigation?locale=en", nil, http.StatusOK), &nav)
	if nav.Locale != "en" || len(nav.Groups) == 0 {
		t.Fatalf("unexpected navigation %+v", nav)
	}
	content := nav.Groups[0]
	if content.Key != panel.GroupContent || content.Label != "Content" {
		t.Fatalf("expected content group first, got %+v", content)
	}
	last := content.Sections[len(content.Sections)-1]
	if last.Name != "broadcasts" || last.Sort == nil || *last.Sort != 9 {
		t.Fatalf("expected broadcasts moved to the end, got %+v", content.Sections)
	}

	srv.do(t, admin, http.MethodPut, "/admin/api/menu-items/"+child.ID.String(),
		map[string]any{"is_active": false}, http.StatusOK)
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, "/admin/api/navigation?locale=en", nil, http.StatusOK), &nav)
	for _, section := range nav.Groups[0].Sections {
		if section.Name == "broadcasts" {
			t.Fatalf("hidden section still rendered: %+v", nav.Groups[0].Sections)
		}
	}

	srv.do(t, admin, http.MethodDelete, "/admin/api/menu-items/"+root.ID.String(), nil, http.StatusNoContent)
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, itemsPath, nil, http.StatusOK), &listed)
	if len(listed) != 0 {
		t.Fatalf("expected root delete to cascade, got %d items", len(listed))
	}

	srv.do(t, admin, http.MethodDelete, "/admin/api/menus/"+menu.ID.String(), nil, http.StatusNoContent)
	srv.do(t, admin, http.MethodGet, "/admin/api/menus/"+menu.ID.String(), nil, http.StatusNotFound)
	srv.do(t, admin, http.MethodGet, "/admin/api/menus/not-a-uuid", nil, http.StatusBadRequest)
}

func TestAdminAPI_PermissionsFromRoles(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, "", http.MethodGet, "/admin/api/menus", nil, http.StatusForbidden)
	srv.do(t, "officer", http.MethodGet, "/admin/api/menus", nil, http.StatusForbidden)
	srv.do(t, "officer", http.MethodGet, "/admin/api/settings/mail", nil, http.StatusForbidden)

	var nav panel.Navigation
	decodeJSONBody(t, srv.do(t, "officer", http.MethodGet, "/admin/api/navigation", nil, http.StatusOK), &nav)
	if nav.Locale != "ms" {
		t.Fatalf("expected default locale, got %q", nav.Locale)
	}
	var names []string
	for _, group := range nav.Groups {
		for _, section := range group.Sections {
			names = append(names, section.Name)
		}
	}
	if strings.Join(names, ",") != "staff-directory,feedback" {
		t.Fatalf("officer should only see staff-directory and feedback, got %v", names)
	}
}

func TestAdminAPI_ReorderAndInvalidate(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()

	menu, err := srv.menus.CreateMenu(ctx, menus.CreateMenuInput{Name: "admin_sidebar"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	var ids []string
	for i, key := range []string{"content", "settings"} {
		item, err := srv.menus.AddMenuItem(ctx, menus.AddMenuItemInput{
			MenuID: menu.ID, Labels: map[string]string{"ms": key}, RouteName: key, SortOrder: i + 1,
		})
		if err != nil {
			t.Fatalf("AddMenuItem: %v", err)
		}
		ids = append(ids, item.ID.String())
	}

	reorderPath := "/admin/api/menus/" + menu.ID.String() + "/reorder"
	var items []menus.MenuItem
	decodeJSONBody(t, srv.do(t, admin, http.MethodPost, reorderPath, map[string]any{
		"items": []map[string]any{
			{"id": ids[0], "sort_order": 2},
			{"id": ids[1], "sort_order": 1},
		},
	}, http.StatusOK), &items)
	if len(items) != 2 || items[0].RouteName != "settings" {
		t.Fatalf("expected settings first after reorder, got %+v", items)
	}
	srv.do(t, admin, http.MethodPost, reorderPath, map[string]any{"items": []any{}}, http.StatusBadRequest)

	var nav panel.Navigation
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, "/admin/api/navigation", nil, http.StatusOK), &nav)
	if nav.Groups[0].Key != panel.GroupSettings {
		t.Fatalf("expected settings group first, got %q", nav.Groups[0].Key)
	}

	srv.do(t, admin, http.MethodPost, "/admin/api/navigation/invalidate", map[string]any{"menu": "admin_sidebar"}, http.StatusNoContent)
	srv.do(t, admin, http.MethodPost, "/admin/api/navigation/invalidate", nil, http.StatusNoContent)
	srv.do(t, admin, http.MethodPost, "/admin/api/navigation/invalidate", map[string]any{"menu": "public_header"}, http.StatusNotFound)
	srv.do(t, "editor", http.MethodPost, "/admin/api/navigation/invalidate", nil, http.StatusForbidden)
}

func TestAdminAPI_Settings(t *testing.T) {
	srv := setupServer(t)

	var groups []string
	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, "/admin/api/settings", nil, http.StatusOK), &groups)
	if len(groups) == 0 {
		t.Fatalf("expected registered groups")
	}

	mail := map[string]any{
		"host":         "smtp.kementerian.gov.my",
		"port":         587,
		"password":     "rahsia",
		"from_address": "noreply@kementerian.gov.my",
	}
	var saved struct {
		Group  string         `json:"group"`
		Values map[string]any `json:"values"`
	}
	decodeJSONBody(t, srv.do(t, admin, http.MethodPut, "/admin/api/settings/mail", map[string]any{"values": mail}, http.StatusOK), &saved)
	if saved.Values["password"] != settings.Mask {
		t.Fatalf("expected masked password, got %v", saved.Values["password"])
	}

	decodeJSONBody(t, srv.do(t, admin, http.MethodGet, "/admin/api/settings/MAIL", nil, http.StatusOK), &saved)
	if saved.Group != "mail" || saved.Values["host"] != "smtp.kementerian.gov.my" || saved.Values["password"] != settings.Mask {
		t.Fatalf("unexpected stored settings %+v", saved)
	}

	var failure struct {
		Error  string `json:"error"`
		Issues []any  `json:"issues"`
	}
	decodeJSONBody(t, srv.do(t, admin, http.MethodPut, "/admin/api/settings/mail",
		map[string]any{"values": map[string]any{"port": 25}}, http.StatusBadRequest), &failure)
	if failure.Error != "validation_failed" || len(failure.Issues) == 0 {
		t.Fatalf("expected schema issues, got %+v", failure)
	}

	srv.do(t, admin, http.MethodGet, "/admin/api/settings/payroll", nil, http.StatusNotFound)
	srv.do(t, "editor", http.MethodPut, "/admin/api/settings/mail", map[string]any{"values": mail}, http.StatusForbidden)
}

func TestAdminAPI_MailTest(t *testing.T) {
	srv := setupServer(t)

	srv.do(t, admin, http.MethodPost, "/admin/api/settings/mail/test", map[string]any{"to": "bukan-emel"}, http.StatusBadRequest)
	srv.do(t, admin, http.MethodPost, "/admin/api/settings/mail/test", map[string]any{"to": "pentadbir@kementerian.gov.my"}, http.StatusAccepted)
	if len(srv.sender.recipients) != 1 || srv.sender.recipients[0] != "pentadbir@kementerian.gov.my" {
		t.Fatalf("unexpected deliveries %v", srv.sender.recipients)
	}
}

func TestSiteAPI_NegotiatesLocale(t *testing.T) {
	srv := setupServer(t)

	rec := srv.do(t, "", http.MethodGet, "/api/site?locale=en", nil, http.StatusOK)
	if got := rec.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected en content language, got %q", got)
	}
	var ctx site.Context
	decodeJSONBody(t, rec, &ctx)
	if ctx.Name != "Ministry of Communications" || ctx.Theme.Code != themes.DefaultCode {
		t.Fatalf("unexpected site context %+v", ctx)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/site", nil)
	req.Header.Set("Accept-Language", "ms-MY,ms;q=0.9")
	out := httptest.NewRecorder()
	srv.handler.ServeHTTP(out, req)
	if out.Code != http.StatusOK || out.Header().Get("Content-Language") != "ms" {
		t.Fatalf("expected ms response, got %d %q", out.Code, out.Header().Get("Content-Language"))
	}
}
