package menus_test

import (
	"context"
	"errors"
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func TestResolveNavigation_FiltersByActiveAndRoles(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	menu := mustMenu(t, svc, "public_header")

	about := mustItem(t, svc, menus.AddMenuItemInput{
		MenuID: menu.ID, RouteName: "about", URL: "/tentang",
		Labels: map[string]string{"ms": "Tentang Kami", "en": "About Us"},
	})
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, ParentID: &about.ID, RouteName: "minister", URL: "/menteri"})
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, ParentID: &about.ID, RouteName: "drafts", Roles: []string{"Editor"}})
	hidden := mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "archive", IsActive: testsupport.Ptr(false)})
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, ParentID: &hidden.ID, RouteName: "old-news"})

	nav, err := svc.ResolveNavigation(ctx, menus.NavigationRequest{MenuName: "public_header", Locale: "en"})
	if err != nil {
		t.Fatalf("ResolveNavigation: %v", err)
	}
	if len(nav) != 1 {
		t.Fatalf("expected inactive root and its children to be hidden, got %d roots", len(nav))
	}
	if nav[0].Label != "About Us" || nav[0].URL != "/tentang" || nav[0].Target != menus.TargetSelf {
		t.Fatalf("unexpected root node %+v", nav[0])
	}
	if len(nav[0].Children) != 1 || nav[0].Children[0].Key != "minister" {
		t.Fatalf("expected role restricted child to be hidden, got %+v", nav[0].Children)
	}

	nav, err = svc.ResolveNavigation(ctx, menus.NavigationRequest{MenuName: "public_header", Roles: []string{"editor"}})
	if err != nil {
		t.Fatalf("ResolveNavigation editor: %v", err)
	}
	if nav[0].Label != "Tentang Kami" {
		t.Fatalf("expected default locale label, got %q", nav[0].Label)
	}
	if len(nav[0].Children) != 2 {
		t.Fatalf("expected editor to see both children, got %d", len(nav[0].Children))
	}
}

func TestResolveNavigation_FallsBackToDefaultLocaleLabel(t *testing.T) {
	svc := newMemoryService()
	menu := mustMenu(t, svc, "public_footer")
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "contact", Labels: map[string]string{"ms": "Hubungi"}})

	nav, err := svc.ResolveNavigation(context.Background(), menus.NavigationRequest{MenuName: "public_footer", Locale: "en"})
	if err != nil {
		t.Fatalf("ResolveNavigation: %v", err)
	}
	if nav[0].Label != "Hubungi" {
		t.Fatalf("expected ms fallback label, got %q", nav[0].Label)
	}
}

func TestResolveNavigation_InactiveMenuIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()
	menu := mustMenu(t, svc, "public_header")
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "about"})

	if _, err := svc.UpdateMenu(ctx, menus.UpdateMenuInput{ID: menu.ID, IsActive: testsupport.Ptr(false)}); err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	nav, err := svc.ResolveNavigation(ctx, menus.NavigationRequest{MenuName: "public_header"})
	if err != nil {
		t.Fatalf("ResolveNavigation: %v", err)
	}
	if nav == nil || len(nav) != 0 {
		t.Fatalf("expected empty navigation, got %+v", nav)
	}

	if _, err := svc.ResolveNavigation(ctx, menus.NavigationRequest{MenuName: "missing"}); !menus.IsNotFound(err) {
		t.Fatalf("expected not found for unknown menu, got %v", err)
	}
}

func TestResolveNavigation_UsesURLKitRoutes(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "frontend",
				BaseURL: "https://example.com",
				Paths: map[string]string{
					"page": "/halaman/:slug",
				},
				Groups: []urlkit.GroupConfig{
					{
						Name: "en",
						Path: "/en",
						Paths: map[string]string{
							"page": "/pages/:slug",
						},
					},
				},
			},
		},
	})
	resolver := menus.NewURLKitResolver(menus.URLKitResolverOptions{
		Manager:      manager,
		DefaultGroup: "frontend",
		LocaleGroups: map[string]string{"en": "frontend.en"},
	})
	svc := newMemoryService(menus.WithURLResolver(resolver))
	menu := mustMenu(t, svc, "public_header")
	mustItem(t, svc, menus.AddMenuItemInput{
		MenuID: menu.ID, RouteName: "page", RouteParams: map[string]string{"slug": "ministry"},
		Labels: map[string]string{"ms": "Kementerian", "en": "Ministry"},
	})
	mustItem(t, svc, menus.AddMenuItemInput{MenuID: menu.ID, RouteName: "unknown-route", SortOrder: 1})

	cases := map[string]string{
		"ms": "https://example.com/halaman/ministry",
		"en": "https://example.com/en/pages/ministry",
	}
	for locale, want := range cases {
		nav, err := svc.ResolveNavigation(context.Background(), menus.NavigationRequest{MenuName: "public_header", Locale: locale})
		if err != nil {
			t.Fatalf("ResolveNavigation %s: %v", locale, err)
		}
		if nav[0].URL != want {
			t.Fatalf("%s: expected %q, got %q", locale, want, nav[0].URL)
		}
		if nav[1].URL != "" {
			t.Fatalf("%s: expected unresolvable route to render without url, got %q", locale, nav[1].URL)
		}
	}
}

func TestURLKitResolver_UnknownGroupIsError(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{Name: "frontend", BaseURL: "https://example.com", Paths: map[string]string{"home": "/"}}},
	})
	resolver := menus.NewURLKitResolver(menus.URLKitResolverOptions{Manager: manager, DefaultGroup: "backend"})

	_, err := resolver.Resolve(context.Background(), menus.ResolveRequest{Item: &menus.MenuItem{RouteName: "home"}})
	if err == nil {
		t.Fatalf("expected error for unknown group")
	}
	if errors.Is(err, menus.ErrDuplicateKey) {
		t.Fatalf("unexpected error kind %v", err)
	}
}
