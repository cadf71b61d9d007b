package themes_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/internal/themes"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func TestRegistryNormalisesCodes(t *testing.T) {
	registry := themes.NewRegistry()

	theme, err := registry.Register(themes.Theme{Code: "Merdeka Biru", Version: "1.0.0"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if theme.Code != "merdeka-biru" {
		t.Fatalf("expected slug code, got %q", theme.Code)
	}
	if _, err := registry.Register(themes.Theme{Code: "merdeka-biru", Version: "2"}); !errors.Is(err, themes.ErrThemeExists) {
		t.Fatalf("expected ErrThemeExists, got %v", err)
	}
	if _, err := registry.Get("Merdeka Biru"); err != nil {
		t.Fatalf("Get by display name: %v", err)
	}
	if _, err := registry.Register(themes.Theme{Code: "  "}); !errors.Is(err, themes.ErrThemeCodeInvalid) {
		t.Fatalf("expected ErrThemeCodeInvalid, got %v", err)
	}
	codes := []string{}
	for _, theme := range registry.List() {
		codes = append(codes, theme.Code)
	}
	if !slices.Equal(codes, []string{"default", "merdeka-biru"}) {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestLoadFSReadsManifests(t *testing.T) {
	fsys := fstest.MapFS{
		"jata/theme.json": {Data: []byte(`{"names":{"ms":"Jata","en":"Crest"},"version":"0.1.0","variants":["dark"],"assets":{"styles":["site.css"]}}`)},
		"notes.txt":       {Data: []byte("ignored")},
	}
	registry := themes.NewRegistry()
	loaded, err := registry.LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Code != "jata" || loaded[0].Assets.BasePath != "jata" {
		t.Fatalf("unexpected themes %+v", loaded)
	}
	if loaded[0].Name("en", "ms") != "Crest" || loaded[0].Name("fr", "ms") != "Jata" {
		t.Fatalf("unexpected names")
	}
	styles, _, err := loaded[0].AssetURLs("/assets")
	if err != nil || len(styles) != 1 || styles[0] != "/assets/jata/site.css" {
		t.Fatalf("unexpected asset urls %v, %v", styles, err)
	}

	bad := fstest.MapFS{"x/theme.json": {Data: []byte(`{"code":"x"}`)}}
	if _, err := themes.NewRegistry().LoadFS(bad); err == nil {
		t.Fatalf("expected missing version error")
	}
}

func TestAssetTraversalRejected(t *testing.T) {
	theme := themes.Theme{Code: "x", Assets: themes.Assets{BasePath: "themes/x", Styles: []string{"../x-evil/site.css"}}}
	if _, _, err := theme.AssetURLs("/assets"); err == nil {
		t.Fatalf("expected traversal error")
	}
}

func TestSelectorFollowsAppearanceSettings(t *testing.T) {
	registry := themes.NewRegistry()
	if _, err := registry.Register(themes.Theme{Code: "jata", Version: "1", Variants: []string{"dark"}, PrimaryColor: "#112233"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	logger := testsupport.NewRecordingLogger()
	selector := themes.NewSelector(registry, "default", logger)
	svc := settings.NewService(settings.NewMemoryRepository(), settings.WithObserver(selector))
	ctx := context.Background()

	if got := selector.Active().Theme.Code; got != "default" {
		t.Fatalf("expected default theme, got %q", got)
	}

	if _, err := svc.Put(ctx, settings.PutInput{Group: settings.GroupAppearance, Values: map[string]any{"theme": "jata", "variant": "dark"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	active := selector.Active()
	if active.Theme.Code != "jata" || active.Variant != "dark" || active.PrimaryColor != "#112233" {
		t.Fatalf("unexpected selection %+v", active)
	}

	if _, err := svc.Put(ctx, settings.PutInput{Group: settings.GroupAppearance, Values: map[string]any{"theme": "removed", "variant": "dark"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	active = selector.Active()
	if active.Theme.Code != "default" || active.Variant != "" {
		t.Fatalf("expected fallback to default without variant, got %+v", active)
	}
	if !logger.Has("WARN", "themes.selection.fallback") {
		t.Fatalf("expected fallback warning, got %+v", logger.Entries())
	}

	reloaded := themes.NewSelector(registry, "default", nil)
	if err := reloaded.Load(ctx, svc); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.Active().Theme.Code != "default" {
		t.Fatalf("unexpected reloaded selection %+v", reloaded.Active())
	}
}
