package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnvFillsEmptyOptions(t *testing.T) {
	t.Setenv(EnvDriver, "postgres")
	t.Setenv(EnvDSN, "postgres://portal@localhost/portal?sslmode=disable")
	t.Setenv(EnvLogLevel, "debug")

	opts := FromEnv(Options{Driver: "sqlite"})
	if opts.Driver != "sqlite" {
		t.Fatalf("flag value must win, got %q", opts.Driver)
	}
	if opts.DSN == "" || opts.LogLevel != "debug" {
		t.Fatalf("expected env values, got %+v", opts)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB("oracle", "x"); err == nil {
		t.Fatal("expected unknown driver error")
	}
	if _, err := OpenDB("postgres", ""); err == nil {
		t.Fatal("expected missing dsn error")
	}
}

func TestBuildModuleOverSQLite(t *testing.T) {
	module, err := BuildModule(Options{Driver: "sqlite", DSN: "file:bootstrap_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	defer module.Close()

	if err := module.DB.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if module.Module.Menus() == nil {
		t.Fatal("expected menu service")
	}
}

func TestSplitRoles(t *testing.T) {
	got := SplitRoles(" admin, ,editor ")
	if len(got) != 2 || got[0] != "admin" || got[1] != "editor" {
		t.Fatalf("unexpected roles %v", got)
	}
}

func TestBuildModuleAppliesTranslationOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wording.json")
	if err := os.WriteFile(path, []byte(`{"translations": {"en": {"navigation.groups.content": "Publications"}}}`), 0o600); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	module, err := BuildModule(Options{
		Driver:     "sqlite",
		DSN:        "file:bootstrap_i18n_test?mode=memory&cache=shared",
		I18NBundle: path,
	})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	defer module.Close()

	got, err := module.Module.Container().I18nService().Translator().Translate("en", "navigation.groups.content")
	if err != nil || got != "Publications" {
		t.Fatalf("expected override, got %q (%v)", got, err)
	}

	if _, err := BuildModule(Options{Driver: "sqlite", DSN: "file:bootstrap_i18n_missing?mode=memory&cache=shared", I18NBundle: path + ".missing"}); err == nil {
		t.Fatal("expected missing bundle to fail module construction")
	}
}
