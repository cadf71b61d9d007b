package permissions

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSetAllowed(t *testing.T) {
	set := NewSet(" Menus:Read ", "settings:*")

	cases := map[string]bool{
		"menus:read":           true,
		"menus:update":         false,
		"settings:update":      true,
		"settings.mail:update": true,
		"":                     false,
		"navigation:read":      false,
	}
	for perm, want := range cases {
		if got := set.Allowed(perm); got != want {
			t.Fatalf("Allowed(%q) = %v, want %v", perm, got, want)
		}
	}
	if !NewSet("*").Allowed("anything:delete") {
		t.Fatalf("expected wildcard to grant everything")
	}
}

func TestRequireWithoutCheckerAllows(t *testing.T) {
	if err := Require(context.Background(), MenusDelete); err != nil {
		t.Fatalf("expected no checker to allow, got %v", err)
	}
}

func TestRequireDenied(t *testing.T) {
	ctx := WithPermissions(context.Background(), MenusRead)
	err := Require(ctx, MenusDelete)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	var permErr Error
	if !errors.As(err, &permErr) || permErr.Permission != MenusDelete {
		t.Fatalf("expected typed error naming the permission, got %v", err)
	}
}

func TestCheckerFromContextAcceptsMaps(t *testing.T) {
	ctx := context.WithValue(context.Background(), checkerKey, map[string]bool{"feedback:read": true, "feedback:delete": false})
	if !Allowed(ctx, "feedback:read") || Allowed(ctx, "feedback:delete") {
		t.Fatalf("unexpected map checker decisions")
	}
}

func TestRoleMapChecker(t *testing.T) {
	roles := DefaultRoles()
	set := roles.Checker("Editor", "officer")
	if !set.Allowed("broadcasts:delete") || !set.Allowed("feedback:update") {
		t.Fatalf("expected union of editor and officer grants")
	}
	if set.Allowed("settings:update") {
		t.Fatalf("editors must not manage settings")
	}
	if !roles.Checker("super_admin").Allowed("settings.mail:update") {
		t.Fatalf("expected super admin wildcard")
	}
}

func TestResourcePermissions(t *testing.T) {
	got := SettingsGroupPermissions("Mail").List()
	want := []string{"settings.mail:read", "settings.mail:create", "settings.mail:update", "settings.mail:delete"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRolesContext(t *testing.T) {
	ctx := WithRoles(context.Background(), " Admin ", "")
	if got := RolesFromContext(ctx); !reflect.DeepEqual(got, []string{"admin"}) {
		t.Fatalf("unexpected roles %v", got)
	}
}
