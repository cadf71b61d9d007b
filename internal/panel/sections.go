package panel

import "github.com/goliatone/go-portal/internal/permissions"

// Group keys of the admin sidebar.
const (
	GroupContent        = "content"
	GroupHomepage       = "homepage"
	GroupUserManagement = "user_management"
	GroupSettings       = "settings"
)

// GroupDefinition maps a group key to its translation key.
type GroupDefinition struct {
	Key      string
	LabelKey string
}

// StaticGroups is the fixed group table in render order. It is the fallback
// when no group ordering is configured.
func StaticGroups() []GroupDefinition {
	return []GroupDefinition{
		{Key: GroupContent, LabelKey: "navigation.groups.content"},
		{Key: GroupHomepage, LabelKey: "navigation.groups.homepage"},
		{Key: GroupUserManagement, LabelKey: "navigation.groups.user_management"},
		{Key: GroupSettings, LabelKey: "navigation.groups.settings"},
	}
}

// DefaultSections declares the ministry back office sections in
// registration order.
func DefaultSections() []Section {
	return []Section{
		keyed("broadcasts", GroupContent, "megaphone", 1, permissions.ResourcePermissions("broadcasts")),
		keyed("achievements", GroupContent, "trophy", 2, permissions.ResourcePermissions("achievements")),
		keyed("policies", GroupContent, "file-text", 3, permissions.ResourcePermissions("policies")),
		keyed("pages", GroupContent, "file", 4, permissions.ResourcePermissions("pages")),
		keyed("staff-directory", GroupContent, "users", 5, permissions.ResourcePermissions("staff-directory")),
		keyed("media", GroupContent, "image", 6, permissions.ResourcePermissions("media")),
		keyed("feedback", GroupContent, "inbox", 7, permissions.ResourcePermissions("feedback")),

		keyed("manage-homepage", GroupHomepage, "layout", 1, permissions.ResourcePermissions("homepage")),
		keyed("hero-banners", GroupHomepage, "flag", 2, permissions.ResourcePermissions("homepage")),

		keyed("users", GroupUserManagement, "user", 1, permissions.ResourcePermissions("users")),
		keyed("roles", GroupUserManagement, "shield", 2, permissions.ResourcePermissions("roles")),

		keyed("site-settings", GroupSettings, "settings", 1, permissions.ResourcePermissions(permissions.ResourceSettings)),
		keyed("mail-settings", GroupSettings, "mail", 2, permissions.SettingsGroupPermissions("mail")),
		keyed("storage-settings", GroupSettings, "hard-drive", 3, permissions.SettingsGroupPermissions("storage")),
		keyed("footer-settings", GroupSettings, "align-bottom", 4, permissions.SettingsGroupPermissions("footer")),
		keyed("addresses", GroupSettings, "map-pin", 5, permissions.SettingsGroupPermissions("addresses")),
		keyed("minister-profile", GroupSettings, "id-card", 6, permissions.SettingsGroupPermissions("minister")),
		keyed("appearance", GroupSettings, "palette", 7, permissions.SettingsGroupPermissions("appearance")),

		// Predates configurable navigation; keeps its compiled position.
		Definition{
			SectionName: "audit-log",
			Label:       labelKey("audit-log"),
			Group:       GroupSettings,
			IconName:    "list",
			Sort:        intPtr(99),
			Perms:       permissions.ResourcePermissions("audit"),
		},
	}
}

func keyed(name, group, icon string, sort int, perms permissions.PermissionSet) Keyed {
	return Keyed{
		Definition: Definition{
			SectionName: name,
			Label:       labelKey(name),
			Group:       group,
			IconName:    icon,
			Sort:        intPtr(sort),
			Perms:       perms,
		},
		Key: name,
	}
}

func labelKey(name string) string {
	return "panel.sections." + name
}

func intPtr(v int) *int {
	return &v
}
