// Package http exposes the portal services over JSON.
//
// Admin routes mount under /admin/api:
//   - Menus: /menus, /menus/{id}, /menus/{id}/items, /menus/{id}/reorder
//   - Menu items: /menu-items/{id}
//   - Navigation: /navigation, /navigation/invalidate
//   - Settings: /settings, /settings/{group}, /settings/mail/test
//
// The public site context is served from /api/site.
//
// Host applications can register handlers on their own mux as needed.
package http
