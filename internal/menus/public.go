package menus

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// NavigationRequest asks for a menu rendered for one viewer.
type NavigationRequest struct {
	MenuName string
	Locale   string
	Roles    []string
}

// NavigationNode is a render-ready menu entry.
type NavigationNode struct {
	ID              uuid.UUID        `json:"id"`
	Key             string           `json:"key,omitempty"`
	Label           string           `json:"label"`
	URL             string           `json:"url,omitempty"`
	Target          string           `json:"target"`
	Icon            string           `json:"icon,omitempty"`
	MegaMenuColumns int              `json:"mega_menu_columns,omitempty"`
	Children        []NavigationNode `json:"children,omitempty"`
}

// ResolveNavigation renders the active, role-permitted part of a menu with
// labels in the requested locale. Inactive menus render empty. A hidden root
// hides its children.
func (s *service) ResolveNavigation(ctx context.Context, req NavigationRequest) ([]NavigationNode, error) {
	menu, err := s.menus.GetByName(ctx, strings.TrimSpace(req.MenuName))
	if err != nil {
		return nil, err
	}
	nodes := []NavigationNode{}
	if !menu.IsActive {
		return nodes, nil
	}
	items, err := s.items.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}

	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = s.defaultLocale
	}
	for _, root := range BuildTree(items) {
		if !visible(root.Item, req.Roles) {
			continue
		}
		node := s.node(ctx, menu.Name, root.Item, locale)
		for _, child := range root.Children {
			if !visible(child.Item, req.Roles) {
				continue
			}
			node.Children = append(node.Children, s.node(ctx, menu.Name, child.Item, locale))
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func visible(item *MenuItem, roles []string) bool {
	return item.IsActive && item.VisibleTo(roles)
}

func (s *service) node(ctx context.Context, menuName string, item *MenuItem, locale string) NavigationNode {
	node := NavigationNode{
		ID:     item.ID,
		Key:    item.Key(),
		Label:  item.Label(locale, s.defaultLocale),
		URL:    s.resolveURL(ctx, menuName, item, locale),
		Target: targetOr(item.Target),
		Icon:   item.Icon,
	}
	if item.MegaMenuColumns != nil {
		node.MegaMenuColumns = *item.MegaMenuColumns
	}
	return node
}

func (s *service) resolveURL(ctx context.Context, menuName string, item *MenuItem, locale string) string {
	if item.URL != "" {
		return item.URL
	}
	if item.RouteName == "" || s.urlResolver == nil {
		return ""
	}
	url, err := s.urlResolver.Resolve(ctx, ResolveRequest{MenuName: menuName, Item: item, Locale: locale})
	if err != nil {
		s.logger.Warn("menus.url.resolve_failed", "menu", menuName, "route", item.RouteName, "error", err)
		return ""
	}
	return url
}
