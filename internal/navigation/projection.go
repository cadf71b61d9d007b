package navigation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is the projection of a root item of the watched menu.
type Group struct {
	Key    string            `json:"key"`
	Labels map[string]string `json:"labels,omitempty"`
	Sort   int               `json:"sort"`
	Active bool              `json:"active"`
	Icon   string            `json:"icon,omitempty"`
}

// Item is the projection of a nested item of the watched menu.
type Item struct {
	Key       string            `json:"key"`
	ParentKey string            `json:"parent_key,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Sort      int               `json:"sort"`
	Active    bool              `json:"active"`
	Icon      string            `json:"icon,omitempty"`
	Roles     []string          `json:"roles,omitempty"`
}

// GroupSet holds the groups of one menu in ascending sort order. Values
// handed out by the cache are shared and must be treated as read-only.
type GroupSet struct {
	Menu       string    `json:"menu"`
	MenuID     uuid.UUID `json:"menu_id"`
	Groups     []Group   `json:"groups"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// ItemSet holds the nested items of one menu keyed by stable key. Values
// handed out by the cache are shared and must be treated as read-only.
type ItemSet struct {
	Menu       string          `json:"menu"`
	MenuID     uuid.UUID       `json:"menu_id"`
	Items      map[string]Item `json:"items"`
	ResolvedAt time.Time       `json:"resolved_at"`
}

// Lookup returns the group with key.
func (s *GroupSet) Lookup(key string) (Group, bool) {
	if s == nil {
		return Group{}, false
	}
	key = strings.TrimSpace(key)
	for _, group := range s.Groups {
		if group.Key == key {
			return group, true
		}
	}
	return Group{}, false
}

// Empty reports whether the set has no groups.
func (s *GroupSet) Empty() bool {
	return s == nil || len(s.Groups) == 0
}

// Lookup returns the item with key.
func (s *ItemSet) Lookup(key string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	item, ok := s.Items[strings.TrimSpace(key)]
	return item, ok
}

// Label picks the label for locale, then fallback.
func (g Group) Label(locale, fallback string) string {
	return pickLabel(g.Labels, locale, fallback)
}

// Label picks the label for locale, then fallback.
func (i Item) Label(locale, fallback string) string {
	return pickLabel(i.Labels, locale, fallback)
}

func pickLabel(labels map[string]string, locale, fallback string) string {
	if v := strings.TrimSpace(labels[locale]); v != "" {
		return v
	}
	return strings.TrimSpace(labels[fallback])
}
