package menus

import (
	"context"

	"github.com/google/uuid"
)

// MenuRepository exposes persistence operations for menu records.
type MenuRepository interface {
	Create(ctx context.Context, menu *Menu) (*Menu, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetByName(ctx context.Context, name string) (*Menu, error)
	List(ctx context.Context) ([]*Menu, error)
	Update(ctx context.Context, menu *Menu) (*Menu, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MenuItemRepository exposes persistence operations for menu items. List
// methods return items ordered by sort order, ties broken by insertion order.
type MenuItemRepository interface {
	Create(ctx context.Context, item *MenuItem) (*MenuItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListByMenu(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error)
	ListRoots(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error)
	ListNested(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*MenuItem, error)
	Update(ctx context.Context, item *MenuItem) (*MenuItem, error)
	// Delete removes the item together with its children.
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByMenu removes every item of a menu and reports how many were removed.
	DeleteByMenu(ctx context.Context, menuID uuid.UUID) (int, error)
	// BulkUpdateOrder persists sort order changes for multiple items atomically.
	BulkUpdateOrder(ctx context.Context, items []*MenuItem) error
}
