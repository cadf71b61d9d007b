package menus

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type memoryMenuRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Menu
	byName map[string]uuid.UUID
}

// NewMemoryMenuRepository constructs an in-memory repository for menus.
func NewMemoryMenuRepository() MenuRepository {
	return &memoryMenuRepository{
		byID:   make(map[uuid.UUID]*Menu),
		byName: make(map[string]uuid.UUID),
	}
}

func (m *memoryMenuRepository) Create(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byName[menu.Name]; exists {
		return nil, ErrMenuNameExists
	}
	cloned := cloneMenu(menu)
	m.byID[cloned.ID] = cloned
	m.byName[cloned.Name] = cloned.ID
	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) GetByID(_ context.Context, id uuid.UUID) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(record), nil
}

func (m *memoryMenuRepository) GetByName(_ context.Context, name string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: name}
	}
	return cloneMenu(m.byID[id]), nil
}

func (m *memoryMenuRepository) List(_ context.Context) ([]*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Menu, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneMenu(record))
	}
	slices.SortFunc(records, func(a, b *Menu) int { return cmp.Compare(a.Name, b.Name) })
	return records, nil
}

func (m *memoryMenuRepository) Update(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[menu.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: menu.ID.String()}
	}
	if other, taken := m.byName[menu.Name]; taken && other != menu.ID {
		return nil, ErrMenuNameExists
	}
	delete(m.byName, existing.Name)
	cloned := cloneMenu(menu)
	m.byID[cloned.ID] = cloned
	m.byName[cloned.Name] = cloned.ID
	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "menu", Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.byName, existing.Name)
	return nil
}

type memoryMenuItem struct {
	item *MenuItem
	seq  uint64
}

type memoryMenuItemRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*memoryMenuItem
	seq  uint64
}

// NewMemoryMenuItemRepository constructs an in-memory repository for menu items.
func NewMemoryMenuItemRepository() MenuItemRepository {
	return &memoryMenuItemRepository{
		byID: make(map[uuid.UUID]*memoryMenuItem),
	}
}

func (m *memoryMenuItemRepository) Create(_ context.Context, item *MenuItem) (*MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	cloned := cloneMenuItem(item)
	m.byID[cloned.ID] = &memoryMenuItem{item: cloned, seq: m.seq}
	return cloneMenuItem(cloned), nil
}

func (m *memoryMenuItemRepository) GetByID(_ context.Context, id uuid.UUID) (*MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	return cloneMenuItem(record.item), nil
}

func (m *memoryMenuItemRepository) ListByMenu(_ context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return m.filter(func(item *MenuItem) bool { return item.MenuID == menuID }), nil
}

func (m *memoryMenuItemRepository) ListRoots(_ context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return m.filter(func(item *MenuItem) bool {
		return item.MenuID == menuID && item.ParentID == nil
	}), nil
}

func (m *memoryMenuItemRepository) ListNested(_ context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return m.filter(func(item *MenuItem) bool {
		return item.MenuID == menuID && item.ParentID != nil
	}), nil
}

func (m *memoryMenuItemRepository) ListChildren(_ context.Context, parentID uuid.UUID) ([]*MenuItem, error) {
	return m.filter(func(item *MenuItem) bool {
		return item.ParentID != nil && *item.ParentID == parentID
	}), nil
}

func (m *memoryMenuItemRepository) filter(match func(*MenuItem) bool) []*MenuItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*memoryMenuItem, 0)
	for _, record := range m.byID {
		if match(record.item) {
			records = append(records, record)
		}
	}
	slices.SortFunc(records, func(a, b *memoryMenuItem) int {
		if c := cmp.Compare(a.item.SortOrder, b.item.SortOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]*MenuItem, 0, len(records))
	for _, record := range records {
		out = append(out, cloneMenuItem(record.item))
	}
	return out
}

func (m *memoryMenuItemRepository) Update(_ context.Context, item *MenuItem) (*MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[item.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "menu_item", Key: item.ID.String()}
	}
	record.item = cloneMenuItem(item)
	return cloneMenuItem(record.item), nil
}

func (m *memoryMenuItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "menu_item", Key: id.String()}
	}
	for childID, record := range m.byID {
		if record.item.ParentID != nil && *record.item.ParentID == id {
			delete(m.byID, childID)
		}
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryMenuItemRepository) DeleteByMenu(_ context.Context, menuID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, record := range m.byID {
		if record.item.MenuID == menuID {
			delete(m.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryMenuItemRepository) BulkUpdateOrder(_ context.Context, items []*MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		if _, ok := m.byID[item.ID]; !ok {
			return &NotFoundError{Resource: "menu_item", Key: item.ID.String()}
		}
	}
	for _, item := range items {
		record := m.byID[item.ID]
		record.item.SortOrder = item.SortOrder
		record.item.UpdatedAt = item.UpdatedAt
		record.item.UpdatedBy = item.UpdatedBy
	}
	return nil
}

func cloneMenu(menu *Menu) *Menu {
	if menu == nil {
		return nil
	}
	cloned := *menu
	cloned.Labels = maps.Clone(menu.Labels)
	cloned.Items = nil
	if len(menu.Items) > 0 {
		cloned.Items = make([]*MenuItem, 0, len(menu.Items))
		for _, item := range menu.Items {
			cloned.Items = append(cloned.Items, cloneMenuItem(item))
		}
	}
	return &cloned
}

func cloneMenuItem(item *MenuItem) *MenuItem {
	if item == nil {
		return nil
	}
	cloned := *item
	if item.ParentID != nil {
		parent := *item.ParentID
		cloned.ParentID = &parent
	}
	if item.MegaMenuColumns != nil {
		columns := *item.MegaMenuColumns
		cloned.MegaMenuColumns = &columns
	}
	cloned.Labels = maps.Clone(item.Labels)
	cloned.RouteParams = maps.Clone(item.RouteParams)
	cloned.Roles = slices.Clone(item.Roles)
	return &cloned
}
