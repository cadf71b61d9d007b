package menus

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// ErrNotifyFailed wraps observer failures. The write itself has committed
// when a method returns an error wrapping ErrNotifyFailed.
var ErrNotifyFailed = errors.New("menus: observer notification failed")

// Service describes menu tree management capabilities.
type Service interface {
	CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error)
	UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error)
	GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetMenuByName(ctx context.Context, name string) (*Menu, error)
	ListMenus(ctx context.Context) ([]*Menu, error)
	DeleteMenu(ctx context.Context, req DeleteMenuRequest) error

	AddMenuItem(ctx context.Context, input AddMenuItemInput) (*MenuItem, error)
	UpdateMenuItem(ctx context.Context, input UpdateMenuItemInput) (*MenuItem, error)
	DeleteMenuItem(ctx context.Context, req DeleteMenuItemRequest) error
	ReorderMenuItems(ctx context.Context, input ReorderMenuItemsInput) ([]*MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	ListMenuItems(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error)

	MenuTree(ctx context.Context, name string) ([]RootItem, error)
	ResolveNavigation(ctx context.Context, req NavigationRequest) ([]NavigationNode, error)
}

// CreateMenuInput captures the information required to register a menu.
type CreateMenuInput struct {
	// ID is optional; seeds pass deterministic ids.
	ID        uuid.UUID         `json:"id,omitempty"`
	Name      string            `json:"name"`
	Labels    map[string]string `json:"labels,omitempty"`
	IsActive  *bool             `json:"is_active,omitempty"`
	CreatedBy uuid.UUID         `json:"created_by"`
}

// UpdateMenuInput changes menu level attributes. Nil fields are left untouched.
type UpdateMenuInput struct {
	ID        uuid.UUID         `json:"id"`
	Labels    map[string]string `json:"labels,omitempty"`
	IsActive  *bool             `json:"is_active,omitempty"`
	UpdatedBy uuid.UUID         `json:"updated_by"`
}

// DeleteMenuRequest removes a menu and every item it owns.
type DeleteMenuRequest struct {
	ID        uuid.UUID
	DeletedBy uuid.UUID
}

// AddMenuItemInput captures the data required to register a new menu item.
type AddMenuItemInput struct {
	ID              uuid.UUID         `json:"id,omitempty"`
	MenuID          uuid.UUID         `json:"menu_id"`
	ParentID        *uuid.UUID        `json:"parent_id,omitempty"`
	Labels          map[string]string `json:"labels"`
	URL             string            `json:"url,omitempty"`
	RouteName       string            `json:"route_name,omitempty"`
	RouteParams     map[string]string `json:"route_params,omitempty"`
	Icon            string            `json:"icon,omitempty"`
	SortOrder       int               `json:"sort_order"`
	Target          string            `json:"target,omitempty"`
	IsActive        *bool             `json:"is_active,omitempty"`
	Roles           []string          `json:"roles,omitempty"`
	MegaMenuColumns *int              `json:"mega_menu_columns,omitempty"`
	CreatedBy       uuid.UUID         `json:"created_by"`
}

// UpdateMenuItemInput patches a menu item. Nil fields are left untouched;
// ClearParent and ClearMegaMenuColumns reset the nullable attributes.
type UpdateMenuItemInput struct {
	ID                   uuid.UUID         `json:"id"`
	ParentID             *uuid.UUID        `json:"parent_id,omitempty"`
	ClearParent          bool              `json:"clear_parent,omitempty"`
	Labels               map[string]string `json:"labels,omitempty"`
	URL                  *string           `json:"url,omitempty"`
	RouteName            *string           `json:"route_name,omitempty"`
	RouteParams          map[string]string `json:"route_params,omitempty"`
	Icon                 *string           `json:"icon,omitempty"`
	SortOrder            *int              `json:"sort_order,omitempty"`
	Target               *string           `json:"target,omitempty"`
	IsActive             *bool             `json:"is_active,omitempty"`
	Roles                *[]string         `json:"roles,omitempty"`
	MegaMenuColumns      *int              `json:"mega_menu_columns,omitempty"`
	ClearMegaMenuColumns bool              `json:"clear_mega_menu_columns,omitempty"`
	UpdatedBy            uuid.UUID         `json:"updated_by"`
}

// DeleteMenuItemRequest removes an item and, for roots, its children.
type DeleteMenuItemRequest struct {
	ID        uuid.UUID
	DeletedBy uuid.UUID
}

// ItemOrder assigns a sort order to one item.
type ItemOrder struct {
	ID        uuid.UUID `json:"id"`
	SortOrder int       `json:"sort_order"`
}

// ReorderMenuItemsInput rewrites sort orders of several items in one menu.
type ReorderMenuItemsInput struct {
	MenuID    uuid.UUID   `json:"menu_id"`
	Items     []ItemOrder `json:"items"`
	UpdatedBy uuid.UUID   `json:"updated_by"`
}

// ServiceOption configures the menu service.
type ServiceOption func(*service)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer notified after every committed write.
func WithObserver(observer Observer) ServiceOption {
	return func(s *service) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithURLResolver sets the resolver used for items addressed by route name.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urlResolver = resolver
		}
	}
}

// WithDefaultLocale sets the label fallback locale.
func WithDefaultLocale(locale string) ServiceOption {
	return func(s *service) {
		if trimmed := strings.TrimSpace(locale); trimmed != "" {
			s.defaultLocale = trimmed
		}
	}
}

type service struct {
	menus         MenuRepository
	items         MenuItemRepository
	now           func() time.Time
	newID         func() uuid.UUID
	logger        interfaces.Logger
	observers     []Observer
	urlResolver   URLResolver
	defaultLocale string
}

// NewService constructs the menu service.
func NewService(menuRepo MenuRepository, itemRepo MenuItemRepository, opts ...ServiceOption) Service {
	s := &service{
		menus:         menuRepo,
		items:         itemRepo,
		now:           time.Now,
		newID:         uuid.New,
		logger:        logging.NoOp(),
		defaultLocale: "ms",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.menus.GetByName(ctx, input.Name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrMenuNameExists, input.Name)
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	record, err := s.menus.Create(ctx, &Menu{
		ID:        s.idOr(input.ID),
		Name:      input.Name,
		Labels:    trimLabels(input.Labels),
		IsActive:  boolOr(input.IsActive, true),
		CreatedBy: input.CreatedBy,
		UpdatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("menus.menu.created", "menu", record.Name, "menu_id", record.ID)
	return record, nil
}

func (s *service) UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error) {
	if input.ID == uuid.Nil {
		return nil, ErrMenuIDRequired
	}
	record, err := s.menus.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Labels != nil {
		record.Labels = trimLabels(input.Labels)
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}
	record.UpdatedBy = input.UpdatedBy
	record.UpdatedAt = s.now().UTC()

	updated, err := s.menus.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	return updated, s.emit(ctx, Event{Type: EventMenuUpdated, MenuID: updated.ID, MenuName: updated.Name})
}

func (s *service) GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	record, err := s.menus.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, record)
}

func (s *service) GetMenuByName(ctx context.Context, name string) (*Menu, error) {
	record, err := s.menus.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, record)
}

func (s *service) ListMenus(ctx context.Context) ([]*Menu, error) {
	return s.menus.List(ctx)
}

func (s *service) DeleteMenu(ctx context.Context, req DeleteMenuRequest) error {
	if req.ID == uuid.Nil {
		return ErrMenuIDRequired
	}
	record, err := s.menus.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	removed, err := s.items.DeleteByMenu(ctx, record.ID)
	if err != nil {
		return err
	}
	if err := s.menus.Delete(ctx, record.ID); err != nil {
		return err
	}
	s.logger.Info("menus.menu.deleted", "menu", record.Name, "items_removed", removed, "actor", req.DeletedBy)
	return s.emit(ctx, Event{Type: EventMenuDeleted, MenuID: record.ID, MenuName: record.Name})
}

func (s *service) AddMenuItem(ctx context.Context, input AddMenuItemInput) (*MenuItem, error) {
	input.RouteName = strings.TrimSpace(input.RouteName)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	menu, err := s.menus.GetByID(ctx, input.MenuID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, menu.ID, uuid.Nil, input.ParentID, false); err != nil {
		return nil, err
	}
	if err := s.checkKey(ctx, menu.ID, uuid.Nil, input.RouteName, input.ParentID == nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := &MenuItem{
		ID:              s.idOr(input.ID),
		MenuID:          menu.ID,
		ParentID:        cloneUUIDPtr(input.ParentID),
		Labels:          trimLabels(input.Labels),
		URL:             strings.TrimSpace(input.URL),
		RouteName:       input.RouteName,
		RouteParams:     maps.Clone(input.RouteParams),
		Icon:            strings.TrimSpace(input.Icon),
		SortOrder:       input.SortOrder,
		Target:          targetOr(input.Target),
		IsActive:        boolOr(input.IsActive, true),
		Roles:           normalizeRoles(input.Roles),
		MegaMenuColumns: cloneIntPtr(input.MegaMenuColumns),
		CreatedBy:       input.CreatedBy,
		UpdatedBy:       input.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	record, err := s.items.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	return record, s.emit(ctx, Event{Type: EventItemCreated, MenuID: menu.ID, MenuName: menu.Name, ItemID: record.ID})
}

func (s *service) UpdateMenuItem(ctx context.Context, input UpdateMenuItemInput) (*MenuItem, error) {
	if input.ID == uuid.Nil {
		return nil, ErrItemIDRequired
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	parentID := item.ParentID
	switch {
	case input.ClearParent:
		parentID = nil
	case input.ParentID != nil:
		parentID = cloneUUIDPtr(input.ParentID)
	}
	if parentID != nil && !sameUUID(parentID, item.ParentID) {
		children, err := s.items.ListChildren(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if err := s.checkParent(ctx, item.MenuID, item.ID, parentID, len(children) > 0); err != nil {
			return nil, err
		}
	}

	key := item.RouteName
	if input.RouteName != nil {
		key = strings.TrimSpace(*input.RouteName)
	}
	if key != item.RouteName || (parentID == nil) != item.IsRoot() {
		if err := s.checkKey(ctx, item.MenuID, item.ID, key, parentID == nil); err != nil {
			return nil, err
		}
	}

	item.ParentID = parentID
	item.RouteName = key
	if input.Labels != nil {
		item.Labels = trimLabels(input.Labels)
	}
	if input.URL != nil {
		item.URL = strings.TrimSpace(*input.URL)
	}
	if input.RouteParams != nil {
		item.RouteParams = maps.Clone(input.RouteParams)
	}
	if input.Icon != nil {
		item.Icon = strings.TrimSpace(*input.Icon)
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	if input.Target != nil {
		item.Target = targetOr(*input.Target)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if input.Roles != nil {
		item.Roles = normalizeRoles(*input.Roles)
	}
	switch {
	case input.ClearMegaMenuColumns:
		item.MegaMenuColumns = nil
	case input.MegaMenuColumns != nil:
		item.MegaMenuColumns = cloneIntPtr(input.MegaMenuColumns)
	}
	item.UpdatedBy = input.UpdatedBy
	item.UpdatedAt = s.now().UTC()

	updated, err := s.items.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	return updated, s.emit(ctx, Event{Type: EventItemUpdated, MenuID: updated.MenuID, ItemID: updated.ID})
}

func (s *service) DeleteMenuItem(ctx context.Context, req DeleteMenuItemRequest) error {
	if req.ID == uuid.Nil {
		return ErrItemIDRequired
	}
	item, err := s.items.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}
	s.logger.Debug("menus.item.deleted", "item_id", item.ID, "key", item.Key(), "actor", req.DeletedBy)
	return s.emit(ctx, Event{Type: EventItemDeleted, MenuID: item.MenuID, ItemID: item.ID})
}

func (s *service) ReorderMenuItems(ctx context.Context, input ReorderMenuItemsInput) ([]*MenuItem, error) {
	if input.MenuID == uuid.Nil {
		return nil, ErrMenuIDRequired
	}
	now := s.now().UTC()
	updates := make([]*MenuItem, 0, len(input.Items))
	for _, entry := range input.Items {
		item, err := s.items.GetByID(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		if item.MenuID != input.MenuID {
			return nil, fmt.Errorf("%w: %s", ErrReorderItemMismatch, entry.ID)
		}
		item.SortOrder = entry.SortOrder
		item.UpdatedAt = now
		item.UpdatedBy = input.UpdatedBy
		updates = append(updates, item)
	}
	if err := s.items.BulkUpdateOrder(ctx, updates); err != nil {
		return nil, err
	}
	items, err := s.items.ListByMenu(ctx, input.MenuID)
	if err != nil {
		return nil, err
	}
	return items, s.emit(ctx, Event{Type: EventItemsReordered, MenuID: input.MenuID})
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *service) ListMenuItems(ctx context.Context, menuID uuid.UUID) ([]*MenuItem, error) {
	return s.items.ListByMenu(ctx, menuID)
}

func (s *service) MenuTree(ctx context.Context, name string) ([]RootItem, error) {
	menu, err := s.menus.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}
	return BuildTree(items), nil
}

func (s *service) hydrate(ctx context.Context, menu *Menu) (*Menu, error) {
	items, err := s.items.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}
	menu.Items = items
	return menu, nil
}

func (s *service) emit(ctx context.Context, event Event) error {
	if err := s.notify(ctx, event); err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyFailed, err)
	}
	return nil
}

// checkParent enforces the hierarchy rules for an item placed under parentID.
func (s *service) checkParent(ctx context.Context, menuID, itemID uuid.UUID, parentID *uuid.UUID, hasChildren bool) error {
	if parentID == nil {
		return nil
	}
	if itemID != uuid.Nil && *parentID == itemID {
		return ErrParentCycle
	}
	parent, err := s.items.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent.MenuID != menuID {
		return ErrCrossMenuParent
	}
	if !parent.IsRoot() {
		return fmt.Errorf("%w: parent %s is nested", ErrNestingTooDeep, parent.ID)
	}
	if hasChildren {
		return fmt.Errorf("%w: item has children", ErrNestingTooDeep)
	}
	return nil
}

// checkKey rejects a route name already used by another item on the same level.
func (s *service) checkKey(ctx context.Context, menuID, itemID uuid.UUID, key string, root bool) error {
	if key == "" {
		return nil
	}
	var (
		siblings []*MenuItem
		err      error
	)
	if root {
		siblings, err = s.items.ListRoots(ctx, menuID)
	} else {
		siblings, err = s.items.ListNested(ctx, menuID)
	}
	if err != nil {
		return err
	}
	if slices.ContainsFunc(siblings, func(other *MenuItem) bool {
		return other.ID != itemID && other.Key() == key
	}) {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	return nil
}

func trimLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for locale, label := range labels {
		locale = strings.ToLower(strings.TrimSpace(locale))
		label = strings.TrimSpace(label)
		if locale == "" || label == "" {
			continue
		}
		out[locale] = label
	}
	return out
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" && !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func targetOr(target string) string {
	if trimmed := strings.TrimSpace(target); trimmed != "" {
		return trimmed
	}
	return TargetSelf
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func cloneUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *service) idOr(id uuid.UUID) uuid.UUID {
	if id != uuid.Nil {
		return id
	}
	return s.newID()
}
