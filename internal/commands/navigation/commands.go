package navigationcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/uuid"

	"github.com/goliatone/go-portal/internal/commands"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

const (
	invalidateMessageType = "portal.navigation.invalidate"
	reorderMessageType    = "portal.navigation.reorder"
)

// ErrUnknownMenu is returned when no cache watches the requested menu.
var ErrUnknownMenu = errors.New("navigation command: no cache for menu")

// Invalidator drops a cached navigation projection.
type Invalidator interface {
	Menu() string
	Invalidate(ctx context.Context) error
}

// InvalidateNavigationCommand drops the resolved navigation of Menu. An
// empty Menu invalidates every registered cache.
type InvalidateNavigationCommand struct {
	Menu string `json:"menu,omitempty"`
}

// Type implements command.Message.
func (InvalidateNavigationCommand) Type() string { return invalidateMessageType }

// Validate implements command.Message.
func (c InvalidateNavigationCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Menu, validation.Length(0, 64)),
	)
}

// NewInvalidateHandler builds the handler for InvalidateNavigationCommand.
func NewInvalidateHandler(caches []Invalidator, logger interfaces.Logger, opts ...commands.HandlerOption[InvalidateNavigationCommand]) *commands.Handler[InvalidateNavigationCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg InvalidateNavigationCommand) error {
		target := strings.TrimSpace(msg.Menu)
		matched := 0
		var errs []error
		for _, cache := range caches {
			if target != "" && cache.Menu() != target {
				continue
			}
			matched++
			if err := cache.Invalidate(ctx); err != nil {
				errs = append(errs, err)
				continue
			}
			logging.WithMenuContext(logger, cache.Menu(), "").Info("navigation.command.invalidated")
		}
		if matched == 0 && target != "" {
			return fmt.Errorf("%w: %s", ErrUnknownMenu, target)
		}
		return errors.Join(errs...)
	}
	handlerOpts := append([]commands.HandlerOption[InvalidateNavigationCommand]{
		commands.WithLogger[InvalidateNavigationCommand](logger),
		commands.WithOperation[InvalidateNavigationCommand]("navigation.invalidate"),
	}, opts...)
	return commands.NewHandler(exec, handlerOpts...)
}

// ReorderMenuItemsCommand rewrites sort orders of items in one menu.
type ReorderMenuItemsCommand struct {
	MenuID    uuid.UUID         `json:"menu_id"`
	Items     []menus.ItemOrder `json:"items"`
	UpdatedBy uuid.UUID         `json:"updated_by"`
}

// Type implements command.Message.
func (ReorderMenuItemsCommand) Type() string { return reorderMessageType }

// Validate implements command.Message.
func (c ReorderMenuItemsCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MenuID, validation.By(requiredUUID)),
		validation.Field(&c.Items, validation.Required, validation.Each(validation.By(validOrder))),
	)
}

// NewReorderHandler builds the handler for ReorderMenuItemsCommand.
func NewReorderHandler(service menus.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderMenuItemsCommand]) *commands.Handler[ReorderMenuItemsCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg ReorderMenuItemsCommand) error {
		items, err := service.ReorderMenuItems(ctx, menus.ReorderMenuItemsInput{
			MenuID:    msg.MenuID,
			Items:     msg.Items,
			UpdatedBy: msg.UpdatedBy,
		})
		if err != nil {
			return err
		}
		logger.Info("navigation.command.reordered", "menu_id", msg.MenuID, "items", len(items))
		return nil
	}
	handlerOpts := append([]commands.HandlerOption[ReorderMenuItemsCommand]{
		commands.WithLogger[ReorderMenuItemsCommand](logger),
		commands.WithOperation[ReorderMenuItemsCommand]("navigation.reorder"),
	}, opts...)
	return commands.NewHandler(exec, handlerOpts...)
}

// Subscribe registers both handlers with the go-command dispatcher and
// returns a function removing them.
func Subscribe(invalidate *commands.Handler[InvalidateNavigationCommand], reorder *commands.Handler[ReorderMenuItemsCommand], retries int) func() {
	subs := []func(){
		dispatcher.SubscribeCommand(invalidate, runner.WithMaxRetries(retries)).Unsubscribe,
		dispatcher.SubscribeCommand(reorder).Unsubscribe,
	}
	return func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}
}

func requiredUUID(value any) error {
	if id, _ := value.(uuid.UUID); id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

func validOrder(value any) error {
	order, _ := value.(menus.ItemOrder)
	if order.ID == uuid.Nil {
		return validation.NewError("validation_item_id", "item id is required")
	}
	if order.SortOrder < 0 {
		return validation.NewError("validation_sort_order", "sort order must not be negative")
	}
	return nil
}
