package menus

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// EventType names a menu tree mutation.
type EventType string

const (
	EventItemCreated    EventType = "menu_item.created"
	EventItemUpdated    EventType = "menu_item.updated"
	EventItemDeleted    EventType = "menu_item.deleted"
	EventItemsReordered EventType = "menu_item.reordered"
	EventMenuUpdated    EventType = "menu.updated"
	EventMenuDeleted    EventType = "menu.deleted"
)

// Event is emitted after a menu tree write commits. ItemID is uuid.Nil for
// menu level events.
type Event struct {
	Type     EventType
	MenuID   uuid.UUID
	MenuName string
	ItemID   uuid.UUID
}

// Observer receives MenuItemChanged notifications synchronously, inside the
// write call that produced them.
type Observer interface {
	MenuItemChanged(ctx context.Context, event Event) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event) error

func (fn ObserverFunc) MenuItemChanged(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

func (s *service) notify(ctx context.Context, event Event) error {
	var errs []error
	for _, observer := range s.observers {
		if err := observer.MenuItemChanged(ctx, event); err != nil {
			s.logger.Error("menus.observer.failed", "event", string(event.Type), "menu_id", event.MenuID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
