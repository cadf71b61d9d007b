package menus

import (
	"errors"
	"fmt"
)

var (
	ErrMenuNameRequired    = errors.New("menus: menu name is required")
	ErrMenuNameExists      = errors.New("menus: menu name already exists")
	ErrMenuIDRequired      = errors.New("menus: menu id is required")
	ErrItemIDRequired      = errors.New("menus: menu item id is required")
	ErrCrossMenuParent     = errors.New("menus: parent item belongs to a different menu")
	ErrNestingTooDeep      = errors.New("menus: only one level of nesting is allowed")
	ErrParentCycle         = errors.New("menus: item cannot be its own parent")
	ErrDuplicateKey        = errors.New("menus: route name already used at this level")
	ErrReorderItemMismatch = errors.New("menus: reorder entry does not belong to the menu")
)

// NotFoundError is returned when a menu resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
