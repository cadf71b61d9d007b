package menus

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewMenuRepository creates the generic bun repository for Menu records,
// identified by name.
func NewMenuRepository(db *bun.DB) repository.Repository[*Menu] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Menu]{
		NewRecord: func() *Menu { return &Menu{} },
		GetID: func(m *Menu) uuid.UUID {
			return m.ID
		},
		SetID: func(m *Menu, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(m *Menu) string {
			return m.Name
		},
	})
}

// NewMenuItemRepository creates the generic bun repository for MenuItem records.
func NewMenuItemRepository(db *bun.DB) repository.Repository[*MenuItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*MenuItem]{
		NewRecord: func() *MenuItem { return &MenuItem{} },
		GetID: func(item *MenuItem) uuid.UUID {
			return item.ID
		},
		SetID: func(item *MenuItem, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(item *MenuItem) string {
			return item.ID.String()
		},
	})
}
