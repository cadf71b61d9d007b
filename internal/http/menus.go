package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/permissions"
)

type menuCreatePayload struct {
	Name      string            `json:"name"`
	Labels    map[string]string `json:"labels,omitempty"`
	IsActive  *bool             `json:"is_active,omitempty"`
	CreatedBy *uuid.UUID        `json:"created_by,omitempty"`
	ActorID   *uuid.UUID        `json:"actor_id,omitempty"`
}

type menuUpdatePayload struct {
	Labels    map[string]string `json:"labels,omitempty"`
	IsActive  *bool             `json:"is_active,omitempty"`
	UpdatedBy *uuid.UUID        `json:"updated_by,omitempty"`
	ActorID   *uuid.UUID        `json:"actor_id,omitempty"`
}

type actorPayload struct {
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
}

type itemCreatePayload struct {
	menus.AddMenuItemInput
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

type itemUpdatePayload struct {
	menus.UpdateMenuItemInput
	ActorID *uuid.UUID `json:"actor_id,omitempty"`
}

type reorderPayload struct {
	Items     []menus.ItemOrder `json:"items"`
	UpdatedBy *uuid.UUID        `json:"updated_by,omitempty"`
	ActorID   *uuid.UUID        `json:"actor_id,omitempty"`
}

func (api *AdminAPI) registerMenuRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "menus")
	mux.HandleFunc("GET "+root, api.handleMenuList)
	mux.HandleFunc("POST "+root, api.handleMenuCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handleMenuGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleMenuUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleMenuDelete)
	mux.HandleFunc("GET "+root+"/{id}/items", api.handleItemList)
	mux.HandleFunc("POST "+root+"/{id}/items", api.handleItemCreate)
	mux.HandleFunc("POST "+root+"/{id}/reorder", api.handleItemReorder)

	items := joinPath(base, "menu-items")
	mux.HandleFunc("PUT "+items+"/{id}", api.handleItemUpdate)
	mux.HandleFunc("DELETE "+items+"/{id}", api.handleItemDelete)
}

func (api *AdminAPI) handleMenuList(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.MenusRead) {
		return
	}
	records, err := api.menus.ListMenus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*menus.Menu{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *AdminAPI) handleMenuGet(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusRead) {
		return
	}
	record, err := api.menus.GetMenu(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handleMenuCreate(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.MenusCreate) {
		return
	}
	var payload menuCreatePayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	created, err := api.menus.CreateMenu(r.Context(), menus.CreateMenuInput{
		Name:      payload.Name,
		Labels:    payload.Labels,
		IsActive:  payload.IsActive,
		CreatedBy: resolveActorID(payload.CreatedBy, payload.ActorID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (api *AdminAPI) handleMenuUpdate(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusUpdate) {
		return
	}
	var payload menuUpdatePayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	updated, err := api.menus.UpdateMenu(r.Context(), menus.UpdateMenuInput{
		ID:        id,
		Labels:    payload.Labels,
		IsActive:  payload.IsActive,
		UpdatedBy: resolveActorID(payload.UpdatedBy, payload.ActorID),
	})
	if err = api.committed(err, "menu.update"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (api *AdminAPI) handleMenuDelete(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusDelete) {
		return
	}
	var payload actorPayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	err := api.menus.DeleteMenu(r.Context(), menus.DeleteMenuRequest{
		ID:        id,
		DeletedBy: resolveActorID(payload.DeletedBy, payload.ActorID),
	})
	if err = api.committed(err, "menu.delete"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (api *AdminAPI) handleItemList(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusRead) {
		return
	}
	if _, err := api.menus.GetMenu(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	items, err := api.menus.ListMenuItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []*menus.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (api *AdminAPI) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusUpdate) {
		return
	}
	var payload itemCreatePayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	input := payload.AddMenuItemInput
	input.ID = uuid.Nil
	input.MenuID = id
	input.CreatedBy = resolveActorID(&input.CreatedBy, payload.ActorID)
	created, err := api.menus.AddMenuItem(r.Context(), input)
	if err = api.committed(err, "menu_item.create"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (api *AdminAPI) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusUpdate) {
		return
	}
	var payload itemUpdatePayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	input := payload.UpdateMenuItemInput
	input.ID = id
	input.UpdatedBy = resolveActorID(&input.UpdatedBy, payload.ActorID)
	updated, err := api.menus.UpdateMenuItem(r.Context(), input)
	if err = api.committed(err, "menu_item.update"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (api *AdminAPI) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusUpdate) {
		return
	}
	var payload actorPayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	err := api.menus.DeleteMenuItem(r.Context(), menus.DeleteMenuItemRequest{
		ID:        id,
		DeletedBy: resolveActorID(payload.DeletedBy, payload.ActorID),
	})
	if err = api.committed(err, "menu_item.delete"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (api *AdminAPI) handleItemReorder(w http.ResponseWriter, r *http.Request) {
	if api.menus == nil {
		unavailable(w)
		return
	}
	id, ok := pathID(w, r)
	if !ok || !requirePermission(w, r, permissions.MenusUpdate) {
		return
	}
	var payload reorderPayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	actor := resolveActorID(payload.UpdatedBy, payload.ActorID)

	var err error
	if api.reorder != nil {
		err = api.reorder.Execute(r.Context(), navigationcmd.ReorderMenuItemsCommand{
			MenuID:    id,
			Items:     payload.Items,
			UpdatedBy: actor,
		})
	} else {
		_, err = api.menus.ReorderMenuItems(r.Context(), menus.ReorderMenuItemsInput{
			MenuID:    id,
			Items:     payload.Items,
			UpdatedBy: actor,
		})
	}
	if err = api.committed(err, "menu_item.reorder"); err != nil {
		writeError(w, err)
		return
	}
	items, err := api.menus.ListMenuItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// committed drops observer failures: the write has been stored and the
// failure was already logged by the service.
func (api *AdminAPI) committed(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, menus.ErrNotifyFailed) {
		api.logger.Warn("http.observer.failed", "operation", operation, "error", err)
		return nil
	}
	return err
}
