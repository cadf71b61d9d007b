package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/internal/settings"
)

type settingsPutPayload struct {
	Values    map[string]any `json:"values"`
	UpdatedBy *uuid.UUID     `json:"updated_by,omitempty"`
	ActorID   *uuid.UUID     `json:"actor_id,omitempty"`
}

type settingsGroupResponse struct {
	Group  settings.Group  `json:"group"`
	Values settings.Values `json:"values"`
}

type mailTestPayload struct {
	To     string `json:"to"`
	Locale string `json:"locale,omitempty"`
}

func (api *AdminAPI) registerSettingsRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "settings")
	mux.HandleFunc("GET "+root, api.handleSettingsGroups)
	mux.HandleFunc("GET "+root+"/{group}", api.handleSettingsGet)
	mux.HandleFunc("PUT "+root+"/{group}", api.handleSettingsPut)
	mux.HandleFunc("POST "+root+"/mail/test", api.handleMailTest)
}

func (api *AdminAPI) handleSettingsGroups(w http.ResponseWriter, r *http.Request) {
	if api.settings == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.SettingsRead) {
		return
	}
	writeJSON(w, http.StatusOK, api.settings.Groups())
}

func (api *AdminAPI) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	if api.settings == nil {
		unavailable(w)
		return
	}
	group := settings.Group(strings.ToLower(strings.TrimSpace(r.PathValue("group"))))
	if !requirePermission(w, r, permissions.SettingsGroupPermissions(string(group)).Read) {
		return
	}
	values, err := api.settings.Masked(r.Context(), group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsGroupResponse{Group: group, Values: values})
}

// handleSettingsPut stores a group. Secrets echoed back as the mask, or left
// out, keep their stored value.
func (api *AdminAPI) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	if api.settings == nil {
		unavailable(w)
		return
	}
	group := settings.Group(strings.ToLower(strings.TrimSpace(r.PathValue("group"))))
	if !requirePermission(w, r, permissions.SettingsGroupPermissions(string(group)).Update) {
		return
	}
	var payload settingsPutPayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	values, err := api.settings.Put(r.Context(), settings.PutInput{
		Group:     group,
		Values:    payload.Values,
		UpdatedBy: resolveActorID(payload.UpdatedBy, payload.ActorID),
	})
	if errors.Is(err, settings.ErrNotifyFailed) {
		api.logger.Warn("http.observer.failed", "operation", "settings.put", "group", string(group), "error", err)
		err = nil
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsGroupResponse{Group: group, Values: values})
}

func (api *AdminAPI) handleMailTest(w http.ResponseWriter, r *http.Request) {
	if api.mailTest == nil {
		unavailable(w)
		return
	}
	if !requirePermission(w, r, permissions.SettingsGroupPermissions(string(settings.GroupMail)).Update) {
		return
	}
	var payload mailTestPayload
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}
	if err := api.mailTest.Execute(r.Context(), mailcmd.SendTestMailCommand{To: payload.To, Locale: payload.Locale}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}
