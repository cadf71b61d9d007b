package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/crypto"
	"github.com/goliatone/go-portal/internal/mailer"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/permissions"
	"github.com/goliatone/go-portal/internal/settings"
	schemavalidation "github.com/goliatone/go-portal/internal/validation"
)

type errorResponse struct {
	Error   string                             `json:"error"`
	Message string                             `json:"message,omitempty"`
	Issues  []schemavalidation.ValidationIssue `json:"issues,omitempty"`
	Fields  map[string]string                  `json:"fields,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

// decodeOptionalJSON accepts an empty body and reports whether the caller
// should continue.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var notFound *menus.NotFoundError
	if errors.As(err, &notFound) ||
		errors.Is(err, settings.ErrUnknownGroup) ||
		errors.Is(err, navigationcmd.ErrUnknownMenu) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, permissions.ErrPermissionDenied) {
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	}

	if errors.Is(err, menus.ErrMenuNameExists) || errors.Is(err, menus.ErrDuplicateKey) {
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	}

	if errors.Is(err, schemavalidation.ErrSchemaValidation) || errors.Is(err, schemavalidation.ErrSchemaInvalid) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  schemavalidation.Issues(err),
		}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Fields:  fieldMessages(fieldErrs),
		}
	}

	if goerrors.IsCategory(err, goerrors.CategoryValidation) ||
		errors.Is(err, menus.ErrMenuNameRequired) ||
		errors.Is(err, menus.ErrMenuIDRequired) ||
		errors.Is(err, menus.ErrItemIDRequired) ||
		errors.Is(err, menus.ErrCrossMenuParent) ||
		errors.Is(err, menus.ErrNestingTooDeep) ||
		errors.Is(err, menus.ErrParentCycle) ||
		errors.Is(err, menus.ErrReorderItemMismatch) ||
		errors.Is(err, mailer.ErrNoRecipients) ||
		errors.Is(err, mailer.ErrInvalidRecipient) ||
		errors.Is(err, crypto.ErrEncrypterDisabled) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	if errors.Is(err, mailer.ErrNotConfigured) {
		return http.StatusConflict, errorResponse{Error: "mail_not_configured", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func fieldMessages(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func resolveActorID(primary, secondary *uuid.UUID) uuid.UUID {
	if primary != nil && *primary != uuid.Nil {
		return *primary
	}
	if secondary != nil && *secondary != uuid.Nil {
		return *secondary
	}
	return uuid.Nil
}

func requirePermission(w http.ResponseWriter, r *http.Request, permission string) bool {
	if strings.TrimSpace(permission) == "" {
		return true
	}
	if r == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "request missing"})
		return false
	}
	if err := permissions.Require(r.Context(), permission); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}
