package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-portal"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// MenuUUID is the seed id of a menu.
func MenuUUID(name string) uuid.UUID {
	return UUID(namespace + ":menu:" + strings.TrimSpace(name))
}

// MenuItemUUID is the seed id of a keyed item within a menu.
func MenuItemUUID(menuID uuid.UUID, key string) uuid.UUID {
	return UUID(namespace + ":menu_item:" + menuID.String() + ":" + strings.TrimSpace(key))
}

// SystemActor identifies writes made by seeds and CLI commands.
func SystemActor() uuid.UUID {
	return UUID(namespace + ":actor:system")
}
