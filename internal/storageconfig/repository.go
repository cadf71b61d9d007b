package storageconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-portal/internal/validation"
	"github.com/goliatone/go-portal/pkg/storage"
)

// ErrProfileNotFound indicates that a requested disk profile does not exist.
var ErrProfileNotFound = errors.New("storageconfig: profile not found")

// ErrProfileNameRequired indicates that profile operations require a non-empty name.
var ErrProfileNameRequired = errors.New("storageconfig: profile name is required")

// Repository exposes persistence operations for published disk profiles.
type Repository interface {
	List(ctx context.Context) ([]storage.Profile, error)
	Get(ctx context.Context, name string) (*storage.Profile, error)
	Upsert(ctx context.Context, profile storage.Profile) (*storage.Profile, error)
	Delete(ctx context.Context, name string) error
	// Replace makes desired the complete published set. Only profiles that
	// actually differ produce events.
	Replace(ctx context.Context, desired []storage.Profile) ([]ChangeEvent, error)
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// ChangeType enumerates profile change events.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports profile mutations to subscribers.
type ChangeEvent struct {
	Type    ChangeType
	Profile storage.Profile
}

var (
	profileSchemaOnce sync.Once
	profileSchema     *validation.Schema
	profileSchemaErr  error
)

// ValidateProfile checks a profile against storage.ProfileJSONSchema.
func ValidateProfile(profile storage.Profile) error {
	profileSchemaOnce.Do(func() {
		var doc map[string]any
		if profileSchemaErr = json.Unmarshal([]byte(storage.ProfileJSONSchema), &doc); profileSchemaErr != nil {
			return
		}
		profileSchema, profileSchemaErr = validation.Compile(doc)
	})
	if profileSchemaErr != nil {
		return profileSchemaErr
	}
	encoded, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return err
	}
	return profileSchema.Validate(payload)
}

func cloneProfile(profile storage.Profile) storage.Profile {
	cloned := profile
	if profile.Labels != nil {
		cloned.Labels = maps.Clone(profile.Labels)
	}
	return cloned
}

func newChangeEvent(changeType ChangeType, profile storage.Profile) ChangeEvent {
	return ChangeEvent{
		Type:    changeType,
		Profile: cloneProfile(profile),
	}
}

// ErrDuplicateProfile is returned by Replace when two desired profiles share a name.
var ErrDuplicateProfile = errors.New("storageconfig: duplicate profile name")

// diffProfiles computes the events that turn current into desired. Created
// and updated events come first in name order, deletions last.
func diffProfiles(current map[string]storage.Profile, desired []storage.Profile) ([]ChangeEvent, error) {
	wanted := make(map[string]storage.Profile, len(desired))
	for _, profile := range desired {
		profile.Name = strings.TrimSpace(profile.Name)
		if profile.Name == "" {
			return nil, ErrProfileNameRequired
		}
		if _, dup := wanted[profile.Name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProfile, profile.Name)
		}
		if err := ValidateProfile(profile); err != nil {
			return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
		}
		wanted[profile.Name] = profile
	}

	var events []ChangeEvent
	for _, name := range slices.Sorted(maps.Keys(wanted)) {
		profile := wanted[name]
		existing, ok := current[name]
		switch {
		case !ok:
			events = append(events, newChangeEvent(ChangeCreated, profile))
		case !sameProfile(existing, profile):
			events = append(events, newChangeEvent(ChangeUpdated, profile))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(current)) {
		if _, ok := wanted[name]; !ok {
			events = append(events, newChangeEvent(ChangeDeleted, current[name]))
		}
	}
	return events, nil
}

func sameProfile(a, b storage.Profile) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Config == b.Config &&
		a.Default == b.Default &&
		maps.Equal(a.Labels, b.Labels)
}
