package storageconfig

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-portal/pkg/storage"
)

// MemoryRepository is the profile table used when no database is configured.
type MemoryRepository struct {
	mu          sync.RWMutex
	byName      map[string]storage.Profile
	broadcaster *changeBroadcaster
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:      make(map[string]storage.Profile),
		broadcaster: newChangeBroadcaster(),
	}
}

func (r *MemoryRepository) List(context.Context) ([]storage.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]storage.Profile, 0, len(r.byName))
	for _, name := range slices.Sorted(maps.Keys(r.byName)) {
		out = append(out, cloneProfile(r.byName[name]))
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, name string) (*storage.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProfileNameRequired
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.byName[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	profile = cloneProfile(profile)
	return &profile, nil
}

// Upsert validates profile and stores it, announcing a create or an update.
// Rewriting an identical profile is silent.
func (r *MemoryRepository) Upsert(_ context.Context, profile storage.Profile) (*storage.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, ErrProfileNameRequired
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	profile = cloneProfile(profile)

	r.mu.Lock()
	previous, existed := r.byName[profile.Name]
	r.byName[profile.Name] = profile
	r.mu.Unlock()

	switch {
	case !existed:
		r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, profile))
	case !sameProfile(previous, profile):
		r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, profile))
	}
	out := cloneProfile(profile)
	return &out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrProfileNameRequired
	}
	r.mu.Lock()
	profile, ok := r.byName[name]
	delete(r.byName, name)
	r.mu.Unlock()
	if !ok {
		return ErrProfileNotFound
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, profile))
	return nil
}

// Replace swaps the whole published set under one lock.
func (r *MemoryRepository) Replace(_ context.Context, desired []storage.Profile) ([]ChangeEvent, error) {
	r.mu.Lock()
	events, err := diffProfiles(r.byName, desired)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	for _, event := range events {
		if event.Type == ChangeDeleted {
			delete(r.byName, event.Profile.Name)
			continue
		}
		r.byName[event.Profile.Name] = cloneProfile(event.Profile)
	}
	r.mu.Unlock()

	for _, event := range events {
		r.broadcaster.Broadcast(event)
	}
	return events, nil
}

func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
