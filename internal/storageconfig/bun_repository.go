package storageconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-portal/pkg/storage"
)

// BunRepository persists profiles in the storage_profiles table.
type BunRepository struct {
	db          *bun.DB
	broadcaster *changeBroadcaster
	now         func() time.Time
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		broadcaster: newChangeBroadcaster(),
		now:         time.Now,
	}
}

// List returns the stored profiles ordered by name.
func (r *BunRepository) List(ctx context.Context) ([]storage.Profile, error) {
	var models []ProfileModel
	if err := r.db.NewSelect().Model(&models).Order("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]storage.Profile, len(models))
	for i := range models {
		out[i] = models[i].profile()
	}
	return out, nil
}

// Get retrieves a profile by name.
func (r *BunRepository) Get(ctx context.Context, name string) (*storage.Profile, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrProfileNameRequired
	}
	model, err := r.find(ctx, r.db, trimmed)
	if err != nil {
		return nil, err
	}
	profile := model.profile()
	return &profile, nil
}

// Upsert validates and stores a profile.
func (r *BunRepository) Upsert(ctx context.Context, profile storage.Profile) (*storage.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, ErrProfileNameRequired
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	created, changed := false, true
	now := r.now().UTC()
	model := modelFromProfile(profile)
	model.UpdatedAt = now
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := r.find(ctx, tx, profile.Name)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			created = true
			model.CreatedAt = now
			_, err = tx.NewInsert().Model(&model).Exec(ctx)
			return err
		case err != nil:
			return err
		}
		if sameProfile(existing.profile(), model.profile()) {
			changed = false
			model = *existing
			return nil
		}
		model.CreatedAt = existing.CreatedAt
		_, err = tx.NewUpdate().
			Model(&model).
			Column("description", "config", "labels", "is_default", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := model.profile()
	switch {
	case created:
		r.broadcaster.Broadcast(newChangeEvent(ChangeCreated, out))
	case changed:
		r.broadcaster.Broadcast(newChangeEvent(ChangeUpdated, out))
	}
	return &out, nil
}

// Replace applies the difference between the stored rows and desired in one
// transaction. Events are broadcast after commit.
func (r *BunRepository) Replace(ctx context.Context, desired []storage.Profile) ([]ChangeEvent, error) {
	var events []ChangeEvent
	now := r.now().UTC()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var rows []ProfileModel
		if err := tx.NewSelect().Model(&rows).Scan(ctx); err != nil {
			return err
		}
		current := make(map[string]storage.Profile, len(rows))
		for i := range rows {
			current[rows[i].Name] = rows[i].profile()
		}
		var err error
		if events, err = diffProfiles(current, desired); err != nil {
			return err
		}
		for _, event := range events {
			model := modelFromProfile(event.Profile)
			model.UpdatedAt = now
			switch event.Type {
			case ChangeCreated:
				model.CreatedAt = now
				_, err = tx.NewInsert().Model(&model).Exec(ctx)
			case ChangeUpdated:
				_, err = tx.NewUpdate().
					Model(&model).
					Column("description", "config", "labels", "is_default", "updated_at").
					WherePK().
					Exec(ctx)
			case ChangeDeleted:
				_, err = tx.NewDelete().Model(&model).WherePK().Exec(ctx)
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", event.Type, event.Profile.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		r.broadcaster.Broadcast(event)
	}
	return events, nil
}

// Delete removes a profile by name.
func (r *BunRepository) Delete(ctx context.Context, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrProfileNameRequired
	}
	model, err := r.find(ctx, r.db, trimmed)
	if err != nil {
		return err
	}
	if _, err := r.db.NewDelete().Model(model).WherePK().Exec(ctx); err != nil {
		return err
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, model.profile()))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func (r *BunRepository) find(ctx context.Context, db bun.IDB, name string) (*ProfileModel, error) {
	model := new(ProfileModel)
	err := db.NewSelect().Model(model).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

// ProfileModel is the storage_profiles row.
type ProfileModel struct {
	bun.BaseModel `bun:"table:storage_profiles"`

	Name        string            `bun:",pk"`
	Description string            `bun:"description"`
	Config      storage.Config    `bun:"config,type:jsonb"`
	Labels      map[string]string `bun:"labels,type:jsonb,nullzero"`
	Default     bool              `bun:"is_default"`
	CreatedAt   time.Time         `bun:"created_at"`
	UpdatedAt   time.Time         `bun:"updated_at"`
}

func modelFromProfile(profile storage.Profile) ProfileModel {
	cloned := cloneProfile(profile)
	return ProfileModel{
		Name:        cloned.Name,
		Description: cloned.Description,
		Config:      cloned.Config,
		Labels:      cloned.Labels,
		Default:     cloned.Default,
	}
}

func (m *ProfileModel) profile() storage.Profile {
	return cloneProfile(storage.Profile{
		Name:        m.Name,
		Description: m.Description,
		Config:      m.Config,
		Labels:      m.Labels,
		Default:     m.Default,
	})
}
