package storageconfig_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/storageconfig"
	"github.com/goliatone/go-portal/internal/validation"
	"github.com/goliatone/go-portal/pkg/storage"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func repositories(t *testing.T) map[string]storageconfig.Repository {
	t.Helper()
	db := testsupport.NewBunDB(t, (*storageconfig.ProfileModel)(nil))
	return map[string]storageconfig.Repository{
		"memory": storageconfig.NewMemoryRepository(),
		"bun":    storageconfig.NewBunRepository(db),
	}
}

func TestRepositoryCRUDEvents(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			events, err := repo.Subscribe(ctx)
			if err != nil {
				t.Fatalf("Subscribe() error = %v", err)
			}

			profile := storage.Profile{
				Name:   "media",
				Config: storage.Config{Driver: storage.DriverS3, Bucket: "portal-media", Region: "ap-southeast-1"},
				Labels: map[string]string{"source": "settings"},
			}
			if _, err := repo.Upsert(ctx, profile); err != nil {
				t.Fatalf("Upsert() create error = %v", err)
			}
			assertEvent(t, events, storageconfig.ChangeCreated)

			profile.Default = true
			if _, err := repo.Upsert(ctx, profile); err != nil {
				t.Fatalf("Upsert() update error = %v", err)
			}
			assertEvent(t, events, storageconfig.ChangeUpdated)

			fetched, err := repo.Get(ctx, "media")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !fetched.Default || fetched.Config.Bucket != "portal-media" || fetched.Labels["source"] != "settings" {
				t.Fatalf("Get() returned unexpected profile %+v", fetched)
			}

			list, err := repo.List(ctx)
			if err != nil || len(list) != 1 {
				t.Fatalf("List() = %v, %v", list, err)
			}

			if err := repo.Delete(ctx, "media"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			assertEvent(t, events, storageconfig.ChangeDeleted)

			if _, err := repo.Get(ctx, "media"); !errors.Is(err, storageconfig.ErrProfileNotFound) {
				t.Fatalf("expected ErrProfileNotFound, got %v", err)
			}
			if err := repo.Delete(ctx, " "); !errors.Is(err, storageconfig.ErrProfileNameRequired) {
				t.Fatalf("expected ErrProfileNameRequired, got %v", err)
			}
		})
	}
}

func TestUpsertRejectsInvalidProfile(t *testing.T) {
	repo := storageconfig.NewMemoryRepository()
	_, err := repo.Upsert(context.Background(), storage.Profile{
		Name:   "Bad Name",
		Config: storage.Config{Driver: "ftp"},
	})
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func assertEvent(t *testing.T, events <-chan storageconfig.ChangeEvent, want storageconfig.ChangeType) {
	t.Helper()
	select {
	case evt := <-events:
		if evt.Type != want {
			t.Fatalf("expected %s event, got %s", want, evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s event", want)
	}
}

func TestReplacePublishesOnlyDifferences(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			local := storage.Profile{Name: "local", Config: storage.Config{Driver: storage.DriverLocal, Root: "storage/app"}}
			public := storage.Profile{Name: "public", Config: storage.Config{Driver: storage.DriverPublic, Root: "storage/public", URL: "/storage"}, Default: true}

			events, err := repo.Replace(ctx, []storage.Profile{public, local})
			if err != nil {
				t.Fatalf("Replace() error = %v", err)
			}
			if len(events) != 2 || events[0].Profile.Name != "local" || events[1].Type != storageconfig.ChangeCreated {
				t.Fatalf("unexpected first events %+v", events)
			}

			events, err = repo.Replace(ctx, []storage.Profile{local, public})
			if err != nil || len(events) != 0 {
				t.Fatalf("identical Replace() = %+v, %v", events, err)
			}

			local.Default, public.Default = true, false
			events, err = repo.Replace(ctx, []storage.Profile{local})
			if err != nil {
				t.Fatalf("Replace() error = %v", err)
			}
			if len(events) != 2 || events[0].Type != storageconfig.ChangeUpdated || events[1].Type != storageconfig.ChangeDeleted {
				t.Fatalf("unexpected events %+v", events)
			}
			list, _ := repo.List(ctx)
			if len(list) != 1 || !list[0].Default {
				t.Fatalf("unexpected stored profiles %+v", list)
			}
		})
	}
}

func TestReplaceRejectsDuplicatesWithoutWriting(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			profile := storage.Profile{Name: "local", Config: storage.Config{Driver: storage.DriverLocal, Root: "storage/app"}}
			_, err := repo.Replace(ctx, []storage.Profile{profile, profile})
			if !errors.Is(err, storageconfig.ErrDuplicateProfile) {
				t.Fatalf("expected ErrDuplicateProfile, got %v", err)
			}
			if list, _ := repo.List(ctx); len(list) != 0 {
				t.Fatalf("expected nothing stored, got %+v", list)
			}
		})
	}
}
