package settings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-portal/internal/settings"
	"github.com/goliatone/go-portal/pkg/testsupport"
)

func TestBunRepositoryRoundTrip(t *testing.T) {
	db := testsupport.NewBunDB(t, (*settings.Record)(nil))
	repo := settings.NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx, settings.GroupFooter); !errors.Is(err, settings.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	svc := settings.NewService(repo, settings.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	payload := map[string]any{
		"copyright": map[string]any{"ms": "Hak cipta terpelihara", "en": "All rights reserved"},
		"social":    map[string]any{"facebook": "https://facebook.com/kementerian"},
	}
	if _, err := svc.Put(ctx, settings.PutInput{Group: settings.GroupFooter, Values: payload, UpdatedBy: editor}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	payload["show_visitor_count"] = true
	if _, err := svc.Put(ctx, settings.PutInput{Group: settings.GroupFooter, Values: payload, UpdatedBy: editor}); err != nil {
		t.Fatalf("Put update: %v", err)
	}

	values, err := svc.Get(ctx, settings.GroupFooter)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if values.Label("copyright", "en", "ms") != "All rights reserved" || !values.Bool("show_visitor_count", false) {
		t.Fatalf("unexpected values %v", values)
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].UpdatedBy != editor {
		t.Fatalf("unexpected records %+v", records)
	}
}
