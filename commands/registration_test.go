package commands

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/internal/menus"
	"github.com/goliatone/go-portal/internal/runtimeconfig"
)

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Mail = true

	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}
	cron := &recordingCron{}

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	result, err := RegisterContainerCommands(container, RegistrationOptions{
		Registry:              registry,
		Dispatcher:            dispatcher,
		CronRegistrar:         cron.Registrar(),
		RefreshNavigationCron: "*/15 * * * *",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 3 {
		t.Fatalf("expected invalidate, reorder and mail handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != 3 || len(dispatcher.handlers) != 3 {
		t.Fatalf("expected registry and dispatcher to see every handler, got %d and %d", len(registry.handlers), len(dispatcher.handlers))
	}
	if len(result.Subscriptions) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(result.Subscriptions))
	}
	if len(cron.registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(cron.registrations))
	}
	if got := cron.registrations[0].config.Expression; got != "*/15 * * * *" {
		t.Fatalf("expected custom cron expression, got %q", got)
	}
}

func TestRefreshJobInvalidatesNavigation(t *testing.T) {
	ctx := context.Background()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	cron := &recordingCron{}
	if _, err := RegisterContainerCommands(container, RegistrationOptions{CronRegistrar: cron.Registrar()}); err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(cron.registrations) != 1 || cron.registrations[0].config.Expression != DefaultRefreshCron {
		t.Fatalf("expected default refresh job, got %+v", cron.registrations)
	}

	actor := uuid.New()
	menu, err := container.MenuService().CreateMenu(ctx, menus.CreateMenuInput{Name: "admin_sidebar", CreatedBy: actor})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	if _, err := container.MenuService().AddMenuItem(ctx, menus.AddMenuItemInput{
		MenuID:    menu.ID,
		Labels:    map[string]string{"ms": "Kandungan", "en": "Content"},
		RouteName: "content",
		SortOrder: 3,
		CreatedBy: actor,
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if sort, ok := container.NavigationResolver().GroupSort(ctx, "content"); !ok || sort != 3 {
		t.Fatalf("expected group sort 3, got %d %v", sort, ok)
	}

	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("refresh job: %v", err)
	}
	if sort, ok := container.NavigationResolver().GroupSort(ctx, "content"); !ok || sort != 3 {
		t.Fatalf("expected group sort 3 after refresh, got %d %v", sort, ok)
	}
}

func TestRegisterContainerCommandsWithoutRegistrars(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}

	result, err := RegisterContainerCommands(container, RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	for _, handler := range result.Handlers {
		if _, ok := handler.(interface {
			Execute(context.Context, navigationcmd.InvalidateNavigationCommand) error
		}); ok {
			return
		}
	}
	t.Fatal("expected the invalidate handler to be built even without registrars")
}

func TestRegisterContainerCommandsJoinsDispatcherErrors(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	boom := errors.New("dispatcher down")

	result, err := RegisterContainerCommands(container, RegistrationOptions{
		Dispatcher:            &recordingDispatcher{err: boom},
		RefreshNavigationCron: "-",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected dispatcher error, got %v", err)
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no subscriptions, got %d", len(result.Subscriptions))
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
	err           error
}

func (c *recordingCron) Registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		var fn func() error
		if h, ok := handler.(func() error); ok {
			fn = h
		}
		c.registrations = append(c.registrations, cronRegistration{
			config:  cfg,
			handler: fn,
		})
		return nil
	}
}

type recordingDispatcher struct {
	handlers      []any
	subscriptions []*recordingSubscription
	err           error
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.handlers = append(d.handlers, handler)
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
