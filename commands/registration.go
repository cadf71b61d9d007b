package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	navigationcmd "github.com/goliatone/go-portal/internal/commands/navigation"
	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// DefaultRefreshCron rebuilds resolved navigation for writes made outside
// the menu service, such as manual SQL.
const DefaultRefreshCron = "@hourly"

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// RefreshNavigationCron overrides DefaultRefreshCron. "-" disables the job.
	RefreshNavigationCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands collects the command handlers built by the
// container and optionally registers them with registry, dispatcher and
// cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}
	logger := logging.ModuleLogger(provider, "portal.commands")

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if handler := container.InvalidateHandler(); handler != nil {
		register(handler)

		expression := strings.TrimSpace(opts.RefreshNavigationCron)
		if expression == "" {
			expression = DefaultRefreshCron
		}
		if opts.CronRegistrar != nil && expression != "-" {
			job := refreshJob{
				handler: handler,
				config:  command.HandlerConfig{Expression: expression},
			}
			if err := opts.CronRegistrar(job.CronOptions(), job.CronHandler()); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}
	if handler := container.ReorderHandler(); handler != nil {
		register(handler)
	}
	if handler := container.MailTestHandler(); handler != nil {
		register(handler)
	}

	if errs != nil {
		logger.Error("commands.register.failed", "error", errs)
	}
	logger.Info("commands.registered", "handlers", len(result.Handlers), "subscriptions", len(result.Subscriptions))

	if len(result.Handlers) == 0 {
		return result, errors.Join(errs, errors.New("no command handlers registered"))
	}
	return result, errs
}

type refreshJob struct {
	handler interface {
		Execute(ctx context.Context, msg navigationcmd.InvalidateNavigationCommand) error
	}
	config command.HandlerConfig
}

var _ command.CronCommand = refreshJob{}

// CronHandler drops every cached navigation projection.
func (j refreshJob) CronHandler() func() error {
	return func() error {
		return j.handler.Execute(context.Background(), navigationcmd.InvalidateNavigationCommand{})
	}
}

func (j refreshJob) CronOptions() command.HandlerConfig {
	return j.config
}
