package main

import (
	"context"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/cron"

	"github.com/goliatone/go-portal/commands"
	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// scheduler is the part of the go-command cron scheduler serve drives.
type scheduler interface {
	AddHandler(opts command.HandlerConfig, handler any) (cron.Subscription, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var newScheduler = func(logger interfaces.Logger) scheduler {
	return cron.NewScheduler(
		cron.WithLogger(logger),
		cron.WithLogLevel(cron.LogLevelError),
		cron.WithErrorHandler(func(err error) {
			logger.Error("cron.job.failed", "error", err)
		}),
	)
}

// scheduleCommands registers the container's periodic jobs with s and starts
// it. expression "-" leaves the scheduler idle. The returned func stops it.
func scheduleCommands(ctx context.Context, container *di.Container, expression string, s scheduler) (func(), error) {
	var subscriptions []cron.Subscription
	registrar := func(cfg command.HandlerConfig, handler any) error {
		subscription, err := s.AddHandler(cfg, handler)
		if err != nil {
			return err
		}
		subscriptions = append(subscriptions, subscription)
		return nil
	}

	if _, err := commands.RegisterContainerCommands(container, commands.RegistrationOptions{
		CronRegistrar:         registrar,
		RefreshNavigationCron: strings.TrimSpace(expression),
	}); err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return func() {}, nil
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		for _, subscription := range subscriptions {
			subscription.Unsubscribe()
		}
		_ = s.Stop(context.Background())
	}, nil
}
