package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portal "github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/cmd/portal/internal/bootstrap"
	"github.com/goliatone/go-portal/commands"
	mailcmd "github.com/goliatone/go-portal/internal/commands/mail"
	"github.com/goliatone/go-portal/internal/permissions"
)

var moduleBuilder = bootstrap.BuildModule

const usage = `usage: portal <command> [flags]

commands:
  migrate up|down|status   apply, roll back or list schema migrations
  seed                     converge the admin sidebar menu
  navigation               print the assembled admin sidebar as JSON
  mail-test                send a test message with the stored mail settings
  serve                    run the admin and public HTTP API with the
                           navigation refresh cron (-refresh-cron)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("portal: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	switch args[0] {
	case "migrate":
		return runMigrate(ctx, args[1:], out)
	case "seed":
		return runSeed(ctx, args[1:], out)
	case "navigation":
		return runNavigation(ctx, args[1:], out)
	case "mail-test":
		return runMailTest(ctx, args[1:], out)
	case "serve":
		return runServe(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func connectionFlags(fs *flag.FlagSet) *bootstrap.Options {
	opts := &bootstrap.Options{}
	fs.StringVar(&opts.Driver, "driver", "", "Database driver: sqlite or postgres (env "+bootstrap.EnvDriver+")")
	fs.StringVar(&opts.DSN, "dsn", "", "Database connection string (env "+bootstrap.EnvDSN+")")
	fs.StringVar(&opts.Locale, "locale", "", "Default locale: ms or en")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Enable logging at level (env "+bootstrap.EnvLogLevel+")")
	fs.StringVar(&opts.I18NBundle, "i18n-bundle", "", "Translation overrides JSON file (env "+bootstrap.EnvI18N+")")
	return opts
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	opts := connectionFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	action := "up"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	runner, err := module.Module.Migrator()
	if err != nil {
		return err
	}

	switch action {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "applied %d migrations\n", len(applied))
	case "down":
		rolled, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rolled back %d migrations\n", len(rolled))
	case "status":
		status, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range status {
			state := "pending"
			if s.Applied {
				state = "applied " + s.MigratedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", s.Name, s.Comment, state)
		}
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	return nil
}

func runSeed(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	opts := connectionFlags(fs)
	reset := fs.Bool("reset", false, "Restore seeded items to their default group, order and visibility")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	container := module.Module.Container()
	result, err := portal.SeedAdminSidebar(ctx, portal.SeedSidebarOptions{
		Menus:      module.Module.Menus(),
		Translator: container.I18nService().Translator(),
		Locales:    container.I18nService().Locales(),
		MenuName:   container.Config.Navigation.SidebarMenu,
		Reset:      *reset,
	})
	if err != nil {
		return err
	}
	module.Logger.Info("seed.completed", "created", result.Created, "reset", result.Reset, "skipped", result.Skipped)
	fmt.Fprintf(out, "sidebar seeded: %d created, %d reset, %d unchanged\n", result.Created, result.Reset, result.Skipped)
	return nil
}

func runNavigation(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("navigation", flag.ContinueOnError)
	opts := connectionFlags(fs)
	roles := fs.String("roles", "super_admin", "Comma separated viewer roles")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	checker := permissions.DefaultRoles().Checker(bootstrap.SplitRoles(*roles)...)
	nav := module.Module.Sidebar(ctx, opts.Locale, checker)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(nav)
}

func runMailTest(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mail-test", flag.ContinueOnError)
	opts := connectionFlags(fs)
	to := fs.String("to", "", "Recipient address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if err := module.Module.Bootstrap(ctx); err != nil {
		return err
	}
	handler := module.Module.Container().MailTestHandler()
	if handler == nil {
		return errors.New("mail is disabled")
	}
	if err := handler.Execute(ctx, mailcmd.SendTestMailCommand{To: *to, Locale: opts.Locale}); err != nil {
		return err
	}
	fmt.Fprintf(out, "test message sent to %s\n", *to)
	return nil
}

func runServe(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	opts := connectionFlags(fs)
	addr := fs.String("addr", ":8080", "Listen address")
	refreshCron := fs.String("refresh-cron", commands.DefaultRefreshCron, `Navigation cache refresh schedule ("-" disables it)`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(*opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if err := module.Module.Bootstrap(ctx); err != nil {
		return err
	}
	unsubscribe := module.Module.Container().SubscribeCommands(3)
	defer unsubscribe()
	stopCron, err := scheduleCommands(ctx, module.Module.Container(), *refreshCron, newScheduler(module.Logger))
	if err != nil {
		return fmt.Errorf("schedule commands: %w", err)
	}
	defer stopCron()

	handler, err := module.Module.Handler()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	module.Logger.Info("http.listening", "addr", *addr)
	fmt.Fprintf(out, "listening on %s\n", *addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		module.Logger.Info("http.shutdown")
		return server.Shutdown(shutdownCtx)
	}
}
