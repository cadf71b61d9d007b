package bootstrap

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	portal "github.com/goliatone/go-portal"
	"github.com/goliatone/go-portal/internal/di"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Environment variables read when the matching flag is empty.
const (
	EnvDriver   = "PORTAL_DB_DRIVER"
	EnvDSN      = "PORTAL_DB_DSN"
	EnvAppKey   = "PORTAL_APP_KEY"
	EnvLogLevel = "PORTAL_LOG_LEVEL"
	EnvI18N     = "PORTAL_I18N_BUNDLE"
)

// Drivers accepted by OpenDB.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options captures the connection and runtime settings of a CLI run.
type Options struct {
	Driver         string
	DSN            string
	Locale         string
	AppKey         string
	LogLevel       string
	I18NBundle     string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the portal module with its database handle.
type Module struct {
	Module *portal.Module
	DB     *bun.DB
	Logger interfaces.Logger
}

// Close releases the database handle.
func (m *Module) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}

// FromEnv fills empty options from the PORTAL_* environment variables.
func FromEnv(opts Options) Options {
	opts.Driver = firstNonEmpty(opts.Driver, os.Getenv(EnvDriver), DriverSQLite)
	opts.DSN = firstNonEmpty(opts.DSN, os.Getenv(EnvDSN))
	opts.AppKey = firstNonEmpty(opts.AppKey, os.Getenv(EnvAppKey))
	opts.LogLevel = firstNonEmpty(opts.LogLevel, os.Getenv(EnvLogLevel))
	opts.I18NBundle = firstNonEmpty(opts.I18NBundle, os.Getenv(EnvI18N))
	return opts
}

// OpenDB opens a bun handle for driver. Sqlite handles are limited to one
// connection so in-memory databases survive between queries.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3", "":
		if dsn == "" {
			dsn = "file:portal.db?cache=shared&_fk=1"
		}
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	case DriverPostgres, "pg":
		if dsn == "" {
			return nil, fmt.Errorf("bootstrap: postgres needs a dsn (set -dsn or %s)", EnvDSN)
		}
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown driver %q", driver)
	}
}

// BuildModule opens the database and constructs a portal module over it.
func BuildModule(opts Options) (*Module, error) {
	opts = FromEnv(opts)

	db, err := OpenDB(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	cfg := portal.DefaultConfig()
	if locale := strings.TrimSpace(opts.Locale); locale != "" {
		cfg.DefaultLocale = locale
	}
	cfg.Security.AppKey = opts.AppKey
	cfg.I18N.BundlePath = strings.TrimSpace(opts.I18NBundle)
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
	}

	diOpts := []di.Option{di.WithBunDB(db)}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := portal.New(cfg, diOpts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialise portal module: %w", err)
	}

	return &Module{
		Module: module,
		DB:     db,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "portal.cli"),
	}, nil
}

// SplitRoles parses a comma separated role list.
func SplitRoles(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	roles := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			roles = append(roles, trimmed)
		}
	}
	return roles
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
