package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"

	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/pkg/interfaces"
)

// Dialect selects the migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Root is the directory holding the postgres migrations. SQLite variants
// live in its sqlite subdirectory.
const Root = "data/sql/migrations"

const (
	tableName      = "portal_migrations"
	locksTableName = "portal_migration_locks"
)

var ErrUnknownDialect = errors.New("migrations: unsupported dialect")

// DialectOf maps the bun dialect of db to a migration set.
func DialectOf(db *bun.DB) (Dialect, error) {
	switch db.Dialect().Name() {
	case dialect.PG:
		return DialectPostgres, nil
	case dialect.SQLite:
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownDialect, db.Dialect().Name())
	}
}

// Load collects the migrations of d from fsys, which must contain Root.
func Load(fsys fs.FS, d Dialect) (*migrate.Migrations, error) {
	dir := Root
	switch d {
	case DialectPostgres:
	case DialectSQLite:
		dir = path.Join(Root, "sqlite")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, d)
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	collection := migrate.NewMigrations()
	if err := collection.Discover(filesOnly{sub}); err != nil {
		return nil, fmt.Errorf("migrations: discover %s: %w", dir, err)
	}
	return collection, nil
}

// filesOnly hides subdirectories so the postgres set does not pick up the
// sqlite variants.
type filesOnly struct {
	fs.FS
}

func (f filesOnly) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.FS, name)
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, entry := range entries {
		if !entry.IsDir() {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Status is the state of one migration.
type Status struct {
	Name       string    `json:"name"`
	Comment    string    `json:"comment,omitempty"`
	Applied    bool      `json:"applied"`
	MigratedAt time.Time `json:"migrated_at,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner applies the embedded SQL migrations with bun's migrator.
type Runner struct {
	migrator *migrate.Migrator
	logger   interfaces.Logger
}

// NewRunner prepares the migration set matching the dialect of db.
func NewRunner(db *bun.DB, fsys fs.FS, opts ...Option) (*Runner, error) {
	d, err := DialectOf(db)
	if err != nil {
		return nil, err
	}
	collection, err := Load(fsys, d)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		migrator: migrate.NewMigrator(db, collection,
			migrate.WithTableName(tableName),
			migrate.WithLocksTableName(locksTableName),
		),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Up applies pending migrations and returns their names.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer func() {
		if err := r.migrator.Unlock(ctx); err != nil {
			r.logger.Warn("migrations.unlock.failed", "error", err)
		}
	}()

	group, err := r.migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: migrate: %w", err)
	}
	if group.IsZero() {
		r.logger.Info("migrations.up.current")
		return nil, nil
	}
	names := migrationNames(group.Migrations)
	r.logger.Info("migrations.up.applied", "group", group.ID, "migrations", names)
	return names, nil
}

// Down rolls back the last applied group.
func (r *Runner) Down(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer func() {
		if err := r.migrator.Unlock(ctx); err != nil {
			r.logger.Warn("migrations.unlock.failed", "error", err)
		}
	}()

	group, err := r.migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: rollback: %w", err)
	}
	if group.IsZero() {
		return nil, nil
	}
	names := migrationNames(group.Migrations)
	r.logger.Info("migrations.down.rolled_back", "group", group.ID, "migrations", names)
	return names, nil
}

// Status lists every known migration in apply order.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	ms, err := r.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(ms))
	for _, m := range ms {
		out = append(out, Status{
			Name:       m.Name,
			Comment:    m.Comment,
			Applied:    m.GroupID > 0,
			MigratedAt: m.MigratedAt,
		})
	}
	return out, nil
}

func migrationNames(ms migrate.MigrationSlice) []string {
	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name)
	}
	return names
}
