package portal

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files. Postgres migrations
// sit under data/sql/migrations, sqlite variants under its sqlite directory.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}
