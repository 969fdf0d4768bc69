// Package migrations embeds the per-driver schema migration files so
// binaries can self-migrate without shipping loose .sql files.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
