package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	embedded "github.com/solatis/sieve/migrations"
)

// MigrationStatus reports the state of a single migration.
type MigrationStatus struct {
	ID        string
	Checksum  string
	Applied   bool
	AppliedAt *time.Time
}

type migrationFile struct {
	ID       string
	SQL      string
	Checksum string
}

// MigrateUp applies all pending embedded migrations for the connected
// driver. Already-applied migrations are checksum-validated first so a
// modified migration file fails loudly instead of silently diverging.
func MigrateUp(conn *sqlx.DB) error {
	files, err := migrationFiles(conn.DriverName())
	if err != nil {
		return err
	}

	if err := createMigrationsTable(conn); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(conn)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}

	for _, m := range files {
		if checksum, ok := applied[m.ID]; ok {
			if checksum != m.Checksum {
				return fmt.Errorf("migration %s was modified after being applied", m.ID)
			}
			continue
		}

		// Execution and recording share one transaction so a failed
		// recording never leaves a half-applied migration behind.
		tx, err := conn.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		record := tx.Rebind(`INSERT INTO migrations (migration_id, checksum, applied_at) VALUES (?, ?, ?)`)
		if _, err := tx.Exec(record, m.ID, m.Checksum, time.Now().UTC()); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}

// MigrateStatus returns the state of every known migration, applied or
// pending, in file order.
func MigrateStatus(conn *sqlx.DB) ([]MigrationStatus, error) {
	files, err := migrationFiles(conn.DriverName())
	if err != nil {
		return nil, err
	}

	if err := createMigrationsTable(conn); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	type row struct {
		MigrationID string    `db:"migration_id"`
		Checksum    string    `db:"checksum"`
		AppliedAt   time.Time `db:"applied_at"`
	}
	var rows []row
	if err := conn.Select(&rows, `SELECT migration_id, checksum, applied_at FROM migrations`); err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	appliedAt := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		appliedAt[r.MigrationID] = r.AppliedAt
	}

	out := make([]MigrationStatus, 0, len(files))
	for _, m := range files {
		status := MigrationStatus{ID: m.ID, Checksum: m.Checksum}
		if at, ok := appliedAt[m.ID]; ok {
			status.Applied = true
			at := at
			status.AppliedAt = &at
		}
		out = append(out, status)
	}
	return out, nil
}

// migrationFiles loads and orders the embedded migrations for a driver.
func migrationFiles(driver string) ([]migrationFile, error) {
	var migrationsFS embed.FS
	var dir string
	switch driver {
	case "sqlite3":
		migrationsFS = embedded.SqliteMigrations
		dir = "sqlite"
	case "postgres":
		migrationsFS = embedded.PostgresMigrations
		dir = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	var files []migrationFile
	err := fs.WalkDir(migrationsFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, migrationFile{
			ID:       filepath.Base(path),
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	// Lexicographic order; files carry a numeric prefix.
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

func createMigrationsTable(conn *sqlx.DB) error {
	_, err := conn.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		migration_id TEXT PRIMARY KEY,
		checksum TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`)
	return err
}

// appliedMigrations returns the checksum of every applied migration.
func appliedMigrations(conn *sqlx.DB) (map[string]string, error) {
	type row struct {
		MigrationID string `db:"migration_id"`
		Checksum    string `db:"checksum"`
	}
	var rows []row
	if err := conn.Select(&rows, `SELECT migration_id, checksum FROM migrations`); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.MigrationID] = r.Checksum
	}
	return out, nil
}
