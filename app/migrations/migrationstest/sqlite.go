// Package migrationstest opens migrated throwaway databases for tests.
package migrationstest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/hrbot/app/migrations"
	"github.com/m3rciful/hrbot/core/database"
)

// OpenSQLite creates a SQLite file in t.TempDir, applies every migration and
// returns the connection. The connection is closed on test cleanup.
func OpenSQLite(t testing.TB) *sqlx.DB {
	t.Helper()
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize db config: %v", err)
	}
	if err := database.RunMigrations(cfg, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
