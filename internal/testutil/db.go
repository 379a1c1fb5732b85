// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/film-review/internal/database"
)

// OpenDB returns a migrated SQLite database in a per-test temp directory.
// The handle is closed when the test ends.
func OpenDB(t testing.TB) (*sql.DB, database.Dialect) {
	t.Helper()
	opts := database.Options{Driver: string(database.SQLite), Path: filepath.Join(t.TempDir(), "films.db")}
	if err := database.Migrate(opts); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, dialect, err := database.Open(opts)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, dialect
}

// SeedUser inserts a user row directly and returns its id.  The hash is a
// placeholder; tests that log in should register through the user store.
func SeedUser(t testing.TB, db *sql.DB, name, email string) uint64 {
	t.Helper()
	res, err := db.ExecContext(context.Background(),
		"INSERT INTO users (name, email, hash) VALUES (?, ?, ?)", name, email, "x")
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seed user id: %v", err)
	}
	return uint64(id)
}
