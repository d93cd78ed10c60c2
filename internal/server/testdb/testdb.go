// Package testdb opens throwaway SQLite stores with the schema applied, for
// tests that need a real SQL engine.
package testdb

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/iqube/internal/server/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// DSN returns a file-backed SQLite DSN inside the test's temp dir.
func DSN(t testing.TB) string {
	t.Helper()
	return "file:" + filepath.Join(t.TempDir(), "iqube.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open returns a migrated SQLite database closed on test cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", DSN(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dir, err := fs.Sub(migrations.Migrations, "sqlite")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, dir)
	if err != nil {
		t.Fatalf("goose provider: %v", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	return db
}
