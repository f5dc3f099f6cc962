package testutil

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"winsbygroup.com/prodreg/internal/sqlite"
)

func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return NewTestDBAt(t, filepath.Join(t.TempDir(), "test.db"))
}

func NewTestDBAt(t *testing.T, dbPath string) *sqlx.DB {
	t.Helper()

	// DELETE mode for tests; sqlite.Open runs the migrations
	db, err := sqlite.Open(dbPath, "DELETE")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Exec runs a setup statement and fails the test on error.
func Exec(t *testing.T, db *sqlx.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
