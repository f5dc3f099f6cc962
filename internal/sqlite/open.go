package sqlite

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// BusyTimeoutMS is how long a connection waits for the write lock before
// failing with SQLITE_BUSY. Concurrent claims of one serial queue on it.
const BusyTimeoutMS = 5000

// DSN returns the go-sqlite3 connection string for path with the busy timeout
// applied to every pooled connection.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", path, BusyTimeoutMS)
}

// Open connects to the database file, sets the journal mode and runs all
// migrations. journalMode is "WAL" for the server and "DELETE" for tests.
func Open(path, journalMode string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", DSN(path))
	if err != nil {
		return nil, err
	}

	// journal_mode is persistent, but setting it on each open is harmless
	if _, err := db.Exec(`PRAGMA journal_mode=` + journalMode + `;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if err := RunMigrations(db.DB); err != nil {
		db.Close()
		if errors.Is(err, ErrInvalidDatabase) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}

	return db, nil
}
