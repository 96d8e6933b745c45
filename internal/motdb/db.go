// Package motdb persists tracker output to SQLite: one row per track with
// aggregate statistics, one row per observation for trail reconstruction,
// grouped under run records so multiple replay runs can share a database.
package motdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used for track persistence.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the SQLite database at path. Use ":memory:" for
// an ephemeral database in tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; the tracker pipeline is single-threaded
	// per instance so one connection is all we need, and it avoids
	// SQLITE_BUSY contention from the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	return &DB{DB: db}, nil
}
