// Package storage persists card memory states, review logs, and the source
// registry in a single SQLite file.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

var (
	// ErrNotFound is returned by point lookups for an identity that was
	// never registered. Callers should Ensure first.
	ErrNotFound = errors.New("storage: card not found")

	// ErrUnavailable wraps failures to reach the underlying database.
	ErrUnavailable = errors.New("storage: database unavailable")
)

// DB wraps the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema exists.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// A single connection sidesteps SQLITE_BUSY between the pool's
	// connections; reviews are serialized per card anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
