package engine

import (
	"database/sql"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./gallery.db". For in-memory
// databases, pass ":memory:"; each pooled connection then gets its own
// database, so callers should limit the pool to one connection.
func Open(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// OpenMemory opens an in-memory database restricted to a single connection.
func OpenMemory() (*sql.DB, error) {
	db, err := Open(":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
