// Package store provides SQLite persistence for users and tasks.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store owns the database connection. Use Tasks and Users for the typed
// repositories.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tasks returns the task repository backed by this store.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{db: s.db}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserStore {
	return &UserStore{db: s.db}
}
