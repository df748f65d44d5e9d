// Package sqlite persists the draw ledger in a local SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Store is a SQLite-backed implementation of the ledger KV port.
type Store struct {
	conn *sql.DB
}

// Open creates the database file if needed and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect ledger db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}
	return &Store{conn: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.conn.Close() }

// Get returns the value under key. Read failures report absence: the ledger
// falls back to defaults rather than failing a draw over a bad local file.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		// sql.ErrNoRows and a locked/corrupt db both read as absent
		return "", false
	}
	return value, true
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	_, err := s.conn.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the key if present.
func (s *Store) Remove(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
