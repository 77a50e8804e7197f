package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// SQLiteSlot stores slot values in an SQLite table.
// Native builds and rosterctl use it in place of browser localStorage.
type SQLiteSlot struct {
	mu sync.RWMutex
	db *sql.DB
}

const slotSchema = `
CREATE TABLE IF NOT EXISTS slots (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// NewSQLiteSlot creates an in-memory slot store.
func NewSQLiteSlot() (*SQLiteSlot, error) {
	return NewSQLiteSlotWithDSN(":memory:")
}

// NewSQLiteSlotWithDSN opens a slot store at dsn.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteSlotWithDSN(dsn string) (*SQLiteSlot, error) {
	db, err := openSQLite(dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(slotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteSlot{db: db}, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database is private to its connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Get returns the value stored under key.
func (s *SQLiteSlot) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites the value under key.
func (s *SQLiteSlot) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO slots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns the last write time of key in Unix milliseconds, or 0.
func (s *SQLiteSlot) UpdatedAt(key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ts int64
	err := s.db.QueryRow(`SELECT updated_at FROM slots WHERE key = ?`, key).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return ts, err
}

// Close closes the database connection.
func (s *SQLiteSlot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
