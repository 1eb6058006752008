// Package sqlite provides the SQLite-backed relay stats store.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Storage implements storage.Storage using SQLite.
type Storage struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// New opens (or creates) the database at dbPath and ensures the schema.
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := NewWithDB(db)
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// NewWithDB wraps an already opened database without touching the schema.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS relay_daily (
		date                   TEXT NOT NULL,
		endpoint               TEXT NOT NULL,
		model                  TEXT NOT NULL DEFAULT '',
		request_count          INTEGER DEFAULT 0,
		error_count            INTEGER DEFAULT 0,
		prompt_tokens_estimate INTEGER DEFAULT 0,
		duration_ms            INTEGER DEFAULT 0,
		PRIMARY KEY (date, endpoint, model)
	);

	CREATE INDEX IF NOT EXISTS idx_relay_daily_date ON relay_daily(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
