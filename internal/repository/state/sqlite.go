package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Registers the pure-Go "sqlite" driver.
)

// SQLiteKV stores keys in a single SQLite table.
// One connection is kept open so per-connection pragmas hold and writes are
// serialized inside the process.
type SQLiteKV struct {
	// db is the underlying database handle.
	db *sql.DB
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("state: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("state: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("state: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("state: create kv: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("state: get %s: %w", key, err)
	}

	return value, nil
}

// Put upserts value under key. With synchronous=FULL the commit is on disk
// when Exec returns.
func (s *SQLiteKV) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("state: put %s: %w", key, err)
	}

	return nil
}

// Close checkpoints the WAL and closes the database.
func (s *SQLiteKV) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")

	return s.db.Close()
}
