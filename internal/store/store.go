// Package store keeps an anonymized log of research results in SQLite.
// Rows carry what was checked and what was found, never who asked.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database connection
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the query log at dbPath and migrates it
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Serialize writers; the webhook logs from many goroutines.
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Ping reports whether the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}
