package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

type migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sql.Tx) error
}

// migrations is append-only; versions increase by one
var migrations = []migration{
	{
		Version:     1,
		Description: "queries table",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS queries (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    platform TEXT NOT NULL,
    video_url TEXT NOT NULL,
    video_title TEXT,
    video_creator TEXT,
    claim_extracted TEXT,
    confidence TEXT NOT NULL,
    explanation TEXT,
    sources TEXT NOT NULL DEFAULT '[]',
    channel_is_suspect INTEGER NOT NULL DEFAULT 0,
    fact_checks_found INTEGER NOT NULL DEFAULT 0,
    search_results_found INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "platform and confidence indexes",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_queries_platform ON queries(platform);
CREATE INDEX IF NOT EXISTS idx_queries_confidence ON queries(confidence);
`)
			return err
		},
	},
}

func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

func schemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than PRAGMA user_version
func migrate(ctx context.Context, conn *sql.DB) error {
	current, err := schemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		slog.Debug("store: applying migration", slog.Int("version", m.Version), slog.String("description", m.Description))

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(ctx, tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// modernc/sqlite does not honour user_version inside a transaction.
		// The DDL is idempotent, so a crash here only re-runs it.
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("set version %d: %w", m.Version, err)
		}
	}

	return nil
}
