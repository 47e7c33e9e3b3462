package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one forward schema step. Versions apply in ascending order
// and are recorded in hookbridge_migrations.
type migration struct {
	Name    string
	Version string
	Up      string
}

var migrations = []migration{
	{
		Name:    "create_hookbridge_settings",
		Version: "20240101000001",
		Up: `
CREATE TABLE IF NOT EXISTS hookbridge_settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`,
	},
	{
		Name:    "create_hookbridge_delivery_log",
		Version: "20240101000002",
		Up: `
CREATE TABLE IF NOT EXISTS hookbridge_delivery_log (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT NOT NULL,
    type       TEXT NOT NULL,
    trigger    TEXT NOT NULL DEFAULT '',
    success    INTEGER NOT NULL DEFAULT 0,
    entry      TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_hookbridge_delivery_log_type ON hookbridge_delivery_log (type);`,
	},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS hookbridge_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);`

// migrate applies every migration not yet recorded, each in its own
// transaction.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	for _, m := range migrations {
		var n int
		err := db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM hookbridge_migrations WHERE version = ?`, m.Version,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("check %s: %w", m.Name, err)
		}
		if n > 0 {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO hookbridge_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
