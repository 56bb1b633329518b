package history

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the newest migration this build knows how to apply.
const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  ts_utc TEXT NOT NULL,
  files INTEGER NOT NULL,
  matches INTEGER NOT NULL,
  failures INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts_utc);
CREATE TABLE IF NOT EXISTS matches (
  run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
  path TEXT NOT NULL,
  line INTEGER NOT NULL,
  "column" INTEGER NOT NULL,
  kind TEXT NOT NULL,
  component TEXT NOT NULL DEFAULT '',
  local_name TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE runs ADD COLUMN project_key TEXT NOT NULL DEFAULT 'default';
CREATE INDEX IF NOT EXISTS idx_runs_project_key ON runs(project_key);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
