package facts

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the PRAGMA user_version the store migrates to.
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
  id TEXT PRIMARY KEY,
  project TEXT NOT NULL,
  started_at_utc TEXT NOT NULL,
  file_count INTEGER NOT NULL DEFAULT 0,
  diagnostic_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_project_started ON runs(project, started_at_utc);

CREATE TABLE IF NOT EXISTS facts (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL,
  symbol_id INTEGER NOT NULL,
  target TEXT NOT NULL,
  partial INTEGER NOT NULL DEFAULT 0,
  position_kind TEXT NOT NULL,
  position TEXT NOT NULL DEFAULT '[]',
  PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_facts_target ON facts(run_id, target);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE facts ADD COLUMN file_path TEXT NOT NULL DEFAULT '';
ALTER TABLE facts ADD COLUMN line_number INTEGER NOT NULL DEFAULT 0;
ALTER TABLE facts ADD COLUMN column_number INTEGER NOT NULL DEFAULT 0;
ALTER TABLE runs ADD COLUMN fact_count INTEGER NOT NULL DEFAULT 0;
`,
	},
}

// EnsureSchema applies every migration newer than the database's
// user_version, each in its own transaction.
func EnsureSchema(db *sql.DB) error {
	var current int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&current); err != nil {
		return fmt.Errorf("read user_version: %w", err)
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
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, m.version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
