package store

import (
	"context"
)

// initSchema creates all required tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stage_results (
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL,
		output TEXT,
		error TEXT,
		elapsed_ms INTEGER NOT NULL,
		retry_count INTEGER NOT NULL,
		PRIMARY KEY (run_id, stage),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_stage_results_run_position
		ON stage_results(run_id, position);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
