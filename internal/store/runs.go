package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/researchpilot/researchpilot/internal/pipeline"
)

// SaveRun saves or updates a run and its stage outcomes.
// Uses ON CONFLICT to make saves idempotent.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *pipeline.Run) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, status, started_at, elapsed_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			elapsed_ms = excluded.elapsed_ms
	`, run.ID, string(run.Status), run.StartedAt.UTC(), run.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to upsert run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM stage_results WHERE run_id = ?`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to delete old stage results: %w", err)
	}

	for pos, stage := range run.Results.Stages() {
		out, _ := run.Results.Get(stage)

		// Outputs are heterogeneous per stage; store as JSON
		var outputJSON []byte
		if out.Output != nil {
			outputJSON, err = json.Marshal(out.Output)
			if err != nil {
				return fmt.Errorf("failed to marshal output for stage %s: %w", stage, err)
			}
		}

		errorStr := ""
		if out.Err != nil {
			errorStr = out.Err.Error()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO stage_results (run_id, stage, position, status, output, error, elapsed_ms, retry_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, stage, pos, out.Status.String(), string(outputJSON), errorStr, out.Elapsed.Milliseconds(), out.RetryCount)
		if err != nil {
			return fmt.Errorf("failed to insert stage result %s: %w", stage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID, including its stage outcomes in completion order.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	rec := &RunRecord{}
	var status string
	var elapsedMS int64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, status, started_at, elapsed_ms
		FROM runs
		WHERE id = ?
	`, runID).Scan(&rec.ID, &status, &rec.StartedAt, &elapsedMS)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	rec.Status = pipeline.RunStatus(status)
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	stages, err := s.loadStages(ctx, runID)
	if err != nil {
		return nil, err
	}
	rec.Stages = stages

	return rec, nil
}

// ListRuns returns run summaries, newest first, without stage outcomes.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, started_at, elapsed_ms
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		rec := &RunRecord{}
		var status string
		var elapsedMS int64

		if err := rows.Scan(&rec.ID, &status, &rec.StartedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec.Status = pipeline.RunStatus(status)
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) loadStages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage, status, output, error, elapsed_ms, retry_count
		FROM stage_results
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage results: %w", err)
	}
	defer rows.Close()

	var stages []StageRecord
	for rows.Next() {
		var rec StageRecord
		var output string
		var elapsedMS int64

		if err := rows.Scan(&rec.Stage, &rec.Status, &output, &rec.Error, &elapsedMS, &rec.RetryCount); err != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", err)
		}
		if output != "" {
			rec.Output = json.RawMessage(output)
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		stages = append(stages, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage results: %w", err)
	}

	return stages, nil
}
