package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                  TEXT PRIMARY KEY,
	pipeline            TEXT NOT NULL,
	input               TEXT NOT NULL,
	output              TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	row_count           INTEGER NOT NULL DEFAULT 0,
	kept                INTEGER NOT NULL DEFAULT 0,
	removed             INTEGER NOT NULL DEFAULT 0,
	skipped             INTEGER NOT NULL DEFAULT 0,
	knit                INTEGER NOT NULL DEFAULT 0,
	jumper              INTEGER NOT NULL DEFAULT 0,
	knit_with_jumper    INTEGER NOT NULL DEFAULT 0,
	knit_without_jumper INTEGER NOT NULL DEFAULT 0,
	error_code          TEXT NOT NULL DEFAULT '',
	error               TEXT NOT NULL DEFAULT '',
	started_at_ms       INTEGER NOT NULL,
	duration_ms         INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS pipeline_runs_started_at_idx ON pipeline_runs (started_at_ms DESC);`

// SQLiteStore keeps runs in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database file at path (":memory:" for a private
// in-memory database) and creates the runs table if needed.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: SQLite serializes writers, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create pipeline_runs: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Record inserts run.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (
			id, pipeline, input, output, status,
			row_count, kept, removed, skipped,
			knit, jumper, knit_with_jumper, knit_without_jumper,
			error_code, error, started_at_ms, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Pipeline, run.Input, run.Output, string(run.Status),
		run.Rows, run.Kept, run.Removed, run.Skipped,
		run.Knit, run.Jumper, run.KnitWithJumper, run.KnitWithoutJumper,
		run.ErrorCode, run.Error, run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pipeline, input, output, status,
			row_count, kept, removed, skipped,
			knit, jumper, knit_with_jumper, knit_without_jumper,
			error_code, error, started_at_ms, duration_ms
		FROM pipeline_runs
		ORDER BY started_at_ms DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                   Run
			id, status            string
			startedMs, durationMs int64
		)
		if err := rows.Scan(
			&id, &run.Pipeline, &run.Input, &run.Output, &status,
			&run.Rows, &run.Kept, &run.Removed, &run.Skipped,
			&run.Knit, &run.Jumper, &run.KnitWithJumper, &run.KnitWithoutJumper,
			&run.ErrorCode, &run.Error, &startedMs, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		run.Status = Status(status)
		run.StartedAt = time.UnixMilli(startedMs).UTC()
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return runs, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
