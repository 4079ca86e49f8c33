package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id                  UUID PRIMARY KEY,
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
	started_at          TIMESTAMPTZ NOT NULL,
	duration_ms         BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS pipeline_runs_started_at_idx ON pipeline_runs (started_at DESC);`

// PostgresStore keeps runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to url and creates the runs table if needed.
func OpenPostgres(ctx context.Context, url string, maxConns, minConns int) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	if minConns > 0 {
		poolConfig.MinConns = int32(minConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create pipeline_runs: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Record inserts run.
func (s *PostgresStore) Record(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (
			id, pipeline, input, output, status,
			row_count, kept, removed, skipped,
			knit, jumper, knit_with_jumper, knit_without_jumper,
			error_code, error, started_at, duration_ms
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		run.ID.String(), run.Pipeline, run.Input, run.Output, string(run.Status),
		run.Rows, run.Kept, run.Removed, run.Skipped,
		run.Knit, run.Jumper, run.KnitWithJumper, run.KnitWithoutJumper,
		run.ErrorCode, run.Error, run.StartedAt, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, pipeline, input, output, status,
			row_count, kept, removed, skipped,
			knit, jumper, knit_with_jumper, knit_without_jumper,
			error_code, error, started_at, duration_ms
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			id, status string
			durationMs int64
		)
		if err := rows.Scan(
			&id, &run.Pipeline, &run.Input, &run.Output, &status,
			&run.Rows, &run.Kept, &run.Removed, &run.Skipped,
			&run.Knit, &run.Jumper, &run.KnitWithJumper, &run.KnitWithoutJumper,
			&run.ErrorCode, &run.Error, &run.StartedAt, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}
		run.Status = Status(status)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return runs, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
