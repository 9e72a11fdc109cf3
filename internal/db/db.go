// Package db provides PostgreSQL access for report run history.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id                UUID PRIMARY KEY,
	session_id        TEXT NOT NULL,
	status            TEXT NOT NULL,
	model             TEXT NOT NULL DEFAULT '',
	resume_pages      INTEGER NOT NULL DEFAULT 0,
	job_pages         INTEGER NOT NULL DEFAULT 0,
	extraction_failed BOOLEAN NOT NULL DEFAULT FALSE,
	report_bytes      INTEGER NOT NULL DEFAULT 0,
	duration_ms       BIGINT NOT NULL DEFAULT 0,
	error_message     TEXT,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS report_runs_session_idx ON report_runs (session_id, created_at DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run history table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// RecordRun inserts a run. A zero ID is replaced with a fresh one.
func (db *DB) RecordRun(ctx context.Context, run Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO report_runs (id, session_id, status, model, resume_pages, job_pages,
		                          extraction_failed, report_bytes, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.SessionID, run.Status, run.Model, run.ResumePages, run.JobPages,
		run.ExtractionFailed, run.ReportBytes, run.DurationMs, run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, session_id, status, model, resume_pages, job_pages,
		        extraction_failed, report_bytes, duration_ms, error_message, created_at
		 FROM report_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SessionID, &run.Status, &run.Model, &run.ResumePages, &run.JobPages,
		&run.ExtractionFailed, &run.ReportBytes, &run.DurationMs, &run.ErrorMessage, &run.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListSessionRuns returns a session's runs, newest first
func (db *DB) ListSessionRuns(ctx context.Context, sessionID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, status, model, resume_pages, job_pages,
		        extraction_failed, report_bytes, duration_ms, error_message, created_at
		 FROM report_runs WHERE session_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.SessionID, &run.Status, &run.Model, &run.ResumePages, &run.JobPages,
			&run.ExtractionFailed, &run.ReportBytes, &run.DurationMs, &run.ErrorMessage, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
