package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

type ScraperRun struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	JobsFound    int        `json:"jobsFound"`
	JobsNew      int        `json:"jobsNew"`
	JobsUpdated  int        `json:"jobsUpdated"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	DurationMs   int64      `json:"durationMs"`
}

type RunUpdate struct {
	Status       string
	JobsFound    int
	JobsNew      int
	JobsUpdated  int
	ErrorMessage string
	DurationMs   int64
}

// CreateScraperRun records the start of one adapter invocation and returns
// the run id.
func (s *Store) CreateScraperRun(ctx context.Context, source string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO scraper_runs (id, source, status, started_at)
VALUES (?, ?, ?, ?);`,
		id, source, RunStatusRunning, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("create scraper run: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateScraperRun(ctx context.Context, id string, upd RunUpdate) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE scraper_runs
SET status = ?, jobs_found = ?, jobs_new = ?, jobs_updated = ?,
    error_message = ?, finished_at = ?, duration_ms = ?
WHERE id = ?;`,
		upd.Status, upd.JobsFound, upd.JobsNew, upd.JobsUpdated,
		upd.ErrorMessage, time.Now().UTC().Format(time.RFC3339), upd.DurationMs, id)
	if err != nil {
		return fmt.Errorf("update scraper run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ScraperRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, status, jobs_found, jobs_new, jobs_updated, error_message,
       started_at, finished_at, duration_ms
FROM scraper_runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScraperRun
	for rows.Next() {
		var r ScraperRun
		var started string
		var finished sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &r.Status, &r.JobsFound, &r.JobsNew,
			&r.JobsUpdated, &r.ErrorMessage, &started, &finished, &r.DurationMs); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if finished.Valid && finished.String != "" {
			if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
				r.FinishedAt = &t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
