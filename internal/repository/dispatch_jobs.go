package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rafaelqm/imovia/constants"
	"github.com/rafaelqm/imovia/internal/dispatch"
)

// JobSummary is the persisted outcome of one campaign dispatch: aggregate
// counts only, never individual recipient results.
type JobSummary struct {
	ID         string
	Message    string
	Status     constants.DispatchStatus
	Attempted  int
	Succeeded  int
	StartedAt  time.Time
	FinishedAt time.Time
}

type DispatchJobRepository struct {
	db *sql.DB
}

func NewDispatchJobRepository(db *sql.DB) *DispatchJobRepository {
	return &DispatchJobRepository{db: db}
}

// RecordSummary persists the terminal state of a finished job.
func (r *DispatchJobRepository) RecordSummary(ctx context.Context, job *dispatch.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dispatch_jobs (id, message, status, attempted, succeeded, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			attempted = excluded.attempted,
			succeeded = excluded.succeeded,
			finished_at = excluded.finished_at`,
		job.ID, job.Message, string(job.Status), job.Attempted, job.Succeeded,
		job.StartedAt.UTC(), job.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record dispatch job %s: %w", job.ID, err)
	}
	return nil
}

// ListSummaries returns recorded campaigns, most recent first.
func (r *DispatchJobRepository) ListSummaries(ctx context.Context) ([]JobSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message, status, attempted, succeeded, started_at, finished_at
		FROM dispatch_jobs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list dispatch jobs: %w", err)
	}
	defer rows.Close()

	var out []JobSummary
	for rows.Next() {
		var s JobSummary
		var status string
		if err := rows.Scan(&s.ID, &s.Message, &status, &s.Attempted, &s.Succeeded, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch job: %w", err)
		}
		s.Status = constants.DispatchStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}
