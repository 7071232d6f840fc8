package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"outlethr/internal/platform/querier"
)

type RunStore interface {
	CreateRun(ctx context.Context, run Run) error
	MarkRunning(ctx context.Context, id string, at time.Time) error
	FinishRun(ctx context.Context, id, status string, details []byte, errMsg string, at time.Time) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, id string) (Run, error)
}

// Store persists runs in the job_runs table.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRun(ctx context.Context, run Run) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, month, status, created_at)
    VALUES ($1,$2,$3,$4,$5)
  `, run.ID, run.JobType, run.Month, run.Status, run.CreatedAt)
	return err
}

func (s *Store) MarkRunning(ctx context.Context, id string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, started_at = $2
    WHERE id = $3
  `, StatusRunning, at, id)
	return err
}

func (s *Store) FinishRun(ctx context.Context, id, status string, details []byte, errMsg string, at time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, error = $3, completed_at = $4
    WHERE id = $5
  `, status, details, errMsg, at, id)
	return err
}

const runColumns = `id::text, job_type, month, status, details_json, error, created_at, started_at, completed_at`

func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+runColumns+`
    FROM job_runs
    ORDER BY created_at DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.DB.QueryRow(ctx, `
    SELECT `+runColumns+`
    FROM job_runs
    WHERE id::text = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func scanRun(row pgx.Row) (Run, error) {
	var run Run
	var details []byte
	if err := row.Scan(&run.ID, &run.JobType, &run.Month, &run.Status, &details, &run.Error,
		&run.CreatedAt, &run.StartedAt, &run.CompletedAt); err != nil {
		return Run{}, err
	}
	if len(details) > 0 {
		run.Details = details
	}
	return run, nil
}
