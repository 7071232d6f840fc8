package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobPayrollRun = "payroll_run"

	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrRunNotFound = errors.New("job run not found")
	ErrStopped     = errors.New("job service stopped")
)

// Func does the work of one job. Its result is stored as the run's details.
type Func func(context.Context) (any, error)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Month       string          `json:"month,omitempty"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Service struct {
	store RunStore
	queue chan job
	now   func() time.Time

	mu      sync.Mutex
	stopped bool
}

type job struct {
	ID    string
	Type  string
	Month string
	Run   Func
}

func New(store RunStore, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 128
	}
	return &Service{
		store: store,
		queue: make(chan job, queueSize),
		now:   time.Now,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue records a queued run and hands it to the worker. The run is marked
// failed when the queue has no room.
func (s *Service) Enqueue(ctx context.Context, jobType, month string, run Func) (Run, error) {
	record := Run{
		ID:        uuid.NewString(),
		JobType:   jobType,
		Month:     month,
		Status:    StatusQueued,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateRun(ctx, record); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.finish(ctx, record.ID, nil, ErrStopped)
		return Run{}, ErrStopped
	}
	select {
	case s.queue <- job{ID: record.ID, Type: jobType, Month: month, Run: run}:
		return record, nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "month", month, "runId", record.ID)
		s.finish(ctx, record.ID, nil, ErrQueueFull)
		return Run{}, ErrQueueFull
	}
}

// RunNow executes a job synchronously, still recording it in job_runs.
func (s *Service) RunNow(ctx context.Context, jobType, month string, run Func) (any, error) {
	record := Run{
		ID:        uuid.NewString(),
		JobType:   jobType,
		Month:     month,
		Status:    StatusQueued,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateRun(ctx, record); err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
		record.ID = ""
	}
	return s.runJob(ctx, job{ID: record.ID, Type: jobType, Month: month, Run: run})
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListRuns(ctx, limit)
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.store.GetRun(ctx, id)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.drain(ctx)
			return
		case j := <-s.queue:
			if ctx.Err() != nil {
				s.finish(ctx, j.ID, nil, ErrStopped)
				continue
			}
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "month", j.Month, "runId", j.ID, "err", err)
			}
		}
	}
}

// drain fails every run still waiting in the queue so none is left queued
// after shutdown.
func (s *Service) drain(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	for {
		select {
		case j := <-s.queue:
			slog.Warn("job abandoned on shutdown", "jobType", j.Type, "month", j.Month, "runId", j.ID)
			s.finish(ctx, j.ID, nil, ErrStopped)
		default:
			return
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (details any, err error) {
	if j.ID != "" {
		if updErr := s.store.MarkRunning(ctx, j.ID, s.now().UTC()); updErr != nil {
			slog.Warn("job run update failed", "runId", j.ID, "err", updErr)
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
		s.finish(ctx, j.ID, details, err)
	}()

	details, err = j.Run(ctx)
	return details, err
}

func (s *Service) finish(ctx context.Context, id string, details any, runErr error) {
	if id == "" {
		return
	}
	status := StatusCompleted
	errMsg := ""
	if runErr != nil {
		status = StatusFailed
		errMsg = runErr.Error()
	}
	detailsJSON := []byte("{}")
	if details != nil {
		encoded, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			slog.Warn("job details marshal failed", "runId", id, "err", marshalErr)
		} else {
			detailsJSON = encoded
		}
	}
	// The request context may already be gone for queued runs.
	finishCtx := context.WithoutCancel(ctx)
	if err := s.store.FinishRun(finishCtx, id, status, detailsJSON, errMsg, s.now().UTC()); err != nil {
		slog.Warn("job run update failed", "runId", id, "err", err)
	}
}
