package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gantry/gantry/internal/domain"
)

// JobRepository handles optimization job persistence.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job row.
func (r *JobRepository) Create(ctx context.Context, job *domain.OptimizationJob) error {
	result, err := marshalResult(job.Result)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, graph_id, user_id, backend, status, priority, result, failure, credit_cost, created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.GraphID, job.UserID, job.Backend, job.Status, job.Priority,
		result, job.Failure, job.CreditCost,
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		formatTimePtr(job.StartedAt), formatTimePtr(job.CompletedAt))
	return err
}

// Transition persists a job's mutable columns with a compare-and-set on
// status: the row is written only while its stored status still equals
// from. Returns false when another writer moved the job first, and an
// error for a move the status lattice forbids.
func (r *JobRepository) Transition(ctx context.Context, job *domain.OptimizationJob, from domain.JobStatus) (bool, error) {
	if !from.CanTransition(job.Status) {
		return false, fmt.Errorf("job %s: illegal status transition %s -> %s", job.ID, from, job.Status)
	}
	result, err := marshalResult(job.Result)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET backend = ?, status = ?, result = ?, failure = ?, started_at = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`, job.Backend, job.Status, result, job.Failure,
		formatTimePtr(job.StartedAt), formatTimePtr(job.CompletedAt), job.ID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Get loads a job by id. Returns sql.ErrNoRows when absent.
func (r *JobRepository) Get(ctx context.Context, id string) (*domain.OptimizationJob, error) {
	return r.scanJob(r.db.QueryRowContext(ctx, `
		SELECT id, graph_id, user_id, backend, status, priority, result, failure, credit_cost, created_at, started_at, completed_at
		FROM jobs WHERE id = ?
	`, id))
}

// ActiveForGraph returns the queued or running job for a graph, or
// (nil, nil) when the graph has no job in flight.
func (r *JobRepository) ActiveForGraph(ctx context.Context, graphID string) (*domain.OptimizationJob, error) {
	job, err := r.scanJob(r.db.QueryRowContext(ctx, `
		SELECT id, graph_id, user_id, backend, status, priority, result, failure, credit_cost, created_at, started_at, completed_at
		FROM jobs
		WHERE graph_id = ? AND status IN (?, ?)
		ORDER BY created_at LIMIT 1
	`, graphID, domain.JobQueued, domain.JobRunning))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *JobRepository) scanJob(row rowScanner) (*domain.OptimizationJob, error) {
	var job domain.OptimizationJob
	var result sql.NullString
	var createdAt string
	var startedAt, completedAt sql.NullString

	err := row.Scan(&job.ID, &job.GraphID, &job.UserID, &job.Backend, &job.Status,
		&job.Priority, &result, &job.Failure, &job.CreditCost,
		&createdAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		job.Result = &domain.JobResult{}
		if err := json.Unmarshal([]byte(result.String), job.Result); err != nil {
			return nil, fmt.Errorf("unmarshal job result: %w", err)
		}
	}
	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.StartedAt, err = parseTimePtr(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if job.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	return &job, nil
}

func marshalResult(result *domain.JobResult) (*string, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	s := string(data)
	return &s, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
