package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/solver"
)

// DefaultCreditCost is charged per optimization job when none is configured.
const DefaultCreditCost = 10

// JobService owns the optimization job lifecycle: submission, status
// queries, and the processing loop entry point driven by the queue workers.
type JobService struct {
	graphs     GraphStore
	jobs       JobStore
	credits    CreditGate
	audit      AuditSink
	queue      Enqueuer
	optimizer  *solver.Optimizer
	creditCost int64
}

// NewJobService creates a JobService with its collaborators.
func NewJobService(graphs GraphStore, jobs JobStore, credits CreditGate, audit AuditSink, queue Enqueuer, optimizer *solver.Optimizer, creditCost int64) *JobService {
	if creditCost <= 0 {
		creditCost = DefaultCreditCost
	}
	return &JobService{
		graphs:     graphs,
		jobs:       jobs,
		credits:    credits,
		audit:      audit,
		queue:      queue,
		optimizer:  optimizer,
		creditCost: creditCost,
	}
}

// Submit enqueues an optimization request for a graph and returns the job
// id without blocking on the solve. A graph may have at most one job in
// flight: a second submission while one is queued or running is rejected.
func (s *JobService) Submit(ctx context.Context, graphID, userID string, priority domain.Priority) (string, error) {
	if !domain.ValidPriority(priority) {
		return "", domain.NewValidationError([]string{"invalid priority"})
	}

	g, err := s.graphs.Get(ctx, graphID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", domain.NewGraphNotFoundError(graphID)
		}
		return "", domain.NewInternalError(err)
	}
	if g.UserID != userID {
		return "", domain.NewNotOwnerError(graphID)
	}

	active, err := s.jobs.ActiveForGraph(ctx, graphID)
	if err != nil {
		return "", domain.NewInternalError(err)
	}
	if active != nil {
		return "", domain.NewJobAlreadyActiveError(graphID, active.ID)
	}

	job := domain.NewOptimizationJob(uuid.NewString(), graphID, userID, priority, s.creditCost)
	if err := s.jobs.Create(ctx, job); err != nil {
		return "", domain.NewInternalError(err)
	}
	if err := s.queue.Enqueue(ctx, job.ID); err != nil {
		// A queued job with no queue message would never be processed and
		// would block the graph's one-in-flight slot forever. Move it to
		// failed so the caller can resubmit.
		code := string(domain.ErrCodeInternalError)
		job.Status = domain.JobFailed
		job.CompletedAt = nowUTC()
		job.Failure = &code
		if won, terr := s.jobs.Transition(ctx, job, domain.JobQueued); terr == nil && won {
			s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionFailed).WithMeta("code", code))
		}
		return "", domain.NewInternalError(err)
	}

	s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionQueued).
		WithMeta("graph_id", graphID).
		WithMeta("priority", job.Priority.String()))

	return job.ID, nil
}

// GetStatus retrieves a job by id.
func (s *JobService) GetStatus(ctx context.Context, jobID string) (*domain.OptimizationJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewJobNotFoundError(jobID)
		}
		return nil, domain.NewInternalError(err)
	}
	return job, nil
}

// record emits an audit event. Best-effort: sink errors are dropped so a
// failing audit collaborator never fails the job.
func (s *JobService) record(ctx context.Context, entry domain.AuditEntry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, entry)
}

func nowUTC() *time.Time {
	t := time.Now().UTC()
	return &t
}
