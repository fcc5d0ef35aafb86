package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/solver"
)

// Process drives one dequeued job to a terminal state. Steps run in a
// fixed order: credit check, solve (or fallback), persist, charge, audit.
//
// A nil return means the job reached a durable terminal state and the queue
// message can be acknowledged. A non-nil return means the job was left in
// its last durable state; the message stays unacknowledged and redelivery
// retries it. Redelivery of a job already in a terminal state is a no-op,
// and concurrent redeliveries of a live job race for the terminal status
// transition, so only one delivery ever charges or records a result.
func (s *JobService) Process(ctx context.Context, jobID string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Stale message for a job that no longer exists.
			return nil
		}
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status.Terminal() {
		return nil
	}

	ok, err := s.credits.HasSufficientBalance(ctx, job.UserID, job.CreditCost)
	if err != nil {
		return fmt.Errorf("credit check for job %s: %w", jobID, err)
	}
	if !ok {
		return s.fail(ctx, job, domain.NewInsufficientCreditsError(job.UserID, job.CreditCost))
	}

	if job.Status == domain.JobQueued {
		job.Status = domain.JobRunning
		job.StartedAt = nowUTC()
		ok, err := s.jobs.Transition(ctx, job, domain.JobQueued)
		if err != nil {
			return fmt.Errorf("mark job %s running: %w", jobID, err)
		}
		if !ok {
			// Another worker claimed the job between our load and the
			// write. Leave the message unacknowledged; a later redelivery
			// finds the terminal state and no-ops.
			return fmt.Errorf("job %s already claimed by another worker", jobID)
		}
		s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionRunning))
	}

	g, err := s.graphs.Get(ctx, job.GraphID)
	if err != nil {
		if err == sql.ErrNoRows {
			return s.fail(ctx, job, domain.NewGraphNotFoundError(job.GraphID))
		}
		return fmt.Errorf("load graph %s: %w", job.GraphID, err)
	}

	plan, err := s.optimizer.Optimize(ctx, g)
	if err != nil {
		// A dependency violation surfacing at solve time is unrecoverable:
		// retrying the same graph cannot succeed.
		return s.fail(ctx, job, err)
	}

	applyPlan(g, plan)
	if err := s.graphs.Save(ctx, g); err != nil {
		return fmt.Errorf("save graph %s: %w", g.ID, err)
	}

	job.Status = domain.JobCompleted
	job.Backend = plan.Backend
	job.CompletedAt = nowUTC()
	job.Result = &domain.JobResult{
		Order:             plan.Order,
		EstimatedMakespan: plan.EstimatedMakespan,
		FellBack:          plan.FellBack,
	}
	won, err := s.jobs.Transition(ctx, job, domain.JobRunning)
	if err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	if !won {
		// A redelivered copy of this job finished first and already
		// charged for it. The terminal state is durable either way.
		return nil
	}

	// Charge only after a usable result is durable. Only the transition
	// winner reaches this point, so redeliveries never charge twice.
	if err := s.credits.Charge(ctx, job.UserID, job.CreditCost); err != nil {
		return fmt.Errorf("charge credits for job %s: %w", jobID, err)
	}

	if plan.FellBack {
		s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionFellBack).
			WithMeta("backend", string(plan.Backend)))
	}
	s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionCompleted).
		WithMeta("backend", string(plan.Backend)))

	return nil
}

// fail moves the job to its failed terminal state without charging. A nil
// return means the failure is durable and the message can be acknowledged.
func (s *JobService) fail(ctx context.Context, job *domain.OptimizationJob, cause error) error {
	code := string(domain.ErrCodeInternalError)
	if domainErr, ok := cause.(*domain.DomainError); ok {
		code = string(domainErr.Code)
	}

	from := job.Status
	job.Status = domain.JobFailed
	job.CompletedAt = nowUTC()
	job.Failure = &code
	won, err := s.jobs.Transition(ctx, job, from)
	if err != nil {
		return fmt.Errorf("mark job %s failed: %w", job.ID, err)
	}
	if !won {
		// Another worker already moved the job to a terminal state.
		return nil
	}

	s.record(ctx, domain.NewAuditEntry(job.ID, domain.TransitionFailed).WithMeta("code", code))
	return nil
}

// applyPlan writes the accepted execution order back onto the graph: node
// positions follow the plan, the makespan follows the plan's estimate.
func applyPlan(g *domain.TaskGraph, plan *solver.Plan) {
	pos := make(map[string]int, len(plan.Order))
	for i, id := range plan.Order {
		pos[id] = i
	}
	for _, n := range g.Nodes {
		n.Position = pos[n.ID]
	}
	g.Makespan = plan.EstimatedMakespan
	g.UpdatedAt = time.Now().UTC()
}
