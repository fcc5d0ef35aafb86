// Package service implements the job lifecycle manager and the graph
// operations exposed to callers. External capabilities such as credit
// accounting, audit logging, persistence and queueing are
// constructor-injected collaborators.
package service

import (
	"context"

	"github.com/gantry/gantry/internal/domain"
)

// CreditGate answers whether a job may proceed and charges for completed
// work. The accounting logic behind it is external to this core.
type CreditGate interface {
	HasSufficientBalance(ctx context.Context, userID string, cost int64) (bool, error)
	Charge(ctx context.Context, userID string, cost int64) error
}

// AuditSink persists job lifecycle events. Recording is best-effort: a
// failing sink must never fail the job, so callers drop its errors.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}

// GraphStore loads and saves task graphs. Get returns sql.ErrNoRows when
// the graph does not exist.
type GraphStore interface {
	Get(ctx context.Context, id string) (*domain.TaskGraph, error)
	Save(ctx context.Context, g *domain.TaskGraph) error
}

// JobStore persists optimization jobs. Get returns sql.ErrNoRows when the
// job does not exist; ActiveForGraph returns (nil, nil) when the graph has
// no queued or running job. Transition writes a job only while its stored
// status still equals from, so concurrent redeliveries of the same job
// race for a single winner.
type JobStore interface {
	Create(ctx context.Context, job *domain.OptimizationJob) error
	Get(ctx context.Context, id string) (*domain.OptimizationJob, error)
	Transition(ctx context.Context, job *domain.OptimizationJob, from domain.JobStatus) (bool, error)
	ActiveForGraph(ctx context.Context, graphID string) (*domain.OptimizationJob, error)
}

// Enqueuer appends a job id to the durable submission channel.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID string) error
}
