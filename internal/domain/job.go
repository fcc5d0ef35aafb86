package domain

import "time"

// JobStatus represents the state of an optimization job. Transitions are
// monotonic: a job never regresses to an earlier state.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	// JobTimedOut is an internal state only: a timed-out solve is always
	// folded into JobCompleted with the fallback's result, so callers never
	// observe a bare timeout.
	JobTimedOut JobStatus = "timed_out"
)

// ValidJobStatuses contains all valid job status values.
var ValidJobStatuses = []JobStatus{JobQueued, JobRunning, JobCompleted, JobFailed, JobTimedOut}

// IsValid checks if the status is a valid job status.
func (s JobStatus) IsValid() bool {
	for _, v := range ValidJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is terminal for callers.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// CanTransition reports whether a job may move from s to the given status.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobQueued:
		return to == JobRunning || to == JobFailed
	case JobRunning:
		return to == JobCompleted || to == JobFailed || to == JobTimedOut
	case JobTimedOut:
		return to == JobCompleted
	default:
		return false
	}
}

// Backend identifies which strategy produced a job's result.
type Backend string

const (
	BackendSolver            Backend = "solver"
	BackendClassicalFallback Backend = "classical_fallback"
)

// JobResult is the usable output of a finished optimization job.
type JobResult struct {
	Order             []string `json:"order"`
	EstimatedMakespan float64  `json:"estimated_makespan"`
	FellBack          bool     `json:"fell_back"`
}

// OptimizationJob tracks one optimization request from submission to a
// terminal state.
type OptimizationJob struct {
	ID          string     `json:"id"`
	GraphID     string     `json:"graph_id"`
	UserID      string     `json:"user_id"`
	Backend     Backend    `json:"backend"`
	Status      JobStatus  `json:"status"`
	Priority    Priority   `json:"priority"`
	Result      *JobResult `json:"result,omitempty"`
	Failure     *string    `json:"failure,omitempty"`
	CreditCost  int64      `json:"credit_cost"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewOptimizationJob creates a queued job for the given graph and user.
func NewOptimizationJob(id, graphID, userID string, priority Priority, creditCost int64) *OptimizationJob {
	return &OptimizationJob{
		ID:         id,
		GraphID:    graphID,
		UserID:     userID,
		Backend:    BackendSolver,
		Status:     JobQueued,
		Priority:   priority,
		CreditCost: creditCost,
		CreatedAt:  time.Now().UTC(),
	}
}
