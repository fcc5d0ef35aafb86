// Package solver produces a recommended execution order for a task graph.
// It prefers a pluggable external backend but always guarantees a usable
// result: any backend unavailability, timeout, error, or untrustworthy
// output degrades to the deterministic topological ordering.
package solver

import "context"

// Outcome tags the result of one solve attempt.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the explicit tagged outcome of a solve attempt. Order is set
// only for OutcomeOK, Reason only for OutcomeError.
type Result struct {
	Outcome Outcome
	Order   []string
	Reason  string
}

// OK wraps a proposed node ordering.
func OK(order []string) Result {
	return Result{Outcome: OutcomeOK, Order: order}
}

// Timeout reports that the backend exceeded its budget.
func Timeout() Result {
	return Result{Outcome: OutcomeTimeout}
}

// Failure reports a backend error with a reason.
func Failure(reason string) Result {
	return Result{Outcome: OutcomeError, Reason: reason}
}

// Backend is the external optimizer. Solve must honor ctx cancellation; the
// optimizer enforces its wall-clock budget through the context deadline.
type Backend interface {
	Available() bool
	Solve(ctx context.Context, cg *CostGraph) Result
}
