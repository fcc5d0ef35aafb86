package solver

import (
	"context"
	"time"

	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/graph"
)

// DefaultBudget bounds one solve attempt when no budget is configured.
const DefaultBudget = 2 * time.Minute

// Plan is the accepted execution order and its estimated makespan.
type Plan struct {
	Order             []string       `json:"order"`
	EstimatedMakespan float64        `json:"estimated_makespan"`
	Backend           domain.Backend `json:"backend"`
	FellBack          bool           `json:"fell_back"`
}

// Optimizer runs the external backend under a hard wall-clock budget and
// falls back to the deterministic topological ordering whenever the backend
// is unavailable, times out, errors, or returns an order that fails
// validation. The fallback is not an error path: it is a first-class
// strategy with the same contract.
type Optimizer struct {
	backend Backend
	budget  time.Duration
}

// NewOptimizer creates an Optimizer. A nil backend means the fallback is
// used unconditionally; a non-positive budget falls back to DefaultBudget.
func NewOptimizer(backend Backend, budget time.Duration) *Optimizer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Optimizer{backend: backend, budget: budget}
}

// Optimize returns a dependency-respecting execution order for a valid
// graph. It fails only if the graph itself is invalid (a dependency
// violation detected at solve time); backend trouble never surfaces as an
// error.
func (o *Optimizer) Optimize(ctx context.Context, g *domain.TaskGraph) (*Plan, error) {
	cg := BuildCostGraph(g)

	if o.backend != nil && o.backend.Available() {
		solveCtx, cancel := context.WithTimeout(ctx, o.budget)
		res := o.backend.Solve(solveCtx, cg)
		cancel()

		if res.Outcome == OutcomeOK && ValidOrder(g, res.Order) {
			makespan, err := graph.Makespan(g)
			if err != nil {
				return nil, err
			}
			return &Plan{
				Order:             res.Order,
				EstimatedMakespan: makespan,
				Backend:           domain.BackendSolver,
			}, nil
		}
	}

	order, err := graph.TopologicalOrder(g)
	if err != nil {
		return nil, err
	}
	makespan, err := graph.Makespan(g)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Order:             order,
		EstimatedMakespan: makespan,
		Backend:           domain.BackendClassicalFallback,
		FellBack:          true,
	}, nil
}
