package domain

import "time"

// DefaultEdgeWeight is the cost contributed by a single dependency edge.
const DefaultEdgeWeight = 1.0

// TaskEdge is the derived relation for one dependency pair: From must
// complete before To can start. The weight feeds the optimizer's cost
// formulation only.
type TaskEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// TaskGraph is a validated DAG of task nodes owned by a single user.
// Edges are exactly the flattening of each node's dependency set.
type TaskGraph struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Nodes        []*TaskNode `json:"nodes"`
	Edges        []TaskEdge  `json:"edges"`
	CriticalPath []string    `json:"critical_path"`
	Makespan     float64     `json:"makespan"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Node returns the node with the given id, or nil if absent.
func (g *TaskGraph) Node(id string) *TaskNode {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// CompletionPercentage derives the graph's progress (0-100) from node
// statuses. An empty graph is 100% complete.
func (g *TaskGraph) CompletionPercentage() float64 {
	if len(g.Nodes) == 0 {
		return 100
	}
	done := 0
	for _, n := range g.Nodes {
		if n.Status == NodeCompleted {
			done++
		}
	}
	return float64(done) / float64(len(g.Nodes)) * 100
}
