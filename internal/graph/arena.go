// Package graph validates task graphs and computes scheduling properties
// over them: topological order, critical path, makespan, and layer
// assignment. All algorithms are O(V+E) and value-deterministic: identical
// input produces identical output regardless of traversal order.
package graph

import (
	"fmt"

	"github.com/gantry/gantry/internal/domain"
)

// arena is a dense, index-based view of a node list. Dependencies and
// dependents are integer indices into the node slice, so traversals and
// predecessor walks never chase ids through maps or shared pointers.
type arena struct {
	nodes []*domain.TaskNode
	index map[string]int
	deps  [][]int // deps[i]: indices node i depends on
	outs  [][]int // outs[i]: indices of nodes that depend on node i
}

// newArena builds the index view and rejects structurally invalid input:
// duplicate ids, negative duration estimates, invalid priorities, and
// dependencies that reference ids absent from the node set. Cycle detection
// is the ordering pass's job, not newArena's.
func newArena(nodes []*domain.TaskNode) (*arena, error) {
	a := &arena{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		deps:  make([][]int, len(nodes)),
		outs:  make([][]int, len(nodes)),
	}

	var details []string
	for i, n := range nodes {
		if n.ID == "" {
			details = append(details, fmt.Sprintf("node at position %d has an empty id", i))
			continue
		}
		if _, dup := a.index[n.ID]; dup {
			details = append(details, fmt.Sprintf("duplicate node id %s", n.ID))
			continue
		}
		if n.DurationEstimate < 0 {
			details = append(details, fmt.Sprintf("node %s has a negative duration estimate", n.ID))
		}
		if !domain.ValidPriority(n.Priority) {
			details = append(details, fmt.Sprintf("node %s has an invalid priority", n.ID))
		}
		a.index[n.ID] = i
	}
	if len(details) > 0 {
		return nil, domain.NewValidationError(details)
	}

	for i, n := range nodes {
		for _, dep := range n.Dependencies {
			j, ok := a.index[dep]
			if !ok {
				return nil, domain.NewDanglingDependencyError(n.ID, dep)
			}
			if j == i {
				return nil, NewSelfCycleError(n.ID)
			}
			a.deps[i] = append(a.deps[i], j)
			a.outs[j] = append(a.outs[j], i)
		}
	}

	return a, nil
}

// NewSelfCycleError reports a node that directly depends on itself.
func NewSelfCycleError(id string) *domain.DomainError {
	return domain.NewCyclicGraphError([]string{id})
}

// edges flattens each node's dependency set into directed edges, one per
// dependency pair, in node declaration order.
func (a *arena) edges() []domain.TaskEdge {
	var edges []domain.TaskEdge
	for i, n := range a.nodes {
		for _, j := range a.deps[i] {
			edges = append(edges, domain.TaskEdge{
				From:   a.nodes[j].ID,
				To:     n.ID,
				Weight: domain.DefaultEdgeWeight,
			})
		}
	}
	return edges
}
