package graph

import (
	"time"

	"github.com/gantry/gantry/internal/domain"
)

// Build validates a node list and constructs a TaskGraph from it. Malformed
// input is rejected, never repaired: a dependency on an id absent from the
// node set fails with a DANGLING_DEPENDENCY error, a cycle with a
// CYCLE_DETECTED error, and a partial graph is never returned.
//
// On success the graph carries its flattened edge set, critical path,
// makespan, and per-node layer/position metadata.
func Build(id, userID string, nodes []*domain.TaskNode) (*domain.TaskGraph, error) {
	a, err := newArena(nodes)
	if err != nil {
		return nil, err
	}
	order, err := a.topoOrder()
	if err != nil {
		return nil, err
	}

	path, makespan := a.criticalPath(order)
	depth := a.layers(order)

	for pos, i := range order {
		nodes[i].Layer = depth[i]
		nodes[i].Position = pos
		if nodes[i].Status == "" {
			nodes[i].Status = domain.NodePending
		}
	}

	now := time.Now().UTC()
	return &domain.TaskGraph{
		ID:           id,
		UserID:       userID,
		Nodes:        nodes,
		Edges:        a.edges(),
		CriticalPath: path,
		Makespan:     makespan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
