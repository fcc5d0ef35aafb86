package graph

import "github.com/gantry/gantry/internal/domain"

// criticalPath computes the longest weighted path through the DAG.
//
// For each node in topological order:
//
//	earliestStart(n) = max(earliestStart(d) + duration(d)) over deps d, default 0
//
// The makespan is max(earliestStart(n) + duration(n)) over all nodes. The
// path is reconstructed by walking the recorded critical predecessor
// backward from the maximizing node. Ties are broken by ascending id so
// the result depends only on values, never on traversal order.
func (a *arena) criticalPath(order []int) ([]string, float64) {
	if len(a.nodes) == 0 {
		return nil, 0
	}

	earliest := make([]float64, len(a.nodes))
	pred := make([]int, len(a.nodes))
	for i := range pred {
		pred[i] = -1
	}

	for _, i := range order {
		for _, d := range a.deps[i] {
			candidate := earliest[d] + a.nodes[d].DurationEstimate
			if candidate > earliest[i] ||
				(candidate == earliest[i] && pred[i] != -1 && a.nodes[d].ID < a.nodes[pred[i]].ID) {
				earliest[i] = candidate
				pred[i] = d
			}
		}
	}

	end := -1
	makespan := 0.0
	for _, i := range order {
		finish := earliest[i] + a.nodes[i].DurationEstimate
		if end == -1 || finish > makespan ||
			(finish == makespan && a.nodes[i].ID < a.nodes[end].ID) {
			makespan = finish
			end = i
		}
	}

	var reversed []string
	for i := end; i != -1; i = pred[i] {
		reversed = append(reversed, a.nodes[i].ID)
	}
	path := make([]string, len(reversed))
	for k, id := range reversed {
		path[len(path)-1-k] = id
	}
	return path, makespan
}

// CriticalPath returns the critical path (the longest dependency-respecting
// chain of node ids) and the makespan for a valid graph.
func CriticalPath(g *domain.TaskGraph) ([]string, float64, error) {
	a, err := newArena(g.Nodes)
	if err != nil {
		return nil, 0, err
	}
	order, err := a.topoOrder()
	if err != nil {
		return nil, 0, err
	}
	path, makespan := a.criticalPath(order)
	return path, makespan, nil
}

// Makespan returns only the makespan for a valid graph.
func Makespan(g *domain.TaskGraph) (float64, error) {
	_, makespan, err := CriticalPath(g)
	return makespan, err
}
