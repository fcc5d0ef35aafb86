package graph

import (
	"sort"

	"github.com/gantry/gantry/internal/domain"
)

// topoOrder runs Kahn's algorithm over the arena. Among simultaneously
// ready nodes it picks the highest priority first, then the ascending id,
// so the order is deterministic and testable. If the output is shorter
// than the node count the graph contains a cycle; the error names the
// nodes left with unsatisfied dependencies.
func (a *arena) topoOrder() ([]int, error) {
	indegree := make([]int, len(a.nodes))
	for i := range a.nodes {
		indegree[i] = len(a.deps[i])
	}

	var ready []int
	for i := range a.nodes {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, len(a.nodes))
	for len(ready) > 0 {
		best := 0
		for k := 1; k < len(ready); k++ {
			if a.before(ready[k], ready[best]) {
				best = k
			}
		}
		next := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, next)

		for _, dependent := range a.outs[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) < len(a.nodes) {
		var members []string
		for i := range a.nodes {
			if indegree[i] > 0 {
				members = append(members, a.nodes[i].ID)
			}
		}
		sort.Strings(members)
		return nil, domain.NewCyclicGraphError(members)
	}

	return order, nil
}

// before reports whether node i should be scheduled ahead of node j when
// both are ready: descending priority, then ascending id.
func (a *arena) before(i, j int) bool {
	ni, nj := a.nodes[i], a.nodes[j]
	if ni.Priority != nj.Priority {
		return ni.Priority > nj.Priority
	}
	return ni.ID < nj.ID
}

// TopologicalOrder returns a dependency-respecting ordering of all node ids
// in the graph. For every edge (a, b), a appears strictly before b. It
// fails only for graphs that were never validated: a cycle or structural
// defect yields the corresponding domain error.
func TopologicalOrder(g *domain.TaskGraph) ([]string, error) {
	a, err := newArena(g.Nodes)
	if err != nil {
		return nil, err
	}
	order, err := a.topoOrder()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(order))
	for k, i := range order {
		ids[k] = a.nodes[i].ID
	}
	return ids, nil
}
