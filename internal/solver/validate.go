package solver

import "github.com/gantry/gantry/internal/domain"

// ValidOrder reports whether a proposed order can be trusted: it must be a
// permutation of the graph's node ids in which, for every edge (a, b), a
// appears strictly before b. Anything else is treated as a backend failure.
func ValidOrder(g *domain.TaskGraph, order []string) bool {
	if len(order) != len(g.Nodes) {
		return false
	}
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := pos[id]; dup {
			return false
		}
		pos[id] = i
	}
	for _, n := range g.Nodes {
		if _, ok := pos[n.ID]; !ok {
			return false
		}
	}
	for _, e := range g.Edges {
		if pos[e.From] >= pos[e.To] {
			return false
		}
	}
	return true
}
