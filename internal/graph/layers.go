package graph

import (
	"sort"

	"github.com/gantry/gantry/internal/domain"
)

// layers assigns each node the depth of its longest dependency chain:
// layer 0 for nodes with no dependencies, otherwise 1 + max(layer(dep)).
// Nodes sharing a layer have no path between them.
func (a *arena) layers(order []int) []int {
	depth := make([]int, len(a.nodes))
	for _, i := range order {
		for _, d := range a.deps[i] {
			if depth[d]+1 > depth[i] {
				depth[i] = depth[d] + 1
			}
		}
	}
	return depth
}

// Layers returns the layer assignment for a valid graph: a mapping from
// layer index to the node ids in that layer, ascending by id. This is the
// only artifact the rendering collaborator consumes.
func Layers(g *domain.TaskGraph) (map[int][]string, error) {
	a, err := newArena(g.Nodes)
	if err != nil {
		return nil, err
	}
	order, err := a.topoOrder()
	if err != nil {
		return nil, err
	}

	depth := a.layers(order)
	out := make(map[int][]string)
	for i, n := range a.nodes {
		out[depth[i]] = append(out[depth[i]], n.ID)
	}
	for _, ids := range out {
		sort.Strings(ids)
	}
	return out, nil
}
