package solver

import "github.com/gantry/gantry/internal/domain"

// CostGraph is the solver-agnostic problem formulation: a weighted
// undirected max-cut-style cost matrix over node pairs. Each direct
// dependency edge contributes its weight to the pair's cost. Building it is
// a pure transformation with no side effects.
type CostGraph struct {
	NodeIDs []string
	Costs   [][]float64
}

// BuildCostGraph translates a task graph's dependency structure into the
// solver's cost formulation.
func BuildCostGraph(g *domain.TaskGraph) *CostGraph {
	n := len(g.Nodes)
	cg := &CostGraph{
		NodeIDs: make([]string, n),
		Costs:   make([][]float64, n),
	}
	index := make(map[string]int, n)
	for i, node := range g.Nodes {
		cg.NodeIDs[i] = node.ID
		cg.Costs[i] = make([]float64, n)
		index[node.ID] = i
	}

	for _, e := range g.Edges {
		i, j := index[e.From], index[e.To]
		cg.Costs[i][j] += e.Weight
		cg.Costs[j][i] += e.Weight
	}
	return cg
}

// Size returns the number of nodes in the problem.
func (cg *CostGraph) Size() int {
	return len(cg.NodeIDs)
}
