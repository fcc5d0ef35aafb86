package service

import (
	"context"
	"database/sql"

	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/graph"
	"github.com/gantry/gantry/pkg/idgen"
)

// GraphService handles graph construction and read operations.
type GraphService struct {
	graphs GraphStore
}

// NewGraphService creates a new GraphService.
func NewGraphService(graphs GraphStore) *GraphService {
	return &GraphService{graphs: graphs}
}

// Create validates the node list, constructs the graph, and persists it.
// Malformed input (cycle, dangling dependency) is rejected with the
// corresponding domain error and nothing is stored.
func (s *GraphService) Create(ctx context.Context, userID string, nodes []*domain.TaskNode) (*domain.TaskGraph, error) {
	id, err := idgen.Generate()
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	g, err := graph.Build(id, userID, nodes)
	if err != nil {
		return nil, err
	}

	if err := s.graphs.Save(ctx, g); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return g, nil
}

// Get retrieves a graph, enforcing ownership.
func (s *GraphService) Get(ctx context.Context, graphID, userID string) (*domain.TaskGraph, error) {
	g, err := s.graphs.Get(ctx, graphID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewGraphNotFoundError(graphID)
		}
		return nil, domain.NewInternalError(err)
	}
	if g.UserID != userID {
		return nil, domain.NewNotOwnerError(graphID)
	}
	return g, nil
}

// CriticalPathResult is the outcome of a critical path computation.
type CriticalPathResult struct {
	Order    []string `json:"order"`
	Makespan float64  `json:"makespan"`
}

// CriticalPath recomputes the critical path and makespan for a stored graph.
func (s *GraphService) CriticalPath(ctx context.Context, graphID, userID string) (*CriticalPathResult, error) {
	g, err := s.Get(ctx, graphID, userID)
	if err != nil {
		return nil, err
	}
	path, makespan, err := graph.CriticalPath(g)
	if err != nil {
		return nil, err
	}
	return &CriticalPathResult{Order: path, Makespan: makespan}, nil
}

// Layers returns the layer assignment for a stored graph.
func (s *GraphService) Layers(ctx context.Context, graphID, userID string) (map[int][]string, error) {
	g, err := s.Get(ctx, graphID, userID)
	if err != nil {
		return nil, err
	}
	return graph.Layers(g)
}
