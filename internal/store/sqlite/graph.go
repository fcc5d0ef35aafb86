package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gantry/gantry/internal/domain"
)

// GraphRepository handles task graph persistence.
type GraphRepository struct {
	db *sql.DB
}

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(db *sql.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

// Save upserts a graph with its nodes and dependency rows in one
// transaction. Node rows are rewritten wholesale; a graph is only ever
// mutated by the single active optimization job for it, so there is no
// concurrent writer to merge with.
func (r *GraphRepository) Save(ctx context.Context, g *domain.TaskGraph) error {
	path, err := json.Marshal(g.CriticalPath)
	if err != nil {
		return fmt.Errorf("marshal critical path: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO graphs (id, user_id, critical_path, makespan, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  critical_path = excluded.critical_path,
		  makespan      = excluded.makespan,
		  updated_at    = excluded.updated_at
	`, g.ID, g.UserID, string(path), g.Makespan,
		g.CreatedAt.UTC().Format(time.RFC3339Nano),
		g.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert graph: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM node_dependencies WHERE graph_id = ?", g.ID); err != nil {
		return fmt.Errorf("clear dependencies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE graph_id = ?", g.ID); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}

	for _, n := range g.Nodes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (graph_id, id, duration_estimate, priority, status, layer, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, g.ID, n.ID, n.DurationEstimate, n.Priority, n.Status, n.Layer, n.Position)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
		for ord, dep := range n.Dependencies {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO node_dependencies (graph_id, node_id, depends_on, ord)
				VALUES (?, ?, ?, ?)
			`, g.ID, n.ID, dep, ord)
			if err != nil {
				return fmt.Errorf("insert dependency %s -> %s: %w", n.ID, dep, err)
			}
		}
	}

	return tx.Commit()
}

// Get loads a graph with its nodes and dependencies. Returns sql.ErrNoRows
// when the graph does not exist.
func (r *GraphRepository) Get(ctx context.Context, id string) (*domain.TaskGraph, error) {
	var g domain.TaskGraph
	var path, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, critical_path, makespan, created_at, updated_at
		FROM graphs WHERE id = ?
	`, id).Scan(&g.ID, &g.UserID, &path, &g.Makespan, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(path), &g.CriticalPath); err != nil {
		return nil, fmt.Errorf("unmarshal critical path: %w", err)
	}
	if g.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if g.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, duration_estimate, priority, status, layer, position
		FROM nodes WHERE graph_id = ? ORDER BY position, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n domain.TaskNode
		if err := rows.Scan(&n.ID, &n.DurationEstimate, &n.Priority, &n.Status, &n.Layer, &n.Position); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		g.Nodes = append(g.Nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	depRows, err := r.db.QueryContext(ctx, `
		SELECT node_id, depends_on
		FROM node_dependencies WHERE graph_id = ? ORDER BY node_id, ord
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer depRows.Close()

	deps := make(map[string][]string)
	for depRows.Next() {
		var nodeID, dependsOn string
		if err := depRows.Scan(&nodeID, &dependsOn); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		deps[nodeID] = append(deps[nodeID], dependsOn)
	}
	if err := depRows.Err(); err != nil {
		return nil, err
	}

	for _, n := range g.Nodes {
		n.Dependencies = deps[n.ID]
		for _, dep := range n.Dependencies {
			g.Edges = append(g.Edges, domain.TaskEdge{
				From:   dep,
				To:     n.ID,
				Weight: domain.DefaultEdgeWeight,
			})
		}
	}

	return &g, nil
}
