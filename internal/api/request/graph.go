package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gantry/gantry/internal/domain"
)

// NodePayload is one task node in a graph creation request.
type NodePayload struct {
	ID               string   `json:"id"`
	DurationEstimate float64  `json:"duration_estimate"`
	Dependencies     []string `json:"dependencies,omitempty"`
	Priority         *int     `json:"priority,omitempty"`
	Status           *string  `json:"status,omitempty"`
}

// CreateGraphRequest represents a request to create a task graph.
type CreateGraphRequest struct {
	Nodes []NodePayload `json:"nodes"`
}

// Validate validates the create graph request.
func (r *CreateGraphRequest) Validate() []string {
	var errors []string

	if len(r.Nodes) == 0 {
		errors = append(errors, "nodes are required")
	}
	for i, n := range r.Nodes {
		if n.ID == "" {
			errors = append(errors, fmt.Sprintf("node %d: id is required", i))
		}
		if n.DurationEstimate < 0 {
			errors = append(errors, fmt.Sprintf("node %s: duration_estimate must not be negative", n.ID))
		}
		if n.Priority != nil && !domain.ValidPriority(domain.Priority(*n.Priority)) {
			errors = append(errors, fmt.Sprintf("node %s: priority must be between 0 and 3", n.ID))
		}
		if n.Status != nil && !domain.NodeStatus(*n.Status).IsValid() {
			errors = append(errors, fmt.Sprintf("node %s: invalid status %q", n.ID, *n.Status))
		}
	}

	return errors
}

// DomainNodes converts the payload into domain task nodes.
func (r *CreateGraphRequest) DomainNodes() []*domain.TaskNode {
	nodes := make([]*domain.TaskNode, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		node := domain.NewTaskNode(n.ID, n.DurationEstimate, n.Dependencies...)
		if n.Priority != nil {
			node.Priority = domain.Priority(*n.Priority)
		}
		if n.Status != nil {
			node.Status = domain.NodeStatus(*n.Status)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// SubmitJobRequest represents a request to optimize a graph.
type SubmitJobRequest struct {
	Priority *int `json:"priority,omitempty"`
}

// Validate validates the submit job request.
func (r *SubmitJobRequest) Validate() []string {
	var errors []string

	if r.Priority != nil && !domain.ValidPriority(domain.Priority(*r.Priority)) {
		errors = append(errors, "priority must be between 0 and 3")
	}

	return errors
}

// JobPriority returns the requested priority, defaulting to medium.
func (r *SubmitJobRequest) JobPriority() domain.Priority {
	if r.Priority == nil {
		return domain.PriorityMedium
	}
	return domain.Priority(*r.Priority)
}

// DecodeJSON decodes JSON from request body into the given value.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
