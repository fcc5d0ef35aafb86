package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPRemoteSolver talks to a remote solver service over its REST API:
// POST /v1/problems submits a cost graph and returns a ticket, and
// GET /v1/problems/{ticket} reports progress.
type HTTPRemoteSolver struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRemoteSolver creates a client for the solver at endpoint.
func NewHTTPRemoteSolver(endpoint string) *HTTPRemoteSolver {
	return &HTTPRemoteSolver{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping reports whether the solver service answers its health endpoint.
func (s *HTTPRemoteSolver) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/v1/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Submit posts the cost graph and returns the solve ticket.
func (s *HTTPRemoteSolver) Submit(ctx context.Context, cg *CostGraph) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"node_ids": cg.NodeIDs,
		"costs":    cg.Costs,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/problems", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("solver rejected problem: status %d", resp.StatusCode)
	}

	var submitted struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return "", err
	}
	if submitted.Ticket == "" {
		return "", fmt.Errorf("solver returned an empty ticket")
	}
	return submitted.Ticket, nil
}

// Poll checks on a submitted problem.
func (s *HTTPRemoteSolver) Poll(ctx context.Context, ticket string) ([]string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/v1/problems/"+ticket, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("solver poll failed: status %d", resp.StatusCode)
	}

	var status struct {
		Done  bool     `json:"done"`
		Order []string `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, false, err
	}
	return status.Order, status.Done, nil
}
