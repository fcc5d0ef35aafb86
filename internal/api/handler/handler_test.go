package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gantry/gantry/internal/api"
	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/queue"
	"github.com/gantry/gantry/internal/service"
	"github.com/gantry/gantry/internal/solver"
	"github.com/gantry/gantry/internal/store/sqlite"
)

// testSetup provides common test infrastructure: a full in-memory stack
// with the worker pool left unstarted so submitted jobs stay queued until
// a test drives processing explicitly.
type testSetup struct {
	store  *sqlite.Store
	jobSvc *service.JobService
	router *chi.Mux
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	store, err := sqlite.Open(":memory:", 100)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	q := queue.NewQueue(store.DB(), time.Minute, 5)
	mgr := queue.NewManager(q, queue.Config{
		Workers:      1,
		PollInterval: time.Second,
		InfoLog:      func(queue.LogEvent) {},
		ErrorLog:     func(queue.LogEvent) {},
	})

	optimizer := solver.NewOptimizer(nil, 50*time.Millisecond)
	graphSvc := service.NewGraphService(store.Graphs())
	jobSvc := service.NewJobService(store.Graphs(), store.Jobs(), store.Credits(), store.Audit(), mgr, optimizer, 10)

	router := api.NewRouter(graphSvc, jobSvc, store.Audit(), q)

	return &testSetup{store: store, jobSvc: jobSvc, router: router}
}

func (s *testSetup) doRequest(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		json.NewEncoder(&reqBody).Encode(body)
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func asUser(user string) map[string]string {
	return map[string]string{"X-Gantry-User": user}
}

func diamondBody() map[string]interface{} {
	return map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "A", "duration_estimate": 2},
			{"id": "B", "duration_estimate": 3, "dependencies": []string{"A"}},
			{"id": "C", "duration_estimate": 1, "dependencies": []string{"A"}},
			{"id": "D", "duration_estimate": 4, "dependencies": []string{"B", "C"}},
		},
	}
}

func (s *testSetup) createGraph(t *testing.T, user string) string {
	t.Helper()
	rr := s.doRequest("POST", "/v1/graphs", diamondBody(), asUser(user))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var g domain.TaskGraph
	if err := json.NewDecoder(rr.Body).Decode(&g); err != nil {
		t.Fatalf("failed to decode graph: %v", err)
	}
	return g.ID
}

func decodeErrorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestHealth_ReturnsOK(t *testing.T) {
	setup := newTestSetup(t)

	rr := setup.doRequest("GET", "/v1/health", nil, nil)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", resp["status"])
	}
}

func TestCreateGraph_ReturnsComputedSchedule(t *testing.T) {
	setup := newTestSetup(t)

	rr := setup.doRequest("POST", "/v1/graphs", diamondBody(), asUser("user-1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var g domain.TaskGraph
	if err := json.NewDecoder(rr.Body).Decode(&g); err != nil {
		t.Fatalf("failed to decode graph: %v", err)
	}
	if g.ID == "" {
		t.Error("expected generated graph id")
	}
	if g.Makespan != 9 {
		t.Errorf("expected makespan 9, got %v", g.Makespan)
	}
	if len(g.CriticalPath) != 3 {
		t.Errorf("expected critical path of 3 nodes, got %v", g.CriticalPath)
	}
}

func TestCreateGraph_RejectsCycle(t *testing.T) {
	setup := newTestSetup(t)

	body := map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"id": "A", "duration_estimate": 1, "dependencies": []string{"B"}},
			{"id": "B", "duration_estimate": 1, "dependencies": []string{"A"}},
		},
	}
	rr := setup.doRequest("POST", "/v1/graphs", body, asUser("user-1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr); code != "CYCLE_DETECTED" {
		t.Errorf("expected CYCLE_DETECTED, got %s", code)
	}
}

func TestCreateGraph_RejectsInvalidBody(t *testing.T) {
	setup := newTestSetup(t)

	rr := setup.doRequest("POST", "/v1/graphs", map[string]interface{}{"nodes": []string{}}, asUser("user-1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestGetGraph_NotFound(t *testing.T) {
	setup := newTestSetup(t)

	rr := setup.doRequest("GET", "/v1/graphs/tg-deadbeef", nil, asUser("user-1"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr); code != "GRAPH_NOT_FOUND" {
		t.Errorf("expected GRAPH_NOT_FOUND, got %s", code)
	}
}

func TestGetGraph_EnforcesOwnership(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("GET", "/v1/graphs/"+graphID, nil, asUser("user-2"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr); code != "NOT_OWNER" {
		t.Errorf("expected NOT_OWNER, got %s", code)
	}
}

func TestGetCriticalPath(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("GET", "/v1/graphs/"+graphID+"/critical-path", nil, asUser("user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var result struct {
		Order    []string `json:"order"`
		Makespan float64  `json:"makespan"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Makespan != 9 {
		t.Errorf("expected makespan 9, got %v", result.Makespan)
	}
	if len(result.Order) != 3 || result.Order[0] != "A" || result.Order[2] != "D" {
		t.Errorf("unexpected critical path %v", result.Order)
	}
}

func TestGetLayers(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("GET", "/v1/graphs/"+graphID+"/layers", nil, asUser("user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Layers map[string][]string `json:"layers"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Layers["0"]) != 1 || resp.Layers["0"][0] != "A" {
		t.Errorf("expected layer 0 [A], got %v", resp.Layers["0"])
	}
	if len(resp.Layers["1"]) != 2 {
		t.Errorf("expected 2 nodes in layer 1, got %v", resp.Layers["1"])
	}
}

func TestSubmitJob_ReturnsAccepted(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("POST", "/v1/graphs/"+graphID+"/optimize", nil, asUser("user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["job_id"] == "" {
		t.Error("expected job id")
	}
	if resp["status"] != "queued" {
		t.Errorf("expected queued status, got %s", resp["status"])
	}
}

func TestSubmitJob_RejectsSecondActiveJob(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	first := setup.doRequest("POST", "/v1/graphs/"+graphID+"/optimize", nil, asUser("user-1"))
	if first.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", first.Code)
	}

	second := setup.doRequest("POST", "/v1/graphs/"+graphID+"/optimize", nil, asUser("user-1"))
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", second.Code)
	}
	if code := decodeErrorCode(t, second); code != "JOB_ALREADY_ACTIVE" {
		t.Errorf("expected JOB_ALREADY_ACTIVE, got %s", code)
	}
}

func TestJobLifecycleThroughAPI(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("POST", "/v1/graphs/"+graphID+"/optimize", nil, asUser("user-1"))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rr.Code)
	}
	var submitted map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&submitted); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	jobID := submitted["job_id"]

	// Drive processing directly instead of waiting on the worker pool.
	if err := setup.jobSvc.Process(context.Background(), jobID); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	rr = setup.doRequest("GET", "/v1/jobs/"+jobID, nil, asUser("user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var job domain.OptimizationJob
	if err := json.NewDecoder(rr.Body).Decode(&job); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}
	if job.Status != domain.JobCompleted {
		t.Errorf("expected completed, got %s", job.Status)
	}
	if job.Backend != domain.BackendClassicalFallback {
		t.Errorf("expected classical_fallback, got %s", job.Backend)
	}
	if job.Result == nil || len(job.Result.Order) != 4 {
		t.Errorf("expected a 4 node order, got %+v", job.Result)
	}

	rr = setup.doRequest("GET", "/v1/jobs/"+jobID+"/history", nil, asUser("user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var history struct {
		History []domain.AuditEntry `json:"history"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history.History) < 3 {
		t.Fatalf("expected at least 3 transitions, got %d", len(history.History))
	}
	if history.History[0].Transition != domain.TransitionQueued {
		t.Errorf("expected first transition queued, got %s", history.History[0].Transition)
	}
	last := history.History[len(history.History)-1]
	if last.Transition != domain.TransitionCompleted {
		t.Errorf("expected last transition completed, got %s", last.Transition)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	setup := newTestSetup(t)

	rr := setup.doRequest("GET", "/v1/jobs/missing", nil, asUser("user-1"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if code := decodeErrorCode(t, rr); code != "JOB_NOT_FOUND" {
		t.Errorf("expected JOB_NOT_FOUND, got %s", code)
	}
}

func TestGetJob_EnforcesOwnership(t *testing.T) {
	setup := newTestSetup(t)
	graphID := setup.createGraph(t, "user-1")

	rr := setup.doRequest("POST", "/v1/graphs/"+graphID+"/optimize", nil, asUser("user-1"))
	var submitted map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&submitted); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	rr = setup.doRequest("GET", "/v1/jobs/"+submitted["job_id"], nil, asUser("user-2"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
