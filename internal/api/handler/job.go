package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gantry/gantry/internal/api/middleware"
	"github.com/gantry/gantry/internal/api/request"
	"github.com/gantry/gantry/internal/api/response"
	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/service"
)

// AuditReader lists the recorded transitions of a job.
type AuditReader interface {
	ListByJob(ctx context.Context, jobID string) ([]domain.AuditEntry, error)
}

// JobHandler handles optimization job submission and status queries.
type JobHandler struct {
	jobs  *service.JobService
	audit AuditReader
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs *service.JobService, audit AuditReader) *JobHandler {
	return &JobHandler{jobs: jobs, audit: audit}
}

// SubmitJob handles POST /v1/graphs/{id}/optimize.
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	req := request.SubmitJobRequest{}
	if r.ContentLength > 0 {
		if err := request.DecodeJSON(r, &req); err != nil {
			response.Error(w, domain.NewValidationError([]string{"Invalid JSON body"}))
			return
		}
	}
	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	jobID, err := h.jobs.Submit(r.Context(), graphID, userID, req.JobPriority())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Accepted(w, map[string]string{
		"job_id": jobID,
		"status": string(domain.JobQueued),
	})
}

// GetJob handles GET /v1/jobs/{id}.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.ownedJob(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, job)
}

// GetJobHistory handles GET /v1/jobs/{id}/history.
func (h *JobHandler) GetJobHistory(w http.ResponseWriter, r *http.Request) {
	job, err := h.ownedJob(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	entries, err := h.audit.ListByJob(r.Context(), job.ID)
	if err != nil {
		response.Error(w, domain.NewInternalError(err))
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}

	response.OK(w, map[string]interface{}{
		"job_id":  job.ID,
		"history": entries,
	})
}

func (h *JobHandler) ownedJob(r *http.Request) (*domain.OptimizationJob, error) {
	jobID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	job, err := h.jobs.GetStatus(r.Context(), jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, domain.NewNotOwnerError(job.GraphID)
	}
	return job, nil
}
