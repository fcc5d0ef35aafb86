package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gantry/gantry/internal/api/middleware"
	"github.com/gantry/gantry/internal/api/request"
	"github.com/gantry/gantry/internal/api/response"
	"github.com/gantry/gantry/internal/domain"
	"github.com/gantry/gantry/internal/service"
)

// GraphHandler handles graph creation and read operations.
type GraphHandler struct {
	graphs *service.GraphService
}

// NewGraphHandler creates a new GraphHandler.
func NewGraphHandler(graphs *service.GraphService) *GraphHandler {
	return &GraphHandler{graphs: graphs}
}

// CreateGraph handles POST /v1/graphs.
func (h *GraphHandler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGraphRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, domain.NewValidationError([]string{"Invalid JSON body"}))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	userID := middleware.GetUserID(r.Context())
	g, err := h.graphs.Create(r.Context(), userID, req.DomainNodes())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, g)
}

// GetGraph handles GET /v1/graphs/{id}.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	g, err := h.graphs.Get(r.Context(), graphID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, g)
}

// GetCriticalPath handles GET /v1/graphs/{id}/critical-path.
func (h *GraphHandler) GetCriticalPath(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	result, err := h.graphs.CriticalPath(r.Context(), graphID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

// GetLayers handles GET /v1/graphs/{id}/layers.
func (h *GraphHandler) GetLayers(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "id")
	userID := middleware.GetUserID(r.Context())

	layers, err := h.graphs.Layers(r.Context(), graphID, userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{"layers": layers})
}
