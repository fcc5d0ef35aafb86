package handler

import (
	"context"
	"net/http"

	"github.com/gantry/gantry/internal/api/response"
	"github.com/gantry/gantry/internal/domain"
)

// QueueStats reports the live depth of the submission queue.
type QueueStats interface {
	Depth(ctx context.Context) (int, error)
}

// SystemHandler handles system-level operations.
type SystemHandler struct {
	queue QueueStats
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(queue QueueStats) *SystemHandler {
	return &SystemHandler{queue: queue}
}

// Health handles GET /v1/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	depth, err := h.queue.Depth(r.Context())
	if err != nil {
		response.Error(w, domain.NewInternalError(err))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":      "ok",
		"queue_depth": depth,
	})
}
