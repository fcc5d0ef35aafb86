package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gantry/gantry/internal/api/handler"
	"github.com/gantry/gantry/internal/api/middleware"
	"github.com/gantry/gantry/internal/service"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(graphs *service.GraphService, jobs *service.JobService, audit handler.AuditReader, queue handler.QueueStats) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware chain. UserID runs before Logging so the access
	// log sees the resolved user.
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.UserID)
	r.Use(middleware.Logging)

	systemHandler := handler.NewSystemHandler(queue)
	graphHandler := handler.NewGraphHandler(graphs)
	jobHandler := handler.NewJobHandler(jobs, audit)

	r.Get("/v1/health", systemHandler.Health)

	r.Route("/v1/graphs", func(r chi.Router) {
		r.Post("/", graphHandler.CreateGraph)
		r.Get("/{id}", graphHandler.GetGraph)
		r.Get("/{id}/critical-path", graphHandler.GetCriticalPath)
		r.Get("/{id}/layers", graphHandler.GetLayers)
		r.Post("/{id}/optimize", jobHandler.SubmitJob)
	})

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/{id}", jobHandler.GetJob)
		r.Get("/{id}/history", jobHandler.GetJobHistory)
	})

	return r
}
