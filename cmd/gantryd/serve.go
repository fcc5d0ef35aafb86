package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gantry/gantry/internal/api"
	"github.com/gantry/gantry/internal/config"
	"github.com/gantry/gantry/internal/queue"
	"github.com/gantry/gantry/internal/server"
	"github.com/gantry/gantry/internal/service"
	"github.com/gantry/gantry/internal/solver"
	"github.com/gantry/gantry/internal/store/sqlite"
)

// runServer wires the full stack and blocks until shutdown.
func runServer(cfg *config.Config) error {
	store, err := sqlite.Open(cfg.Database.Path, cfg.Credits.InitialGrant)
	if err != nil {
		return err
	}

	q := queue.NewQueue(store.DB(), cfg.Worker.Visibility.Duration, cfg.Worker.MaxRetries)
	manager := queue.NewManager(q, queue.Config{
		Workers:      cfg.Worker.Count,
		PollInterval: cfg.Worker.PollInterval.Duration,
	})

	var backend solver.Backend
	if cfg.Solver.Endpoint != "" {
		remote := solver.NewHTTPRemoteSolver(cfg.Solver.Endpoint)
		backend = solver.NewPollingBackend(remote, cfg.Solver.PollInterval.Duration, cfg.Solver.PollCeiling.Duration)
		log.Printf("Remote solver configured at %s", cfg.Solver.Endpoint)
	} else {
		log.Printf("No solver endpoint configured, all jobs take the classical fallback")
	}
	optimizer := solver.NewOptimizer(backend, cfg.Solver.Budget.Duration)

	graphSvc := service.NewGraphService(store.Graphs())
	jobSvc := service.NewJobService(store.Graphs(), store.Jobs(), store.Credits(), store.Audit(), manager, optimizer, cfg.Credits.JobCost)

	manager.Start(context.Background(), jobSvc)

	router := api.NewRouter(graphSvc, jobSvc, store.Audit(), q)

	srv := server.New(cfg.Addr(), router, func() {
		manager.Shutdown(30 * time.Second)
		if err := store.Close(); err != nil {
			log.Printf("Warning: error closing database: %v", err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
