package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Processor handles a single delivered job id. A nil return acknowledges
// the message; an error leaves it for redelivery.
type Processor interface {
	Process(ctx context.Context, jobID string) error
}

// Config tunes the worker pool.
type Config struct {
	// Workers is the number of concurrent workers to start.
	Workers int

	// PollInterval is how often an idle worker checks for messages.
	PollInterval time.Duration

	// InfoLog and ErrorLog receive runtime events. Nil means the
	// built-in stdout/stderr sinks.
	InfoLog  LogFunc
	ErrorLog LogFunc
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
}

// Manager owns the worker pool over a queue. It doubles as the enqueue
// side: submissions go through it so idle workers get nudged instead of
// waiting out their poll interval.
type Manager struct {
	queue  *Queue
	cfg    Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
	wakeup chan struct{}
}

// NewManager creates a manager over the queue. Workers do not run until
// Start is called.
func NewManager(q *Queue, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		queue:  q,
		cfg:    cfg,
		wakeup: make(chan struct{}, cfg.Workers),
	}
}

// Enqueue appends a job id and wakes an idle worker.
func (m *Manager) Enqueue(ctx context.Context, jobID string) error {
	if err := m.queue.Enqueue(ctx, jobID); err != nil {
		return err
	}
	select {
	case m.wakeup <- struct{}{}:
	default:
	}
	return nil
}

// Start launches the worker pool. Each delivered job id is handed to the
// processor.
func (m *Manager) Start(ctx context.Context, processor Processor) {
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.cfg.logInfo(LogEvent{
		Message: fmt.Sprintf("starting %d workers", m.cfg.Workers),
	})

	for i := 0; i < m.cfg.Workers; i++ {
		w := &worker{
			id:        fmt.Sprintf("worker-%d", i),
			queue:     m.queue,
			processor: processor,
			cfg:       &m.cfg,
			wakeup:    m.wakeup,
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.run(runCtx)
		}()
	}
}

// Shutdown cancels the workers and waits up to timeout for them to exit.
func (m *Manager) Shutdown(timeout time.Duration) {
	if m.cancel == nil {
		return
	}
	m.cfg.logInfo(LogEvent{Message: "shutdown requested, stopping workers"})
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cfg.logInfo(LogEvent{Message: "all workers exited cleanly"})
	case <-time.After(timeout):
		m.cfg.logError(LogEvent{
			Message: fmt.Sprintf("shutdown timed out after %v, some workers may still be running", timeout),
		})
	}
}
