package queue

import (
	"context"
	"fmt"
	"time"
)

type worker struct {
	id        string
	queue     *Queue
	processor Processor
	cfg       *Config
	wakeup    <-chan struct{}
}

// run keeps draining the queue until the context is canceled. Between
// drains it sleeps on the poll ticker or an enqueue nudge, whichever
// fires first.
func (w *worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.cfg.logInfo(LogEvent{
		Message:  fmt.Sprintf("worker %s started", w.id),
		WorkerID: w.id,
	})

	for {
		select {
		case <-ctx.Done():
			w.cfg.logInfo(LogEvent{
				Message:  fmt.Sprintf("worker %s stopping", w.id),
				WorkerID: w.id,
			})
			return
		case <-ticker.C:
		case <-w.wakeup:
		}
		w.drain(ctx)
	}
}

// drain processes messages until the queue comes up empty.
func (w *worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, err := w.queue.Dequeue(ctx, w.id)
		if err != nil {
			w.cfg.logError(LogEvent{
				Message:  fmt.Sprintf("worker %s failed to dequeue", w.id),
				WorkerID: w.id,
				Err:      err,
			})
			return
		}
		if msg == nil {
			return
		}
		w.process(ctx, msg)
	}
}

func (w *worker) process(ctx context.Context, msg *Message) {
	start := time.Now()
	w.cfg.logInfo(LogEvent{
		Message:  fmt.Sprintf("worker %s processing job %s (attempt %d)", w.id, msg.JobID, msg.RetryCount),
		WorkerID: w.id,
		JobID:    msg.JobID,
	})

	err := w.processor.Process(ctx, msg.JobID)
	elapsed := time.Since(start)

	if err != nil {
		// Leave the message locked. It reappears when the visibility
		// window expires and gets retried on another delivery.
		w.cfg.logError(LogEvent{
			Message:  fmt.Sprintf("job %s failed after %v, will retry", msg.JobID, elapsed),
			WorkerID: w.id,
			JobID:    msg.JobID,
			Duration: &elapsed,
			Err:      err,
		})
		return
	}

	if err := w.queue.Ack(ctx, msg.ID); err != nil {
		w.cfg.logError(LogEvent{
			Message:  fmt.Sprintf("failed to ack job %s", msg.JobID),
			WorkerID: w.id,
			JobID:    msg.JobID,
			Err:      err,
		})
		return
	}
	w.cfg.logInfo(LogEvent{
		Message:  fmt.Sprintf("job %s processed in %v", msg.JobID, elapsed),
		WorkerID: w.id,
		JobID:    msg.JobID,
		Duration: &elapsed,
	})
}
