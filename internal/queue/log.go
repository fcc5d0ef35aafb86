package queue

import (
	"fmt"
	"os"
	"time"
)

// LogEvent describes one noteworthy queue or worker event.
type LogEvent struct {
	// A human-readable message about the event.
	Message string

	// The ID of the worker that triggered the log (if any).
	WorkerID string

	// The job the event concerns, if any.
	JobID string

	// How long processing took, if the event concludes a job.
	Duration *time.Duration

	// The underlying error, if any.
	Err error
}

// LogFunc receives log events. The runtime ships with plain stdout/stderr
// defaults; callers swap in their own sinks via Config.
type LogFunc func(LogEvent)

func defaultInfoLog(ev LogEvent) {
	msg := fmt.Sprintf("[queue:INFO] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stdout, msg)
}

func defaultErrorLog(ev LogEvent) {
	msg := fmt.Sprintf("[queue:ERROR] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stderr, msg)
}

func (c *Config) logInfo(ev LogEvent) {
	if c.InfoLog == nil {
		defaultInfoLog(ev)
		return
	}
	c.InfoLog(ev)
}

func (c *Config) logError(ev LogEvent) {
	if c.ErrorLog == nil {
		defaultErrorLog(ev)
		return
	}
	c.ErrorLog(ev)
}
