package domain

import "time"

// JobTransition names the lifecycle event recorded in an audit entry.
type JobTransition string

const (
	TransitionQueued    JobTransition = "queued"
	TransitionRunning   JobTransition = "running"
	TransitionCompleted JobTransition = "completed"
	TransitionFailed    JobTransition = "failed"
	TransitionFellBack  JobTransition = "fell_back"
)

// ValidJobTransitions contains all valid transition values.
var ValidJobTransitions = []JobTransition{
	TransitionQueued,
	TransitionRunning,
	TransitionCompleted,
	TransitionFailed,
	TransitionFellBack,
}

// IsValid checks if the transition is a valid job transition.
func (t JobTransition) IsValid() bool {
	for _, v := range ValidJobTransitions {
		if t == v {
			return true
		}
	}
	return false
}

// AuditEntry records a single job lifecycle event. Entries for one job are
// strictly ordered by transition time.
type AuditEntry struct {
	ID         int64             `json:"id"`
	JobID      string            `json:"job_id"`
	Transition JobTransition     `json:"transition"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// NewAuditEntry creates an audit entry for the given job and transition.
func NewAuditEntry(jobID string, transition JobTransition) AuditEntry {
	return AuditEntry{
		JobID:      jobID,
		Transition: transition,
		RecordedAt: time.Now().UTC(),
	}
}

// WithMeta returns a copy of the entry with the given metadata key set.
func (e AuditEntry) WithMeta(key, value string) AuditEntry {
	meta := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		meta[k] = v
	}
	meta[key] = value
	e.Metadata = meta
	return e
}
