package domain

// NodeStatus represents the current state of a task node.
type NodeStatus string

const (
	NodePending    NodeStatus = "pending"
	NodeInProgress NodeStatus = "in_progress"
	NodeCompleted  NodeStatus = "completed"
	NodeBlocked    NodeStatus = "blocked"
)

// ValidNodeStatuses contains all valid node status values.
var ValidNodeStatuses = []NodeStatus{NodePending, NodeInProgress, NodeCompleted, NodeBlocked}

// IsValid checks if the status is a valid node status.
func (s NodeStatus) IsValid() bool {
	for _, v := range ValidNodeStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority ranks nodes that become ready at the same time.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// ValidPriority checks if the priority value is within valid range (0-3).
func ValidPriority(p Priority) bool {
	return p >= PriorityLow && p <= PriorityCritical
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// TaskNode is a unit of work inside a task graph. Dependencies name the
// ids of nodes that must complete before this one can start.
type TaskNode struct {
	ID               string     `json:"id"`
	DurationEstimate float64    `json:"duration_estimate"`
	Dependencies     []string   `json:"dependencies,omitempty"`
	Priority         Priority   `json:"priority"`
	Status           NodeStatus `json:"status"`

	// Layer and Position are computed metadata: the scheduler writes them
	// after ordering, callers only read them.
	Layer    int `json:"layer"`
	Position int `json:"position"`
}

// NewTaskNode creates a node with the given id, duration estimate, and
// dependency ids. Default status is NodePending, default priority is medium.
func NewTaskNode(id string, duration float64, deps ...string) *TaskNode {
	return &TaskNode{
		ID:               id,
		DurationEstimate: duration,
		Dependencies:     deps,
		Priority:         PriorityMedium,
		Status:           NodePending,
	}
}
