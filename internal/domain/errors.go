package domain

import (
	"fmt"
	"strings"
)

// ErrorCode represents a domain error code.
type ErrorCode string

const (
	ErrCodeCycleDetected       ErrorCode = "CYCLE_DETECTED"
	ErrCodeDanglingDependency  ErrorCode = "DANGLING_DEPENDENCY"
	ErrCodeGraphNotFound       ErrorCode = "GRAPH_NOT_FOUND"
	ErrCodeJobNotFound         ErrorCode = "JOB_NOT_FOUND"
	ErrCodeJobAlreadyActive    ErrorCode = "JOB_ALREADY_ACTIVE"
	ErrCodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	ErrCodeNotOwner            ErrorCode = "NOT_OWNER"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents an error in the domain layer with context.
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewCyclicGraphError creates a cycle detected error. The members slice
// holds the node ids involved in at least one cycle.
func NewCyclicGraphError(members []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeCycleDetected,
		Message: fmt.Sprintf("Graph contains a dependency cycle involving: %s", strings.Join(members, ", ")),
		Context: map[string]interface{}{"members": members},
	}
}

// NewDanglingDependencyError creates an error for a dependency id that is
// not present in the node set.
func NewDanglingDependencyError(nodeID, depID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDanglingDependency,
		Message: fmt.Sprintf("Node %s depends on %s, which is not in the graph", nodeID, depID),
		Context: map[string]interface{}{
			"node_id":       nodeID,
			"dependency_id": depID,
		},
	}
}

// NewGraphNotFoundError creates a graph not found error.
func NewGraphNotFoundError(graphID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeGraphNotFound,
		Message: fmt.Sprintf("Graph %s not found", graphID),
		Context: map[string]interface{}{"id": graphID},
	}
}

// NewJobNotFoundError creates a job not found error.
func NewJobNotFoundError(jobID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeJobNotFound,
		Message: fmt.Sprintf("Job %s not found", jobID),
		Context: map[string]interface{}{"id": jobID},
	}
}

// NewJobAlreadyActiveError creates an error for a graph that already has an
// optimization job in flight.
func NewJobAlreadyActiveError(graphID, jobID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeJobAlreadyActive,
		Message: fmt.Sprintf("Graph %s already has an active optimization job", graphID),
		Context: map[string]interface{}{
			"graph_id": graphID,
			"job_id":   jobID,
		},
	}
}

// NewInsufficientCreditsError creates an insufficient credits error.
func NewInsufficientCreditsError(userID string, cost int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientCredits,
		Message: fmt.Sprintf("User %s has insufficient credits for a %d credit job", userID, cost),
		Context: map[string]interface{}{
			"user_id": userID,
			"cost":    cost,
		},
	}
}

// NewNotOwnerError creates an error for access to a graph owned by another user.
func NewNotOwnerError(graphID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotOwner,
		Message: "Graph is owned by another user",
		Context: map[string]interface{}{"graph_id": graphID},
	}
}

// NewValidationError creates a validation error.
func NewValidationError(details []string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Context: map[string]interface{}{"details": details},
	}
}

// NewInternalError creates an internal error wrapping the cause.
func NewInternalError(err error) *DomainError {
	ctx := map[string]interface{}{}
	if err != nil {
		ctx["cause"] = err.Error()
	}
	return &DomainError{
		Code:    ErrCodeInternalError,
		Message: "An internal error occurred",
		Context: ctx,
	}
}
