package workflow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/applyflow/internal/types"
)

// InvalidTransitionError represents a caller requesting a state change the
// transition table does not allow. It is a contract violation, never retried.
type InvalidTransitionError struct {
	WorkflowID uuid.UUID
	From       types.WorkflowStatus
	To         types.WorkflowStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for workflow %s: %s -> %s", e.WorkflowID, e.From, e.To)
}

// ConcurrencyConflictError represents a duplicate workflow creation for a
// (candidate, job) pair that already has an active workflow. Start resolves
// it by returning the existing workflow rather than surfacing an error.
type ConcurrencyConflictError struct {
	CandidateID string
	JobID       string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("active workflow already exists for candidate %s and job %s", e.CandidateID, e.JobID)
}

// NotFoundError represents a workflow ID with no persisted state
type NotFoundError struct {
	WorkflowID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow not found: %s", e.WorkflowID)
}
