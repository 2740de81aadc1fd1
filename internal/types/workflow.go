package types

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus represents the state of an application workflow
type WorkflowStatus string

// Workflow states. The forward order runs from pending through the three
// generation/scoring states to ready_for_review, then through review and
// approval to submitting and submitted. ready_for_review and under_review
// may cycle via request-changes. failed is reachable from any
// generation/scoring/submission stage and cancelled from any non-terminal
// state.
const (
	StatusPending               WorkflowStatus = "pending"
	StatusGeneratingResume      WorkflowStatus = "generating_resume"
	StatusGeneratingCoverLetter WorkflowStatus = "generating_cover_letter"
	StatusCalculatingATSScore   WorkflowStatus = "calculating_ats_score"
	StatusReadyForReview        WorkflowStatus = "ready_for_review"
	StatusUnderReview           WorkflowStatus = "under_review"
	StatusApprovedForSubmission WorkflowStatus = "approved_for_submission"
	StatusSubmitting            WorkflowStatus = "submitting"
	StatusSubmitted             WorkflowStatus = "submitted"
	StatusFailed                WorkflowStatus = "failed"
	StatusCancelled             WorkflowStatus = "cancelled"
)

// Terminal reports whether the status is final. Terminal workflows are
// immutable.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusSubmitted || s == StatusFailed || s == StatusCancelled
}

// Workflow stage names. Each stage is one unit of external work within the
// application state machine.
const (
	StageResumeGeneration      = "resume_generation"
	StageCoverLetterGeneration = "cover_letter_generation"
	StageATSScoring            = "ats_scoring"
	StageSubmission            = "submission"
)

// Stage statuses
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
	StageStatusFailed     = "failed"
)

// StageState tracks one stage's execution within a workflow. Attempts is
// persisted so retry budgets survive process restarts, and CompletedAt marks
// the stage done so a resumed Advance never re-executes its external call.
type StageState struct {
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the stage finished successfully
func (s *StageState) Completed() bool {
	return s != nil && s.Status == StageStatusCompleted
}

// ApplicationWorkflow is the persisted state machine instance for one
// (candidate, job) pair. It is mutated only by the workflow engine; terminal
// workflows are immutable thereafter.
type ApplicationWorkflow struct {
	ID          uuid.UUID              `json:"id"`
	CandidateID string                 `json:"candidate_id"`
	JobID       string                 `json:"job_id"`
	Status      WorkflowStatus         `json:"status"`
	Stages      map[string]*StageState `json:"stages"`
	LastError   string                 `json:"last_error,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Stage returns the state for the named stage, initializing it if absent
func (w *ApplicationWorkflow) Stage(name string) *StageState {
	if w.Stages == nil {
		w.Stages = make(map[string]*StageState)
	}
	state, ok := w.Stages[name]
	if !ok {
		state = &StageState{Status: StageStatusPending}
		w.Stages[name] = state
	}
	return state
}

// Clone returns a deep copy of the workflow
func (w *ApplicationWorkflow) Clone() *ApplicationWorkflow {
	clone := *w
	clone.Stages = make(map[string]*StageState, len(w.Stages))
	for name, state := range w.Stages {
		copied := *state
		clone.Stages[name] = &copied
	}
	return &clone
}
