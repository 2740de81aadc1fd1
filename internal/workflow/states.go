// Package workflow implements the per-application state machine that drives
// resume and cover letter generation, scoring, review, and submission
// through retryable stages to a terminal outcome.
package workflow

import "github.com/jonathan/applyflow/internal/types"

// transitions is the explicit edge table of the state machine. under_review
// → ready_for_review is the only non-forward edge; it carries the unbounded
// user-driven refinement loop.
var transitions = map[types.WorkflowStatus][]types.WorkflowStatus{
	types.StatusPending:               {types.StatusGeneratingResume},
	types.StatusGeneratingResume:      {types.StatusGeneratingCoverLetter, types.StatusFailed},
	types.StatusGeneratingCoverLetter: {types.StatusCalculatingATSScore, types.StatusFailed},
	types.StatusCalculatingATSScore:   {types.StatusReadyForReview, types.StatusFailed},
	types.StatusReadyForReview:        {types.StatusUnderReview},
	types.StatusUnderReview:           {types.StatusReadyForReview, types.StatusApprovedForSubmission},
	types.StatusApprovedForSubmission: {types.StatusSubmitting},
	types.StatusSubmitting:            {types.StatusSubmitted, types.StatusFailed},
}

// canTransition reports whether the edge from → to exists. Cancellation from
// any non-terminal state is always allowed.
func canTransition(from, to types.WorkflowStatus) bool {
	if to == types.StatusCancelled {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// stageFor maps a working status to the stage it executes. Statuses without
// an external stage (review states, terminals) are absent.
var stageFor = map[types.WorkflowStatus]string{
	types.StatusGeneratingResume:      types.StageResumeGeneration,
	types.StatusGeneratingCoverLetter: types.StageCoverLetterGeneration,
	types.StatusCalculatingATSScore:   types.StageATSScoring,
	types.StatusSubmitting:            types.StageSubmission,
}
