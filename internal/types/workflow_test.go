package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowStatus_Terminal(t *testing.T) {
	assert.True(t, StatusSubmitted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())

	for _, s := range []WorkflowStatus{
		StatusPending, StatusGeneratingResume, StatusGeneratingCoverLetter,
		StatusCalculatingATSScore, StatusReadyForReview, StatusUnderReview,
		StatusApprovedForSubmission, StatusSubmitting,
	} {
		assert.False(t, s.Terminal(), "%s should not be terminal", s)
	}
}

func TestApplicationWorkflow_Stage_Initializes(t *testing.T) {
	wf := &ApplicationWorkflow{Status: StatusPending}

	stage := wf.Stage(StageResumeGeneration)
	assert.Equal(t, StageStatusPending, stage.Status)
	assert.Equal(t, 0, stage.Attempts)

	stage.Attempts = 2
	assert.Equal(t, 2, wf.Stage(StageResumeGeneration).Attempts)
}

func TestApplicationWorkflow_Clone_IsDeep(t *testing.T) {
	wf := &ApplicationWorkflow{Status: StatusGeneratingResume}
	wf.Stage(StageResumeGeneration).Attempts = 1

	clone := wf.Clone()
	clone.Stage(StageResumeGeneration).Attempts = 5
	clone.Status = StatusFailed

	assert.Equal(t, 1, wf.Stage(StageResumeGeneration).Attempts)
	assert.Equal(t, StatusGeneratingResume, wf.Status)
}

func TestMonitoringPreference_Validate(t *testing.T) {
	pref := &MonitoringPreference{
		CandidateID:             "cand_1",
		Enabled:                 true,
		MinMatchScore:           0.7,
		MaxNotificationsPerScan: 3,
	}
	assert.NoError(t, pref.Validate())

	pref.MinMatchScore = 1.5
	err := pref.Validate()
	assert.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
