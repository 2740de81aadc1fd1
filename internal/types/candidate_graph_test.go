package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProficiency_Rank(t *testing.T) {
	assert.Less(t, ProficiencyBeginner.Rank(), ProficiencyIntermediate.Rank())
	assert.Less(t, ProficiencyIntermediate.Rank(), ProficiencyAdvanced.Rank())
	assert.Less(t, ProficiencyAdvanced.Rank(), ProficiencyExpert.Rank())
	assert.Equal(t, 0, Proficiency("unknown").Rank())
}

func TestProficiency_AtLeast(t *testing.T) {
	assert.True(t, ProficiencyExpert.AtLeast(ProficiencyAdvanced))
	assert.True(t, ProficiencyAdvanced.AtLeast(ProficiencyAdvanced))
	assert.False(t, ProficiencyBeginner.AtLeast(ProficiencyIntermediate))
	assert.True(t, ProficiencyBeginner.AtLeast(""))
}

func TestExperience_Years(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	closed := &Experience{StartDate: start, EndDate: &end}
	assert.InDelta(t, 3.0, closed.Years(now), 0.05)

	open := &Experience{StartDate: start}
	assert.InDelta(t, 5.0, open.Years(now), 0.05)

	inverted := &Experience{StartDate: end, EndDate: &start}
	assert.Equal(t, 0.0, inverted.Years(now))
}

func TestCandidateGraph_VerifiedSkills(t *testing.T) {
	graph := &CandidateGraph{
		CandidateID: "cand_1",
		Skills: []SkillClaim{
			{Name: "Go", Verified: true},
			{Name: "Rust", Verified: false},
			{Name: "SQL", Verified: true},
		},
	}

	verified := graph.VerifiedSkills()
	assert.Len(t, verified, 2)
	assert.Equal(t, "Go", verified[0].Name)
	assert.Equal(t, "SQL", verified[1].Name)
}

func TestCompatibilityScore_Beats(t *testing.T) {
	higher := &CompatibilityScore{OverallScore: 0.8, MandatoryMatched: 1}
	lower := &CompatibilityScore{OverallScore: 0.6, MandatoryMatched: 3}
	assert.True(t, higher.Beats(lower))
	assert.False(t, lower.Beats(higher))

	// Equal overall scores favor mandatory coverage
	tied := &CompatibilityScore{OverallScore: 0.8, MandatoryMatched: 2}
	assert.True(t, tied.Beats(higher))
	assert.False(t, higher.Beats(tied))
}
