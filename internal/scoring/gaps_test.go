package scoring

import (
	"testing"

	"github.com/jonathan/applyflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeGaps_MissingAndWeak(t *testing.T) {
	candidate := candidateWith(
		types.SkillClaim{Name: "Go", Proficiency: types.ProficiencyBeginner, YearsExperience: 1, Verified: true},
		types.SkillClaim{Name: "SQL", Proficiency: types.ProficiencyExpert, YearsExperience: 6, Verified: true},
	)
	job := jobWith(
		types.Requirement{Skill: "Go", Importance: types.ImportanceCritical, YearsRequired: 3, Mandatory: true},
		types.Requirement{Skill: "SQL", Importance: types.ImportanceHigh, YearsRequired: 2, Mandatory: true},
		types.Requirement{Skill: "Kubernetes", Importance: types.ImportanceMedium},
	)

	gaps, err := NewDefaultScorer().AnalyzeGaps(candidate, job)
	require.NoError(t, err)
	require.Len(t, gaps, 2)

	// Go is matched but below the proficiency floor for a critical
	// requirement; Kubernetes is missing entirely; SQL is fully covered.
	bySkill := map[string]types.SkillGap{}
	for _, gap := range gaps {
		bySkill[gap.Requirement.Skill] = gap
	}
	assert.Equal(t, types.GapBelowLevel, bySkill["Go"].Severity)
	assert.Equal(t, types.ProficiencyBeginner, bySkill["Go"].CurrentProficiency)
	assert.Equal(t, types.GapMissing, bySkill["Kubernetes"].Severity)
	assert.NotContains(t, bySkill, "SQL")
}

func TestAnalyzeGaps_Ordering(t *testing.T) {
	candidate := candidateWith(
		types.SkillClaim{Name: "Terraform", Proficiency: types.ProficiencyBeginner, YearsExperience: 1, Verified: true},
	)
	job := jobWith(
		types.Requirement{Skill: "Terraform", Importance: types.ImportanceHigh, YearsRequired: 4},
		types.Requirement{Skill: "Go", Importance: types.ImportanceCritical, Mandatory: true},
		types.Requirement{Skill: "Docker", Importance: types.ImportanceLow},
		types.Requirement{Skill: "Kubernetes", Importance: types.ImportanceHigh},
	)

	gaps, err := NewDefaultScorer().AnalyzeGaps(candidate, job)
	require.NoError(t, err)
	require.Len(t, gaps, 4)

	// Mandatory-and-unmatched first, then descending importance weight.
	assert.Equal(t, "Go", gaps[0].Requirement.Skill)
	skills := []string{gaps[1].Requirement.Skill, gaps[2].Requirement.Skill}
	assert.ElementsMatch(t, []string{"Terraform", "Kubernetes"}, skills)
	assert.Equal(t, "Docker", gaps[3].Requirement.Skill)

	// Among equal importance, lower current proficiency sorts first;
	// Kubernetes is unmatched (rank 0) and precedes the beginner Terraform.
	assert.Equal(t, "Kubernetes", gaps[1].Requirement.Skill)
}

func TestAnalyzeGaps_BelowExperience(t *testing.T) {
	candidate := candidateWith(
		types.SkillClaim{Name: "Python", Proficiency: types.ProficiencyExpert, YearsExperience: 1, Verified: true},
	)
	job := jobWith(
		types.Requirement{Skill: "Python", Importance: types.ImportanceHigh, YearsRequired: 5, Mandatory: true},
	)

	gaps, err := NewDefaultScorer().AnalyzeGaps(candidate, job)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, types.GapBelowExperience, gaps[0].Severity)
	assert.Equal(t, 1.0, gaps[0].CurrentYears)
}

func TestAnalyzeGaps_ZeroRequirementsFails(t *testing.T) {
	_, err := NewDefaultScorer().AnalyzeGaps(candidateWith(), jobWith())
	var insufficient *DataInsufficientError
	assert.ErrorAs(t, err, &insufficient)
}

func TestAnalyzeGaps_NoGaps(t *testing.T) {
	candidate := candidateWith(
		types.SkillClaim{Name: "Go", Proficiency: types.ProficiencyExpert, YearsExperience: 8, Verified: true},
	)
	job := jobWith(
		types.Requirement{Skill: "Go", Importance: types.ImportanceCritical, YearsRequired: 3, Mandatory: true},
	)

	gaps, err := NewDefaultScorer().AnalyzeGaps(candidate, job)
	require.NoError(t, err)
	assert.Empty(t, gaps)
}
