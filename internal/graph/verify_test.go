package graph

import (
	"testing"
	"time"

	"github.com/jonathan/applyflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"golang", "Go"},
		{"  js  ", "JavaScript"},
		{"k8s", "Kubernetes"},
		{"postgres", "PostgreSQL"},
		{"python", "Python"},
		{"SQL", "SQL"},
		{"PyTorch", "PyTorch"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeSkillName(tt.input), "input %q", tt.input)
	}
}

func TestSameSkill(t *testing.T) {
	assert.True(t, SameSkill("golang", "Go"))
	assert.True(t, SameSkill("JS", "javascript"))
	assert.True(t, SameSkill("Python", "python"))
	assert.False(t, SameSkill("Go", "Rust"))
}

func TestVerify_FlagsFollowEvidence(t *testing.T) {
	g := &types.CandidateGraph{
		CandidateID: "cand_1",
		Skills: []types.SkillClaim{
			{ID: "s1", Name: "Go"},
			{ID: "s2", Name: "Rust"},
			{ID: "s3", Name: "React"},
		},
		Experiences: []types.Experience{
			{ID: "e1", Company: "Acme", SkillsUsed: []types.SkillUsage{
				{Skill: "golang", Frequency: "daily", Impact: "high"},
			}},
		},
		Projects: []types.Project{
			{ID: "p1", Name: "dashboard", Technologies: []string{"reactjs"}},
		},
	}

	Verify(g)

	assert.True(t, g.Skills[0].Verified, "Go has experience evidence via golang alias")
	assert.False(t, g.Skills[1].Verified, "Rust has no evidence anywhere")
	assert.True(t, g.Skills[2].Verified, "React has project technology evidence")
}

func TestVerify_RemovingLastEvidenceFlipsFlag(t *testing.T) {
	g := &types.CandidateGraph{
		CandidateID: "cand_1",
		Skills:      []types.SkillClaim{{ID: "s1", Name: "Go"}},
		Experiences: []types.Experience{
			{ID: "e1", Company: "Acme", SkillsUsed: []types.SkillUsage{{Skill: "Go"}}},
		},
	}

	Verify(g)
	require.True(t, g.Skills[0].Verified)

	removed := RemoveExperience(g, "e1")
	require.True(t, removed)
	assert.False(t, g.Skills[0].Verified, "claim flips to unverified when its last evidence edge is removed")
	assert.Len(t, g.Skills, 1, "claims are never deleted by verification")
}

func TestVerify_ProjectDemonstrationCounts(t *testing.T) {
	g := &types.CandidateGraph{
		CandidateID: "cand_1",
		Skills:      []types.SkillClaim{{ID: "s1", Name: "Kubernetes"}},
		Projects: []types.Project{
			{ID: "p1", Name: "cluster-ops", SkillsDemonstrated: []types.SkillDemonstration{
				{Skill: "k8s", Complexity: "advanced", Role: "primary"},
			}},
		},
	}

	Verify(g)
	assert.True(t, g.Skills[0].Verified)
}

func TestAddSkill_DerivesVerified(t *testing.T) {
	g := &types.CandidateGraph{
		CandidateID: "cand_1",
		Experiences: []types.Experience{
			{ID: "e1", Company: "Acme", SkillsUsed: []types.SkillUsage{{Skill: "Go"}}},
		},
	}

	// Caller-provided Verified is ignored; the flag is derived
	claim, err := AddSkill(g, types.SkillClaim{Name: "golang", Proficiency: types.ProficiencyExpert, Verified: false})
	require.NoError(t, err)
	assert.Equal(t, "Go", claim.Name)
	assert.True(t, claim.Verified)
	assert.NotEmpty(t, claim.ID)

	unbacked, err := AddSkill(g, types.SkillClaim{Name: "Haskell", Verified: true})
	require.NoError(t, err)
	assert.False(t, unbacked.Verified)
}

func TestAddSkill_Validation(t *testing.T) {
	g := &types.CandidateGraph{CandidateID: "cand_1"}

	_, err := AddSkill(g, types.SkillClaim{Name: ""})
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = AddSkill(g, types.SkillClaim{Name: "Go", YearsExperience: -1})
	assert.ErrorAs(t, err, &verr)
}

func TestAddExperience_Validation(t *testing.T) {
	g := &types.CandidateGraph{CandidateID: "cand_1"}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(-1, 0, 0)

	_, err := AddExperience(g, types.Experience{Company: ""})
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = AddExperience(g, types.Experience{Company: "Acme", StartDate: start, EndDate: &end})
	assert.ErrorAs(t, err, &verr)
}

func TestRemoveSkill(t *testing.T) {
	g := &types.CandidateGraph{
		CandidateID: "cand_1",
		Skills:      []types.SkillClaim{{ID: "s1", Name: "Go"}, {ID: "s2", Name: "SQL"}},
	}

	assert.True(t, RemoveSkill(g, "s1"))
	assert.Len(t, g.Skills, 1)
	assert.False(t, RemoveSkill(g, "missing"))
}
