package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/applyflow/internal/types"
)

// Mutation helpers for candidate graphs. Every mutation re-runs verification
// so the derived Verified flags stay consistent with the evidence edges.

// AddSkill appends a skill claim to the graph and recomputes verification.
// The claim's Verified flag is derived; any caller-provided value is ignored.
func AddSkill(g *types.CandidateGraph, claim types.SkillClaim) (*types.SkillClaim, error) {
	if claim.Name == "" {
		return nil, &types.ValidationError{Message: "skill claim requires a name"}
	}
	if claim.YearsExperience < 0 {
		return nil, &types.ValidationError{Message: fmt.Sprintf("skill %q has negative years of experience", claim.Name)}
	}
	if claim.ID == "" {
		claim.ID = uuid.New().String()
	}
	claim.Name = NormalizeSkillName(claim.Name)
	g.Skills = append(g.Skills, claim)
	Verify(g)
	return &g.Skills[len(g.Skills)-1], nil
}

// RemoveSkill removes a skill claim by ID and recomputes verification.
// Removing a claim never touches evidence edges.
func RemoveSkill(g *types.CandidateGraph, claimID string) bool {
	for i, claim := range g.Skills {
		if claim.ID == claimID {
			g.Skills = append(g.Skills[:i], g.Skills[i+1:]...)
			Verify(g)
			return true
		}
	}
	return false
}

// AddExperience appends a work experience and recomputes verification, since
// its skill usages are evidence edges.
func AddExperience(g *types.CandidateGraph, exp types.Experience) (*types.Experience, error) {
	if exp.Company == "" {
		return nil, &types.ValidationError{Message: "experience requires a company"}
	}
	if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
		return nil, &types.ValidationError{Message: fmt.Sprintf("experience at %q ends before it starts", exp.Company)}
	}
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	g.Experiences = append(g.Experiences, exp)
	Verify(g)
	return &g.Experiences[len(g.Experiences)-1], nil
}

// RemoveExperience removes an experience by ID and recomputes verification.
// Claims that lose their last evidence edge flip to unverified.
func RemoveExperience(g *types.CandidateGraph, experienceID string) bool {
	for i, exp := range g.Experiences {
		if exp.ID == experienceID {
			g.Experiences = append(g.Experiences[:i], g.Experiences[i+1:]...)
			Verify(g)
			return true
		}
	}
	return false
}

// AddProject appends a project and recomputes verification
func AddProject(g *types.CandidateGraph, proj types.Project) (*types.Project, error) {
	if proj.Name == "" {
		return nil, &types.ValidationError{Message: "project requires a name"}
	}
	if proj.ID == "" {
		proj.ID = uuid.New().String()
	}
	g.Projects = append(g.Projects, proj)
	Verify(g)
	return &g.Projects[len(g.Projects)-1], nil
}

// RemoveProject removes a project by ID and recomputes verification
func RemoveProject(g *types.CandidateGraph, projectID string) bool {
	for i, proj := range g.Projects {
		if proj.ID == projectID {
			g.Projects = append(g.Projects[:i], g.Projects[i+1:]...)
			Verify(g)
			return true
		}
	}
	return false
}
