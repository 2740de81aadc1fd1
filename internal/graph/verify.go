package graph

import (
	"strings"
	"time"

	"github.com/jonathan/applyflow/internal/types"
)

// Verify recomputes the Verified flag of every skill claim in the graph.
// A claim is verified when at least one evidence edge from an experience or
// project references the same skill by normalized name. Claims with no
// evidence are flagged unverified, never deleted; downstream scoring filters
// them out while the candidate's data stays intact.
func Verify(g *types.CandidateGraph) {
	evidence := evidenceIndex(g)
	for i := range g.Skills {
		key := normalizedKey(g.Skills[i].Name)
		g.Skills[i].Verified = key != "" && evidence[key]
	}
	g.UpdatedAt = time.Now().UTC()
}

// evidenceIndex collects the normalized skill names that have at least one
// evidence edge anywhere in the graph
func evidenceIndex(g *types.CandidateGraph) map[string]bool {
	index := make(map[string]bool)
	add := func(name string) {
		if key := normalizedKey(name); key != "" {
			index[key] = true
		}
	}

	for _, exp := range g.Experiences {
		for _, usage := range exp.SkillsUsed {
			add(usage.Skill)
		}
	}
	for _, proj := range g.Projects {
		for _, demo := range proj.SkillsDemonstrated {
			add(demo.Skill)
		}
		for _, tech := range proj.Technologies {
			add(tech)
		}
	}
	return index
}

// HasEvidence reports whether the graph contains at least one evidence edge
// for the given skill name
func HasEvidence(g *types.CandidateGraph, skillName string) bool {
	return evidenceIndex(g)[normalizedKey(skillName)]
}

func normalizedKey(name string) string {
	return strings.ToLower(NormalizeSkillName(name))
}
