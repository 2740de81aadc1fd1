package scoring

import (
	"sort"

	"github.com/jonathan/applyflow/internal/types"
)

// requiredProficiency maps a requirement's importance to the minimum
// proficiency a matching claim must hold to avoid a gap
var requiredProficiency = map[types.Importance]types.Proficiency{
	types.ImportanceCritical: types.ProficiencyAdvanced,
	types.ImportanceHigh:     types.ProficiencyIntermediate,
	types.ImportanceMedium:   types.ProficiencyBeginner,
	types.ImportanceLow:      types.ProficiencyBeginner,
}

// AnalyzeGaps derives the candidate's missing and weak skills relative to
// the job's requirements. It reuses the scorer's per-requirement match
// results and has no side effects; downstream project recommendations
// consume the ordered list.
//
// Ordering: mandatory-and-unmatched first, then by descending importance
// weight, then by ascending current proficiency.
func (s *Scorer) AnalyzeGaps(candidate *types.CandidateGraph, job *types.JobGraph) ([]types.SkillGap, error) {
	matches, err := s.Evaluate(candidate, job)
	if err != nil {
		return nil, err
	}

	gaps := make([]types.SkillGap, 0, len(matches))
	for _, match := range matches {
		gap, ok := gapFor(match)
		if ok {
			gaps = append(gaps, gap)
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		a, b := gaps[i], gaps[j]
		aMissingMandatory := a.Requirement.Mandatory && a.Severity == types.GapMissing
		bMissingMandatory := b.Requirement.Mandatory && b.Severity == types.GapMissing
		if aMissingMandatory != bMissingMandatory {
			return aMissingMandatory
		}
		if a.Requirement.Importance.Rank() != b.Requirement.Importance.Rank() {
			return a.Requirement.Importance.Rank() > b.Requirement.Importance.Rank()
		}
		return a.CurrentProficiency.Rank() < b.CurrentProficiency.Rank()
	})

	return gaps, nil
}

// gapFor decides whether a requirement match constitutes a gap. Unmatched
// requirements are missing; matched claims below the proficiency floor or
// required years are weak. Proficiency shortfalls take precedence.
func gapFor(match RequirementMatch) (types.SkillGap, bool) {
	if !match.Matched {
		return types.SkillGap{
			Requirement: match.Requirement,
			Severity:    types.GapMissing,
		}, true
	}

	claim := match.Claim
	if floor, ok := requiredProficiency[match.Requirement.Importance]; ok && !claim.Proficiency.AtLeast(floor) {
		return types.SkillGap{
			Requirement:        match.Requirement,
			Severity:           types.GapBelowLevel,
			CurrentProficiency: claim.Proficiency,
			CurrentYears:       claim.YearsExperience,
		}, true
	}

	if match.Requirement.YearsRequired > 0 && claim.YearsExperience < match.Requirement.YearsRequired {
		return types.SkillGap{
			Requirement:        match.Requirement,
			Severity:           types.GapBelowExperience,
			CurrentProficiency: claim.Proficiency,
			CurrentYears:       claim.YearsExperience,
		}, true
	}

	return types.SkillGap{}, false
}
