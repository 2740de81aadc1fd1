// Package scoring computes weighted compatibility scores and skill gaps
// between a candidate graph and a job graph.
package scoring

import "github.com/jonathan/applyflow/internal/types"

// Weights holds the scoring parameters. The exact constants are tunable
// configuration, not fixed law; DefaultWeights returns the values used in
// production.
type Weights struct {
	// Importance maps a requirement's importance to its weight in the
	// skill-match numerator and denominator.
	Importance map[types.Importance]float64 `json:"importance"`
	// Proficiency maps a claim's proficiency to its match factor.
	Proficiency map[types.Proficiency]float64 `json:"proficiency"`
	// SkillShare and ExperienceShare combine the two component percentages
	// into the overall score. They should sum to 1.
	SkillShare      float64 `json:"skill_share"`
	ExperienceShare float64 `json:"experience_share"`
	// MissingMandatoryCap bounds the overall score when a mandatory
	// requirement has no matching verified claim.
	MissingMandatoryCap float64 `json:"missing_mandatory_cap"`
}

// DefaultWeights returns the default scoring parameters
func DefaultWeights() Weights {
	return Weights{
		Importance: map[types.Importance]float64{
			types.ImportanceCritical: 4,
			types.ImportanceHigh:     3,
			types.ImportanceMedium:   2,
			types.ImportanceLow:      1,
		},
		Proficiency: map[types.Proficiency]float64{
			types.ProficiencyBeginner:     0.25,
			types.ProficiencyIntermediate: 0.5,
			types.ProficiencyAdvanced:     0.75,
			types.ProficiencyExpert:       1.0,
		},
		SkillShare:          0.7,
		ExperienceShare:     0.3,
		MissingMandatoryCap: 0.5,
	}
}

// importanceWeight returns the weight for an importance level, falling back
// to the medium weight for unknown or unset values
func (w Weights) importanceWeight(imp types.Importance) float64 {
	if weight, ok := w.Importance[imp]; ok {
		return weight
	}
	return w.Importance[types.ImportanceMedium]
}

// proficiencyFactor returns the match factor for a proficiency level,
// falling back to the intermediate factor for unknown or unset values
func (w Weights) proficiencyFactor(p types.Proficiency) float64 {
	if factor, ok := w.Proficiency[p]; ok {
		return factor
	}
	return w.Proficiency[types.ProficiencyIntermediate]
}

// experienceFactor compares claimed years against required years, capped at 1
func experienceFactor(claimedYears, requiredYears float64) float64 {
	if requiredYears <= 0 {
		return 1.0
	}
	factor := claimedYears / requiredYears
	if factor > 1.0 {
		return 1.0
	}
	return factor
}

// clamp01 bounds a value to [0,1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
