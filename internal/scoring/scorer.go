package scoring

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/applyflow/internal/graph"
	"github.com/jonathan/applyflow/internal/types"
)

// Scorer computes compatibility scores between candidate and job graphs.
// Scoring is deterministic: identical graphs always yield identical scores.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// NewDefaultScorer creates a Scorer with DefaultWeights
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultWeights())
}

// RequirementMatch is the per-requirement result shared between scoring and
// gap analysis
type RequirementMatch struct {
	Requirement  types.Requirement `json:"requirement"`
	Matched      bool              `json:"matched"`
	Claim        *types.SkillClaim `json:"claim,omitempty"`
	Contribution float64           `json:"contribution"`
}

// Score computes the compatibility score for a candidate against a job.
// Only verified skill claims participate; the verification mandate from the
// ingestion pipeline is a hard precondition here. A job graph with zero
// requirements fails with DataInsufficientError rather than returning a
// degenerate perfect score.
func (s *Scorer) Score(candidate *types.CandidateGraph, job *types.JobGraph) (*types.CompatibilityScore, error) {
	matches, err := s.Evaluate(candidate, job)
	if err != nil {
		return nil, err
	}

	var numerator, denominator float64
	var matchedYears float64
	mandatoryMatched, mandatoryTotal := 0, 0
	for _, match := range matches {
		weight := s.weights.importanceWeight(match.Requirement.Importance)
		denominator += weight
		if match.Requirement.Mandatory {
			mandatoryTotal++
		}
		if !match.Matched {
			continue
		}
		numerator += match.Contribution
		matchedYears += match.Claim.YearsExperience
		if match.Requirement.Mandatory {
			mandatoryMatched++
		}
	}

	skillMatchPct := 0.0
	if denominator > 0 {
		skillMatchPct = clamp01(numerator / denominator)
	}

	experienceMatchPct := experienceFactor(matchedYears, requiredYearsTotal(job))

	overall := s.weights.SkillShare*skillMatchPct + s.weights.ExperienceShare*experienceMatchPct
	if mandatoryMatched < mandatoryTotal && overall > s.weights.MissingMandatoryCap {
		overall = s.weights.MissingMandatoryCap
	}

	return &types.CompatibilityScore{
		ID:                 uuid.New(),
		CandidateID:        candidate.CandidateID,
		JobID:              job.JobID,
		SkillMatchPct:      skillMatchPct,
		ExperienceMatchPct: experienceMatchPct,
		OverallScore:       clamp01(overall),
		MandatoryMatched:   mandatoryMatched,
		MandatoryTotal:     mandatoryTotal,
		ComputedAt:         time.Now().UTC(),
	}, nil
}

// Evaluate computes the per-requirement match results. Each requirement is
// matched against the verified claims by normalized skill name; a match
// contributes w(importance) × proficiencyFactor × experienceFactor.
func (s *Scorer) Evaluate(candidate *types.CandidateGraph, job *types.JobGraph) ([]RequirementMatch, error) {
	if len(job.Requirements) == 0 {
		return nil, &DataInsufficientError{
			Message: "job " + job.JobID + " has zero requirements",
		}
	}

	claims := verifiedClaimIndex(candidate)

	matches := make([]RequirementMatch, 0, len(job.Requirements))
	for _, req := range job.Requirements {
		match := RequirementMatch{Requirement: req}
		if claim, ok := claims[claimKey(req.Skill)]; ok {
			match.Matched = true
			match.Claim = claim
			match.Contribution = s.weights.importanceWeight(req.Importance) *
				s.weights.proficiencyFactor(claim.Proficiency) *
				experienceFactor(claim.YearsExperience, req.YearsRequired)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// requiredYearsTotal sums YearsRequired across mandatory requirements; this
// is the job's aggregate years-required signal for the experience component
func requiredYearsTotal(job *types.JobGraph) float64 {
	total := 0.0
	for _, req := range job.MandatoryRequirements() {
		total += req.YearsRequired
	}
	return total
}

// verifiedClaimIndex maps normalized skill names to verified claims. When a
// candidate has duplicate claims for a skill, the strongest one wins.
func verifiedClaimIndex(candidate *types.CandidateGraph) map[string]*types.SkillClaim {
	index := make(map[string]*types.SkillClaim)
	for i := range candidate.Skills {
		claim := &candidate.Skills[i]
		if !claim.Verified {
			continue
		}
		key := claimKey(claim.Name)
		if key == "" {
			continue
		}
		existing, ok := index[key]
		if !ok || claim.Proficiency.Rank() > existing.Proficiency.Rank() {
			index[key] = claim
		}
	}
	return index
}

func claimKey(name string) string {
	return strings.ToLower(graph.NormalizeSkillName(name))
}
