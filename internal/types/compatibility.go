package types

import (
	"time"

	"github.com/google/uuid"
)

// CompatibilityScore summarizes candidate/job fit as a scalar in [0,1].
// Scores are created fresh per scoring call and never mutated; superseded
// scores are retained for audit.
type CompatibilityScore struct {
	ID                 uuid.UUID `json:"id"`
	CandidateID        string    `json:"candidate_id"`
	JobID              string    `json:"job_id"`
	SkillMatchPct      float64   `json:"skill_match_pct"`
	ExperienceMatchPct float64   `json:"experience_match_pct"`
	OverallScore       float64   `json:"overall_score"`
	MandatoryMatched   int       `json:"mandatory_matched"`
	MandatoryTotal     int       `json:"mandatory_total"`
	ComputedAt         time.Time `json:"computed_at"`
}

// Beats reports whether s outranks other. Equal overall scores favor the
// score with more mandatory-requirement coverage.
func (s *CompatibilityScore) Beats(other *CompatibilityScore) bool {
	if s.OverallScore != other.OverallScore {
		return s.OverallScore > other.OverallScore
	}
	return s.MandatoryMatched > other.MandatoryMatched
}

// GapSeverity classifies why a requirement is considered a gap
type GapSeverity string

// Gap severities
const (
	GapMissing         GapSeverity = "missing"          // no verified claim matches the requirement
	GapBelowLevel      GapSeverity = "below_level"      // matched claim proficiency is below the requirement
	GapBelowExperience GapSeverity = "below_experience" // matched claim years are below the requirement
)

// SkillGap represents a single missing or weak skill relative to a
// job requirement
type SkillGap struct {
	Requirement        Requirement `json:"requirement"`
	Severity           GapSeverity `json:"severity"`
	CurrentProficiency Proficiency `json:"current_proficiency,omitempty"`
	CurrentYears       float64     `json:"current_years,omitempty"`
}
