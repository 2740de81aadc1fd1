// Package types provides type definitions for the candidate/job graph
// entities and engine results used throughout the applyflow system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SkillCategory classifies a skill claim
type SkillCategory string

// Skill categories
const (
	CategoryTechnical     SkillCategory = "technical"
	CategorySoft          SkillCategory = "soft"
	CategoryLanguage      SkillCategory = "language"
	CategoryCertification SkillCategory = "certification"
)

// Proficiency represents a self-reported skill level
type Proficiency string

// Proficiency levels, weakest to strongest
const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// proficiencyRanks orders proficiency levels for comparisons
var proficiencyRanks = map[Proficiency]int{
	ProficiencyBeginner:     1,
	ProficiencyIntermediate: 2,
	ProficiencyAdvanced:     3,
	ProficiencyExpert:       4,
}

// Rank returns the ordinal position of the proficiency level.
// Unknown values rank below beginner.
func (p Proficiency) Rank() int {
	return proficiencyRanks[p]
}

// AtLeast reports whether p meets or exceeds the given level
func (p Proficiency) AtLeast(min Proficiency) bool {
	if min == "" {
		return true
	}
	return p.Rank() >= min.Rank()
}

// SkillClaim represents a skill the candidate claims to have.
// Verified is derived from evidence edges by the verification engine;
// it is never set directly by ingestion.
type SkillClaim struct {
	ID              string        `json:"id"`
	Name            string        `json:"name" validate:"required"`
	Category        SkillCategory `json:"category,omitempty"`
	Proficiency     Proficiency   `json:"proficiency"`
	YearsExperience float64       `json:"years_experience" validate:"gte=0"`
	Verified        bool          `json:"verified"`
}

// SkillUsage is an evidence edge from an Experience to a skill
type SkillUsage struct {
	Skill     string `json:"skill" validate:"required"`
	Frequency string `json:"frequency,omitempty"` // daily, weekly, monthly, occasionally
	Impact    string `json:"impact,omitempty"`    // high, medium, low
}

// SkillDemonstration is an evidence edge from a Project to a skill
type SkillDemonstration struct {
	Skill      string `json:"skill" validate:"required"`
	Complexity string `json:"complexity,omitempty"` // basic, intermediate, advanced
	Role       string `json:"role,omitempty"`       // primary, secondary, supporting
}

// Experience represents a work experience entry in the candidate graph
type Experience struct {
	ID           string       `json:"id"`
	Company      string       `json:"company" validate:"required"`
	Position     string       `json:"position"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
	Achievements []string     `json:"achievements,omitempty"`
	SkillsUsed   []SkillUsage `json:"skills_used,omitempty"`
	IsCurrent    bool         `json:"is_current,omitempty"`
}

// Years returns the duration of the experience in years. Open-ended
// experiences are measured against the given reference time.
func (e *Experience) Years(now time.Time) float64 {
	end := now
	if e.EndDate != nil {
		end = *e.EndDate
	}
	if end.Before(e.StartDate) {
		return 0
	}
	return end.Sub(e.StartDate).Hours() / (24 * 365.25)
}

// Project represents a project entry in the candidate graph
type Project struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name" validate:"required"`
	Description         string               `json:"description,omitempty"`
	Technologies        []string             `json:"technologies,omitempty"`
	CompletionDate      *time.Time           `json:"completion_date,omitempty"`
	SkillsDemonstrated  []SkillDemonstration `json:"skills_demonstrated,omitempty"`
	URL                 string               `json:"url,omitempty"`
}

// CandidateGraph is the complete graph of skills, experiences, and projects
// owned by one candidate. Entities reference each other by name or ID
// resolved against the owning graph, never by direct pointer.
type CandidateGraph struct {
	CandidateID string       `json:"candidate_id" validate:"required"`
	Skills      []SkillClaim `json:"skills,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
	Projects    []Project    `json:"projects,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate validates the CandidateGraph using the validator.
func (g *CandidateGraph) Validate() error {
	validate := validator.New()
	if err := validate.Struct(g); err != nil {
		return &ValidationError{Message: "invalid candidate graph", Cause: err}
	}
	return nil
}

// VerifiedSkills returns the subset of skill claims with at least one
// evidence edge. Unverified claims are retained in the graph but are
// invisible to scoring.
func (g *CandidateGraph) VerifiedSkills() []SkillClaim {
	verified := make([]SkillClaim, 0, len(g.Skills))
	for _, claim := range g.Skills {
		if claim.Verified {
			verified = append(verified, claim)
		}
	}
	return verified
}
