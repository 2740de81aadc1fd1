package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SalaryRange bounds acceptable compensation for monitored jobs.
// A zero Max means unbounded.
type SalaryRange struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gte=0"`
}

// MonitoringPreference holds a candidate's job-monitoring settings.
// It is mutated by the candidate and read fresh by the scheduler each tick.
type MonitoringPreference struct {
	CandidateID             string       `json:"candidate_id" validate:"required"`
	Enabled                 bool         `json:"enabled"`
	Locations               []string     `json:"locations,omitempty"`
	JobTypes                []string     `json:"job_types,omitempty"`
	Salary                  *SalaryRange `json:"salary,omitempty"`
	MinMatchScore           float64      `json:"min_match_score" validate:"gte=0,lte=1"`
	MaxNotificationsPerScan int          `json:"max_notifications_per_scan" validate:"gte=0"`
	Keywords                []string     `json:"keywords,omitempty"`
	ExcludedCompanies       []string     `json:"excluded_companies,omitempty"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

// Validate validates the MonitoringPreference using the validator.
func (p *MonitoringPreference) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Message: "invalid monitoring preference", Cause: err}
	}
	return nil
}

// JobMatchNotification carries enough identifiers for the recipient to start
// an application workflow on approval. The scheduler never starts one
// unilaterally.
type JobMatchNotification struct {
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	MatchScore  float64   `json:"match_score"`
	PostedDate  time.Time `json:"posted_date"`
}
