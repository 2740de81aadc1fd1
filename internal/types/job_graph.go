package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Importance weights a job requirement
type Importance string

// Importance levels, weakest to strongest
const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// importanceRanks orders importance levels for gap ordering
var importanceRanks = map[Importance]int{
	ImportanceLow:      1,
	ImportanceMedium:   2,
	ImportanceHigh:     3,
	ImportanceCritical: 4,
}

// Rank returns the ordinal position of the importance level
func (i Importance) Rank() int {
	return importanceRanks[i]
}

// Requirement represents a single skill requirement of a job posting
type Requirement struct {
	Skill         string     `json:"skill" validate:"required"`
	Importance    Importance `json:"importance"`
	YearsRequired float64    `json:"years_required,omitempty"`
	Mandatory     bool       `json:"mandatory"`
}

// Company describes the employer behind a job posting
type Company struct {
	Name     string `json:"name" validate:"required"`
	Industry string `json:"industry,omitempty"`
	Size     string `json:"size,omitempty"` // startup, small, medium, large, enterprise
}

// JobPosting holds the posting-level fields of a job graph
type JobPosting struct {
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	SalaryMin     int       `json:"salary_min,omitempty"`
	SalaryMax     int       `json:"salary_max,omitempty"`
	PostedDate    time.Time `json:"posted_date"`
	URL           string    `json:"url,omitempty"`
	JobType       string    `json:"job_type,omitempty"` // full_time, part_time, contract, internship
	RemoteAllowed bool      `json:"remote_allowed,omitempty"`
}

// JobGraph is the company, posting, and ordered requirements for one job.
// A JobGraph is immutable once scored against; new scoring events are
// recorded rather than mutating history.
type JobGraph struct {
	JobID        string        `json:"job_id" validate:"required"`
	Company      Company       `json:"company"`
	Posting      JobPosting    `json:"posting"`
	Requirements []Requirement `json:"requirements,omitempty"`
}

// Validate validates the JobGraph using the validator.
func (j *JobGraph) Validate() error {
	validate := validator.New()
	if err := validate.Struct(j); err != nil {
		return &ValidationError{Message: "invalid job graph", Cause: err}
	}
	return nil
}

// MandatoryRequirements returns the subset of requirements marked mandatory
func (j *JobGraph) MandatoryRequirements() []Requirement {
	mandatory := make([]Requirement, 0, len(j.Requirements))
	for _, req := range j.Requirements {
		if req.Mandatory {
			mandatory = append(mandatory, req)
		}
	}
	return mandatory
}
