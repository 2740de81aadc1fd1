// Package monitoring implements the periodic job scan: new postings are
// filtered against each candidate's preferences, scored, and the best
// matches are delivered as notifications. The scheduler only notifies; the
// candidate decides whether to start an application.
package monitoring

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/types"
)

// Filter represents a single preference-driven filtering step applied to
// new postings before scoring.
type Filter interface {
	Name() string
	Apply(ctx context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// DefaultFilters returns the filter chain applied before scoring, in order
func DefaultFilters() []Filter {
	return []Filter{
		NewExcludedCompanies(),
		NewLocations(),
		NewJobTypes(),
		NewSalary(),
		NewKeywords(),
	}
}

// RunFilters executes the supplied filters sequentially and returns the
// surviving postings. An empty preference list for a filter passes all
// postings through unchanged.
func RunFilters(ctx context.Context, logger *zap.Logger, pref *types.MonitoringPreference, filters []Filter, jobs []*types.JobGraph) ([]*types.JobGraph, error) {
	for _, step := range filters {
		next, info, err := step.Apply(ctx, pref, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
		if logger != nil && info.Dropped > 0 {
			logger.Debug("filter step",
				zap.String("candidate_id", pref.CandidateID),
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}
		jobs = next
	}
	return jobs, nil
}

// keep retains the postings the predicate accepts
func keep(jobs []*types.JobGraph, pred func(*types.JobGraph) bool) ([]*types.JobGraph, Step) {
	initial := len(jobs)
	left := make([]*types.JobGraph, 0, initial)
	for _, job := range jobs {
		if pred(job) {
			left = append(left, job)
		}
	}
	return left, Step{Initial: initial, Dropped: initial - len(left), Left: len(left)}
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

type locationsFilter struct{}

// NewLocations creates a filter that keeps postings in one of the preferred
// locations. Remote-allowed postings always pass.
func NewLocations() Filter { return &locationsFilter{} }

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Apply(_ context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error) {
	if len(pref.Locations) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}
	left, step := keep(jobs, func(job *types.JobGraph) bool {
		if job.Posting.RemoteAllowed {
			return true
		}
		return containsFold(pref.Locations, job.Posting.Location)
	})
	return left, step, nil
}

type jobTypesFilter struct{}

// NewJobTypes creates a filter that keeps postings of a preferred job type
func NewJobTypes() Filter { return &jobTypesFilter{} }

func (f *jobTypesFilter) Name() string { return "job_types" }

func (f *jobTypesFilter) Apply(_ context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error) {
	if len(pref.JobTypes) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}
	left, step := keep(jobs, func(job *types.JobGraph) bool {
		return containsFold(pref.JobTypes, job.Posting.JobType)
	})
	return left, step, nil
}

type salaryFilter struct{}

// NewSalary creates a filter that drops postings whose advertised range
// cannot overlap the preferred range. Postings without salary data pass.
func NewSalary() Filter { return &salaryFilter{} }

func (f *salaryFilter) Name() string { return "salary" }

func (f *salaryFilter) Apply(_ context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error) {
	if pref.Salary == nil {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}
	left, step := keep(jobs, func(job *types.JobGraph) bool {
		if job.Posting.SalaryMin == 0 && job.Posting.SalaryMax == 0 {
			return true
		}
		high := job.Posting.SalaryMax
		if high == 0 {
			high = job.Posting.SalaryMin
		}
		if high < pref.Salary.Min {
			return false
		}
		if pref.Salary.Max > 0 && job.Posting.SalaryMin > pref.Salary.Max {
			return false
		}
		return true
	})
	return left, step, nil
}

type keywordsFilter struct{}

// NewKeywords creates a filter that keeps postings mentioning at least one
// preferred keyword in the title, description, or requirements.
func NewKeywords() Filter { return &keywordsFilter{} }

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Apply(_ context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error) {
	if len(pref.Keywords) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}
	left, step := keep(jobs, func(job *types.JobGraph) bool {
		haystack := strings.ToLower(job.Posting.Title + " " + job.Posting.Description)
		for _, req := range job.Requirements {
			haystack += " " + strings.ToLower(req.Skill)
		}
		for _, kw := range pref.Keywords {
			if strings.Contains(haystack, strings.ToLower(strings.TrimSpace(kw))) {
				return true
			}
		}
		return false
	})
	return left, step, nil
}

type excludedCompaniesFilter struct{}

// NewExcludedCompanies creates a filter that drops postings from companies
// the candidate excluded.
func NewExcludedCompanies() Filter { return &excludedCompaniesFilter{} }

func (f *excludedCompaniesFilter) Name() string { return "excluded_companies" }

func (f *excludedCompaniesFilter) Apply(_ context.Context, pref *types.MonitoringPreference, jobs []*types.JobGraph) ([]*types.JobGraph, Step, error) {
	if len(pref.ExcludedCompanies) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}
	left, step := keep(jobs, func(job *types.JobGraph) bool {
		return !containsFold(pref.ExcludedCompanies, job.Company.Name)
	})
	return left, step, nil
}
