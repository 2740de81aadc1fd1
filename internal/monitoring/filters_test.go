package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyflow/internal/types"
)

func posting(id, company, title, location, jobType string, salaryMin, salaryMax int, remote bool) *types.JobGraph {
	return &types.JobGraph{
		JobID:   id,
		Company: types.Company{Name: company},
		Posting: types.JobPosting{
			Title:      title,
			Location:   location,
			JobType:    jobType,
			SalaryMin:  salaryMin,
			SalaryMax:  salaryMax,
			RemoteAllowed: remote,
			PostedDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func jobIDs(jobs []*types.JobGraph) []string {
	ids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.JobID)
	}
	return ids
}

func TestLocationsFilter(t *testing.T) {
	pref := &types.MonitoringPreference{CandidateID: "cand-1", Locations: []string{"Berlin", "Remote"}}
	jobs := []*types.JobGraph{
		posting("j1", "Acme", "Engineer", "Berlin", "", 0, 0, false),
		posting("j2", "Acme", "Engineer", "Munich", "", 0, 0, false),
		posting("j3", "Acme", "Engineer", "Austin", "", 0, 0, true),
	}

	left, step, err := NewLocations().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, Step{Initial: 3, Dropped: 1, Left: 2}, step)
	assert.Equal(t, []string{"j1", "j3"}, jobIDs(left))
}

func TestLocationsFilterEmptyPreferencePassesAll(t *testing.T) {
	pref := &types.MonitoringPreference{CandidateID: "cand-1"}
	jobs := []*types.JobGraph{posting("j1", "Acme", "Engineer", "Berlin", "", 0, 0, false)}

	left, step, err := NewLocations().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, 0, step.Dropped)
	assert.Len(t, left, 1)
}

func TestJobTypesFilter(t *testing.T) {
	pref := &types.MonitoringPreference{CandidateID: "cand-1", JobTypes: []string{"full_time"}}
	jobs := []*types.JobGraph{
		posting("j1", "Acme", "Engineer", "", "full_time", 0, 0, false),
		posting("j2", "Acme", "Engineer", "", "contract", 0, 0, false),
	}

	left, _, err := NewJobTypes().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"j1"}, jobIDs(left))
}

func TestSalaryFilter(t *testing.T) {
	pref := &types.MonitoringPreference{
		CandidateID: "cand-1",
		Salary:      &types.SalaryRange{Min: 90000, Max: 150000},
	}
	jobs := []*types.JobGraph{
		posting("below", "Acme", "Engineer", "", "", 60000, 80000, false),
		posting("overlap", "Acme", "Engineer", "", "", 80000, 110000, false),
		posting("above", "Acme", "Engineer", "", "", 160000, 200000, false),
		posting("unknown", "Acme", "Engineer", "", "", 0, 0, false),
	}

	left, _, err := NewSalary().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"overlap", "unknown"}, jobIDs(left))
}

func TestSalaryFilterUnboundedMax(t *testing.T) {
	pref := &types.MonitoringPreference{
		CandidateID: "cand-1",
		Salary:      &types.SalaryRange{Min: 90000},
	}
	jobs := []*types.JobGraph{
		posting("high", "Acme", "Engineer", "", "", 200000, 250000, false),
		posting("low", "Acme", "Engineer", "", "", 50000, 70000, false),
	}

	left, _, err := NewSalary().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"high"}, jobIDs(left))
}

func TestKeywordsFilter(t *testing.T) {
	pref := &types.MonitoringPreference{CandidateID: "cand-1", Keywords: []string{"kubernetes", "platform"}}

	match := posting("j1", "Acme", "Platform Engineer", "", "", 0, 0, false)
	bySkill := posting("j2", "Acme", "Backend Engineer", "", "", 0, 0, false)
	bySkill.Requirements = []types.Requirement{{Skill: "Kubernetes"}}
	miss := posting("j3", "Acme", "Data Analyst", "", "", 0, 0, false)

	left, _, err := NewKeywords().Apply(context.Background(), pref, []*types.JobGraph{match, bySkill, miss})
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j2"}, jobIDs(left))
}

func TestExcludedCompaniesFilter(t *testing.T) {
	pref := &types.MonitoringPreference{CandidateID: "cand-1", ExcludedCompanies: []string{"Initech"}}
	jobs := []*types.JobGraph{
		posting("j1", "Acme", "Engineer", "", "", 0, 0, false),
		posting("j2", "initech", "Engineer", "", "", 0, 0, false),
	}

	left, _, err := NewExcludedCompanies().Apply(context.Background(), pref, jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"j1"}, jobIDs(left))
}

func TestRunFiltersChain(t *testing.T) {
	pref := &types.MonitoringPreference{
		CandidateID:       "cand-1",
		Locations:         []string{"Berlin"},
		ExcludedCompanies: []string{"Initech"},
	}
	jobs := []*types.JobGraph{
		posting("keep", "Acme", "Engineer", "Berlin", "", 0, 0, false),
		posting("wrong-city", "Acme", "Engineer", "Munich", "", 0, 0, false),
		posting("excluded", "Initech", "Engineer", "Berlin", "", 0, 0, false),
	}

	left, err := RunFilters(context.Background(), nil, pref, DefaultFilters(), jobs)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, jobIDs(left))
}
