package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyflow/internal/monitoring"
	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/server/ratelimit"
	"github.com/jonathan/applyflow/internal/types"
	"github.com/jonathan/applyflow/internal/workflow"
)

// stubStore is an in-memory Store for handler tests.
type stubStore struct {
	candidates    map[string]*types.CandidateGraph
	jobs          map[string]*types.JobGraph
	scores        []types.CompatibilityScore
	workflows     map[string][]*types.ApplicationWorkflow
	documents     map[string]*types.Document
	preferences   map[string]*types.MonitoringPreference
	notifications map[string][]types.JobMatchNotification
}

func newStubStore() *stubStore {
	return &stubStore{
		candidates:    make(map[string]*types.CandidateGraph),
		jobs:          make(map[string]*types.JobGraph),
		workflows:     make(map[string][]*types.ApplicationWorkflow),
		documents:     make(map[string]*types.Document),
		preferences:   make(map[string]*types.MonitoringPreference),
		notifications: make(map[string][]types.JobMatchNotification),
	}
}

func (s *stubStore) SaveCandidateGraph(_ context.Context, g *types.CandidateGraph) error {
	s.candidates[g.CandidateID] = g
	return nil
}

func (s *stubStore) LoadCandidateGraph(_ context.Context, candidateID string) (*types.CandidateGraph, error) {
	return s.candidates[candidateID], nil
}

func (s *stubStore) SaveJobGraph(_ context.Context, g *types.JobGraph) error {
	s.jobs[g.JobID] = g
	return nil
}

func (s *stubStore) LoadJobGraph(_ context.Context, jobID string) (*types.JobGraph, error) {
	return s.jobs[jobID], nil
}

func (s *stubStore) SaveCompatibilityScore(_ context.Context, score *types.CompatibilityScore) error {
	s.scores = append(s.scores, *score)
	return nil
}

func (s *stubStore) LatestCompatibilityScore(_ context.Context, candidateID, jobID string) (*types.CompatibilityScore, error) {
	for i := len(s.scores) - 1; i >= 0; i-- {
		if s.scores[i].CandidateID == candidateID && s.scores[i].JobID == jobID {
			score := s.scores[i]
			return &score, nil
		}
	}
	return nil, nil
}

func (s *stubStore) ListCompatibilityScores(_ context.Context, candidateID, jobID string) ([]types.CompatibilityScore, error) {
	var out []types.CompatibilityScore
	for _, score := range s.scores {
		if score.CandidateID == candidateID && score.JobID == jobID {
			out = append(out, score)
		}
	}
	return out, nil
}

func (s *stubStore) ListWorkflows(_ context.Context, candidateID string) ([]*types.ApplicationWorkflow, error) {
	return s.workflows[candidateID], nil
}

func (s *stubStore) GetDocument(_ context.Context, workflowID uuid.UUID, kind string) (*types.Document, error) {
	return s.documents[workflowID.String()+":"+kind], nil
}

func (s *stubStore) SaveMonitoringPreference(_ context.Context, pref *types.MonitoringPreference) error {
	s.preferences[pref.CandidateID] = pref
	return nil
}

func (s *stubStore) GetPreference(_ context.Context, candidateID string) (*types.MonitoringPreference, error) {
	return s.preferences[candidateID], nil
}

func (s *stubStore) ListNotifications(_ context.Context, candidateID string) ([]types.JobMatchNotification, error) {
	return s.notifications[candidateID], nil
}

// stubEngine is a scripted Engine for handler tests.
type stubEngine struct {
	startFn func(candidateID, jobID string) (*types.ApplicationWorkflow, error)
	byID    map[uuid.UUID]*types.ApplicationWorkflow
	err     error
}

func (e *stubEngine) Start(_ context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error) {
	if e.startFn != nil {
		return e.startFn(candidateID, jobID)
	}
	return &types.ApplicationWorkflow{
		ID:          uuid.New(),
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      types.StatusPending,
	}, nil
}

func (e *stubEngine) lookup(id uuid.UUID) (*types.ApplicationWorkflow, error) {
	if e.err != nil {
		return nil, e.err
	}
	if wf, ok := e.byID[id]; ok {
		return wf, nil
	}
	return nil, &workflow.NotFoundError{WorkflowID: id}
}

func (e *stubEngine) Advance(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

func (e *stubEngine) BeginReview(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

func (e *stubEngine) ApproveForSubmission(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

func (e *stubEngine) RequestChanges(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

func (e *stubEngine) Cancel(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

func (e *stubEngine) Get(_ context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.lookup(id)
}

type stubScanner struct {
	ticks int
	err   error
	stats monitoring.Stats
}

func (s *stubScanner) Tick(context.Context) error {
	s.ticks++
	if s.err != nil {
		return s.err
	}
	s.stats.ScansCompleted++
	return nil
}

func (s *stubScanner) Snapshot() monitoring.Stats {
	return s.stats
}

type testServer struct {
	*Server
	store   *stubStore
	engine  *stubEngine
	scanner *stubScanner
}

func newTestServer() *testServer {
	store := newStubStore()
	engine := &stubEngine{byID: make(map[uuid.UUID]*types.ApplicationWorkflow)}
	scanner := &stubScanner{}
	srv := New(store, engine, nil, Options{
		RateLimit: &ratelimit.Config{Enabled: false},
		Scanner:   scanner,
	})
	return &testServer{Server: srv, store: store, engine: engine, scanner: scanner}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func serverCandidateGraph() *types.CandidateGraph {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return &types.CandidateGraph{
		CandidateID: "cand-1",
		Skills: []types.SkillClaim{
			{ID: "s1", Name: "Go", Proficiency: types.ProficiencyExpert, YearsExperience: 6},
			{ID: "s2", Name: "Rust", Proficiency: types.ProficiencyBeginner, YearsExperience: 1},
		},
		Experiences: []types.Experience{
			{
				ID:        "e1",
				Company:   "Acme",
				Position:  "Engineer",
				StartDate: start,
				IsCurrent: true,
				SkillsUsed: []types.SkillUsage{
					{Skill: "Go", Frequency: "daily", Impact: "high"},
				},
			},
		},
	}
}

func serverJobGraph() *types.JobGraph {
	return &types.JobGraph{
		JobID:   "job-1",
		Company: types.Company{Name: "Initech"},
		Posting: types.JobPosting{
			Title:      "Backend Engineer",
			PostedDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		Requirements: []types.Requirement{
			{Skill: "Go", Importance: types.ImportanceCritical, YearsRequired: 4, Mandatory: true},
			{Skill: "Kubernetes", Importance: types.ImportanceMedium},
		},
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.Equal(t, "ok", resp["status"])
}

func TestPutCandidateGraphRunsVerification(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPut, "/candidates/cand-1/graph", serverCandidateGraph())
	require.Equal(t, http.StatusOK, w.Code)

	stored := ts.store.candidates["cand-1"]
	require.NotNil(t, stored)
	require.Len(t, stored.Skills, 2)
	assert.True(t, stored.Skills[0].Verified, "Go has an evidence edge")
	assert.False(t, stored.Skills[1].Verified, "Rust has no evidence edge")
}

func TestPutCandidateGraphInvalidBody(t *testing.T) {
	ts := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/candidates/cand-1/graph", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCandidateGraphNotFound(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/candidates/ghost/graph", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutAndGetJobGraph(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPut, "/jobs/job-1/graph", serverJobGraph())
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/jobs/job-1/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.JobGraph](t, w)
	assert.Equal(t, "job-1", got.JobID)
	assert.Len(t, got.Requirements, 2)
}

func TestStartWorkflow(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/workflows", map[string]string{
		"candidate_id": "cand-1",
		"job_id":       "job-1",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	got := decodeBody[types.ApplicationWorkflow](t, w)
	assert.Equal(t, "cand-1", got.CandidateID)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestStartWorkflowMissingFields(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/workflows", map[string]string{"candidate_id": "cand-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartWorkflowConflict(t *testing.T) {
	ts := newTestServer()
	ts.engine.startFn = func(candidateID, jobID string) (*types.ApplicationWorkflow, error) {
		return nil, &workflow.ConcurrencyConflictError{CandidateID: candidateID, JobID: jobID}
	}

	w := ts.do(t, http.MethodPost, "/workflows", map[string]string{
		"candidate_id": "cand-1",
		"job_id":       "job-1",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetWorkflowNotFound(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/workflows/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdvanceWorkflowInvalidID(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/workflows/not-a-uuid/advance", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.Contains(t, resp["error"], "invalid workflow ID")
}

func TestAdvanceWorkflowReturnsState(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.engine.byID[id] = &types.ApplicationWorkflow{
		ID:     id,
		Status: types.StatusGeneratingResume,
	}

	w := ts.do(t, http.MethodPost, "/workflows/"+id.String()+"/advance", nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.ApplicationWorkflow](t, w)
	assert.Equal(t, types.StatusGeneratingResume, got.Status)
}

func TestReviewActionInvalidTransition(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.engine.err = &workflow.InvalidTransitionError{
		WorkflowID: id,
		From:       types.StatusPending,
		To:         types.StatusApprovedForSubmission,
	}

	w := ts.do(t, http.MethodPost, "/workflows/"+id.String()+"/approve", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetDocument(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.store.documents[id.String()+":resume"] = &types.Document{
		Kind:    "resume",
		Content: "# Resume",
		Format:  "markdown",
	}

	w := ts.do(t, http.MethodGet, "/workflows/"+id.String()+"/documents/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.Document](t, w)
	assert.Equal(t, "# Resume", got.Content)

	w = ts.do(t, http.MethodGet, "/workflows/"+id.String()+"/documents/cover_letter", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/workflows/"+id.String()+"/documents/transcript", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComputeScorePersistsResult(t *testing.T) {
	ts := newTestServer()
	ts.store.candidates["cand-1"] = serverCandidateGraph()
	ts.store.candidates["cand-1"].Skills[0].Verified = true
	ts.store.jobs["job-1"] = serverJobGraph()

	w := ts.do(t, http.MethodPost, "/candidates/cand-1/jobs/job-1/score", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	got := decodeBody[types.CompatibilityScore](t, w)
	assert.Greater(t, got.OverallScore, 0.0)
	assert.Equal(t, 1, got.MandatoryMatched)
	require.Len(t, ts.store.scores, 1)

	w = ts.do(t, http.MethodGet, "/candidates/cand-1/jobs/job-1/score", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestComputeScoreMissingGraphs(t *testing.T) {
	ts := newTestServer()
	ts.store.candidates["cand-1"] = serverCandidateGraph()

	w := ts.do(t, http.MethodPost, "/candidates/ghost/jobs/job-1/score", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/candidates/cand-1/jobs/ghost/score", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComputeScoreInsufficientData(t *testing.T) {
	ts := newTestServer()
	ts.store.candidates["cand-1"] = serverCandidateGraph()
	job := serverJobGraph()
	job.Requirements = nil
	ts.store.jobs["job-1"] = job

	w := ts.do(t, http.MethodPost, "/candidates/cand-1/jobs/job-1/score", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody[map[string]string](t, w)
	assert.Contains(t, resp["error"], "insufficient data")
}

func TestLatestScoreNotFound(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/candidates/cand-1/jobs/job-1/score", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGapsEndpoint(t *testing.T) {
	ts := newTestServer()
	candidate := serverCandidateGraph()
	candidate.Skills[0].Verified = true
	ts.store.candidates["cand-1"] = candidate
	ts.store.jobs["job-1"] = serverJobGraph()

	w := ts.do(t, http.MethodGet, "/candidates/cand-1/jobs/job-1/gaps", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string][]types.SkillGap](t, w)
	gaps := resp["gaps"]
	require.Len(t, gaps, 1)
	assert.Equal(t, "Kubernetes", gaps[0].Requirement.Skill)
	assert.Equal(t, types.GapMissing, gaps[0].Severity)
}

func TestPutPreferenceValidates(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPut, "/candidates/cand-1/monitoring", map[string]any{
		"enabled":         true,
		"min_match_score": 1.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPut, "/candidates/cand-1/monitoring", map[string]any{
		"enabled":         true,
		"min_match_score": 0.7,
	})
	require.Equal(t, http.StatusOK, w.Code)

	stored := ts.store.preferences["cand-1"]
	require.NotNil(t, stored)
	assert.Equal(t, "cand-1", stored.CandidateID)
	assert.InDelta(t, 0.7, stored.MinMatchScore, 1e-9)
}

func TestListNotifications(t *testing.T) {
	ts := newTestServer()
	ts.store.notifications["cand-1"] = []types.JobMatchNotification{
		{CandidateID: "cand-1", JobID: "job-1", MatchScore: 0.8},
	}

	w := ts.do(t, http.MethodGet, "/candidates/cand-1/notifications", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string][]types.JobMatchNotification](t, w)
	require.Len(t, resp["notifications"], 1)
	assert.Equal(t, "job-1", resp["notifications"][0].JobID)
}

func TestScanTriggersScheduler(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/monitoring/scan", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, ts.scanner.ticks)
	stats := decodeBody[monitoring.Stats](t, w)
	assert.Equal(t, 1, stats.ScansCompleted)
}

func TestScanUnavailableWithoutScheduler(t *testing.T) {
	store := newStubStore()
	engine := &stubEngine{byID: make(map[uuid.UUID]*types.ApplicationWorkflow)}
	srv := New(store, engine, nil, Options{RateLimit: &ratelimit.Config{Enabled: false}})

	req := httptest.NewRequest(http.MethodPost, "/monitoring/scan", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&workflow.NotFoundError{WorkflowID: uuid.New()}))
	assert.Equal(t, http.StatusConflict, HTTPStatus(&workflow.InvalidTransitionError{}))
	assert.Equal(t, http.StatusConflict, HTTPStatus(&workflow.ConcurrencyConflictError{}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&types.ValidationError{Message: "bad"}))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(&scoring.DataInsufficientError{Message: "sparse"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}
