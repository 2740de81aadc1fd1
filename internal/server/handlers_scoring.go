package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/applyflow/internal/graph"
	"github.com/jonathan/applyflow/internal/types"
)

// handlePutCandidateGraph stores a candidate graph. The verification engine
// runs on every write so the Verified flags always reflect the evidence
// edges in the stored graph.
func (s *Server) handlePutCandidateGraph(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	var g types.CandidateGraph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	g.CandidateID = candidateID
	if err := g.Validate(); err != nil {
		s.domainError(w, err)
		return
	}

	graph.Verify(&g)

	if err := s.store.SaveCandidateGraph(r.Context(), &g); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &g)
}

func (s *Server) handleGetCandidateGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.LoadCandidateGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	if g == nil {
		s.errorResponse(w, http.StatusNotFound, "candidate graph not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, g)
}

func (s *Server) handlePutJobGraph(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	var g types.JobGraph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	g.JobID = jobID
	if err := g.Validate(); err != nil {
		s.domainError(w, err)
		return
	}

	if err := s.store.SaveJobGraph(r.Context(), &g); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &g)
}

func (s *Server) handleGetJobGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.LoadJobGraph(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	if g == nil {
		s.errorResponse(w, http.StatusNotFound, "job graph not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, g)
}

// handleComputeScore scores the candidate against the job and persists the
// result. Older scores for the pair are retained.
func (s *Server) handleComputeScore(w http.ResponseWriter, r *http.Request) {
	candidate, job, ok := s.loadPair(w, r)
	if !ok {
		return
	}

	score, err := s.scorer.Score(candidate, job)
	if err != nil {
		s.domainError(w, err)
		return
	}

	if err := s.store.SaveCompatibilityScore(r.Context(), score); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, score)
}

func (s *Server) handleLatestScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.store.LatestCompatibilityScore(r.Context(), r.PathValue("id"), r.PathValue("job_id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	if score == nil {
		s.errorResponse(w, http.StatusNotFound, "no score recorded for this pair")
		return
	}
	s.jsonResponse(w, http.StatusOK, score)
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	scores, err := s.store.ListCompatibilityScores(r.Context(), r.PathValue("id"), r.PathValue("job_id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"scores": scores})
}

func (s *Server) handleGaps(w http.ResponseWriter, r *http.Request) {
	candidate, job, ok := s.loadPair(w, r)
	if !ok {
		return
	}

	gaps, err := s.scorer.AnalyzeGaps(candidate, job)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"gaps": gaps})
}

// loadPair fetches the candidate and job graphs named in the path, writing
// a 404 when either is missing.
func (s *Server) loadPair(w http.ResponseWriter, r *http.Request) (*types.CandidateGraph, *types.JobGraph, bool) {
	ctx := r.Context()

	candidate, err := s.store.LoadCandidateGraph(ctx, r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return nil, nil, false
	}
	if candidate == nil {
		s.errorResponse(w, http.StatusNotFound, "candidate graph not found")
		return nil, nil, false
	}

	job, err := s.store.LoadJobGraph(ctx, r.PathValue("job_id"))
	if err != nil {
		s.domainError(w, err)
		return nil, nil, false
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "job graph not found")
		return nil, nil, false
	}

	return candidate, job, true
}
