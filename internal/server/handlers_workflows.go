package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/applyflow/internal/types"
)

type startWorkflowRequest struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
}

// handleStartWorkflow creates (or returns) the active workflow for a
// candidate/job pair.
func (s *Server) handleStartWorkflow(w http.ResponseWriter, r *http.Request) {
	var req startWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CandidateID == "" || req.JobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "candidate_id and job_id are required")
		return
	}

	wf, err := s.engine.Start(r.Context(), req.CandidateID, req.JobID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, wf)
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	candidateID := r.URL.Query().Get("candidate_id")
	if candidateID == "" {
		s.errorResponse(w, http.StatusBadRequest, "candidate_id query parameter is required")
		return
	}

	workflows, err := s.store.ListWorkflows(r.Context(), candidateID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"workflows": workflows})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}

	wf, err := s.engine.Get(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wf)
}

// handleAdvanceWorkflow executes the workflow's next stage. The failed
// outcome is still a 200: failure is workflow state, not a request error.
func (s *Server) handleAdvanceWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}

	wf, err := s.engine.Advance(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wf)
}

func (s *Server) handleBeginReview(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, s.engine.BeginReview)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, s.engine.ApproveForSubmission)
}

func (s *Server) handleRequestChanges(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, s.engine.RequestChanges)
}

func (s *Server) handleCancelWorkflow(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, s.engine.Cancel)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}
	kind := r.PathValue("kind")
	if kind != types.DocumentResume && kind != types.DocumentCoverLetter {
		s.errorResponse(w, http.StatusBadRequest, "kind must be resume or cover_letter")
		return
	}

	doc, err := s.store.GetDocument(r.Context(), id, kind)
	if err != nil {
		s.domainError(w, err)
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "document not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// reviewAction runs one of the engine's status transition calls.
func (s *Server) reviewAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}

	wf, err := action(r.Context(), id)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, wf)
}

// workflowID parses the {id} path segment, writing a 400 on failure.
func (s *Server) workflowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid workflow ID")
		return uuid.Nil, false
	}
	return id, true
}
