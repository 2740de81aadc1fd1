package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/applyflow/internal/types"
)

func (s *Server) handlePutPreference(w http.ResponseWriter, r *http.Request) {
	candidateID := r.PathValue("id")

	var pref types.MonitoringPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pref.CandidateID = candidateID
	pref.UpdatedAt = time.Now().UTC()
	if err := pref.Validate(); err != nil {
		s.domainError(w, err)
		return
	}

	if err := s.store.SaveMonitoringPreference(r.Context(), &pref); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &pref)
}

func (s *Server) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	pref, err := s.store.GetPreference(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	if pref == nil {
		s.errorResponse(w, http.StatusNotFound, "no monitoring preference for candidate")
		return
	}
	s.jsonResponse(w, http.StatusOK, pref)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.ListNotifications(r.Context(), r.PathValue("id"))
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"notifications": notifications})
}

// handleScan triggers a monitoring scan immediately instead of waiting for
// the next scheduled tick.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "monitoring is not enabled")
		return
	}

	if err := s.scanner.Tick(r.Context()); err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.scanner.Snapshot())
}

func (s *Server) handleScanStats(w http.ResponseWriter, _ *http.Request) {
	if s.scanner == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "monitoring is not enabled")
		return
	}
	s.jsonResponse(w, http.StatusOK, s.scanner.Snapshot())
}
