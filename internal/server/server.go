// Package server provides the HTTP REST API for applyflow.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/monitoring"
	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/server/ratelimit"
	"github.com/jonathan/applyflow/internal/types"
)

// Engine drives application workflows. Satisfied by *workflow.Engine.
type Engine interface {
	Start(ctx context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error)
	Advance(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	BeginReview(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	ApproveForSubmission(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	RequestChanges(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	Cancel(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
}

// Store is the persistence surface the API reads and writes. Satisfied by
// *store.Store.
type Store interface {
	SaveCandidateGraph(ctx context.Context, g *types.CandidateGraph) error
	LoadCandidateGraph(ctx context.Context, candidateID string) (*types.CandidateGraph, error)
	SaveJobGraph(ctx context.Context, g *types.JobGraph) error
	LoadJobGraph(ctx context.Context, jobID string) (*types.JobGraph, error)

	SaveCompatibilityScore(ctx context.Context, score *types.CompatibilityScore) error
	LatestCompatibilityScore(ctx context.Context, candidateID, jobID string) (*types.CompatibilityScore, error)
	ListCompatibilityScores(ctx context.Context, candidateID, jobID string) ([]types.CompatibilityScore, error)

	ListWorkflows(ctx context.Context, candidateID string) ([]*types.ApplicationWorkflow, error)
	GetDocument(ctx context.Context, workflowID uuid.UUID, kind string) (*types.Document, error)

	SaveMonitoringPreference(ctx context.Context, pref *types.MonitoringPreference) error
	GetPreference(ctx context.Context, candidateID string) (*types.MonitoringPreference, error)
	ListNotifications(ctx context.Context, candidateID string) ([]types.JobMatchNotification, error)
}

// Scanner exposes the job monitoring scheduler to the API. Satisfied by
// *monitoring.Scheduler.
type Scanner interface {
	Tick(ctx context.Context) error
	Snapshot() monitoring.Stats
}

// Options configures optional server behavior.
type Options struct {
	Addr      string
	Logger    *zap.Logger
	RateLimit *ratelimit.Config
	Scanner   Scanner // nil disables the /monitoring endpoints
}

// Server is the applyflow HTTP API.
type Server struct {
	httpServer  *http.Server
	store       Store
	engine      Engine
	scorer      *scoring.Scorer
	scanner     Scanner
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
}

// New creates a server around the given store, engine, and scorer.
func New(store Store, engine Engine, scorer *scoring.Scorer, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if scorer == nil {
		scorer = scoring.NewDefaultScorer()
	}

	s := &Server{
		store:       store,
		engine:      engine,
		scorer:      scorer,
		scanner:     opts.Scanner,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		logger:      opts.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Workflow endpoints
	mux.HandleFunc("POST /workflows", s.handleStartWorkflow)
	mux.HandleFunc("GET /workflows", s.handleListWorkflows)
	mux.HandleFunc("GET /workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("POST /workflows/{id}/advance", s.handleAdvanceWorkflow)
	mux.HandleFunc("POST /workflows/{id}/review", s.handleBeginReview)
	mux.HandleFunc("POST /workflows/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /workflows/{id}/changes", s.handleRequestChanges)
	mux.HandleFunc("POST /workflows/{id}/cancel", s.handleCancelWorkflow)
	mux.HandleFunc("GET /workflows/{id}/documents/{kind}", s.handleGetDocument)

	// Graph endpoints
	mux.HandleFunc("PUT /candidates/{id}/graph", s.handlePutCandidateGraph)
	mux.HandleFunc("GET /candidates/{id}/graph", s.handleGetCandidateGraph)
	mux.HandleFunc("PUT /jobs/{id}/graph", s.handlePutJobGraph)
	mux.HandleFunc("GET /jobs/{id}/graph", s.handleGetJobGraph)

	// Scoring endpoints
	mux.HandleFunc("POST /candidates/{id}/jobs/{job_id}/score", s.handleComputeScore)
	mux.HandleFunc("GET /candidates/{id}/jobs/{job_id}/score", s.handleLatestScore)
	mux.HandleFunc("GET /candidates/{id}/jobs/{job_id}/scores", s.handleScoreHistory)
	mux.HandleFunc("GET /candidates/{id}/jobs/{job_id}/gaps", s.handleGaps)

	// Monitoring endpoints
	mux.HandleFunc("PUT /candidates/{id}/monitoring", s.handlePutPreference)
	mux.HandleFunc("GET /candidates/{id}/monitoring", s.handleGetPreference)
	mux.HandleFunc("GET /candidates/{id}/notifications", s.handleListNotifications)
	mux.HandleFunc("POST /monitoring/scan", s.handleScan)
	mux.HandleFunc("GET /monitoring/stats", s.handleScanStats)

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.withRateLimit(s.withLogging(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Advance can run a full generation stage
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens for requests until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID identifies the client by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":     "rate_limit_exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// domainError maps a domain error to its HTTP status and writes it.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
