package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/external"
	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/types"
)

// Store persists workflow state. The persisted state is the sole source of
// truth for resumption after a crash.
type Store interface {
	// CreateWorkflow inserts a new workflow. It returns a
	// *ConcurrencyConflictError when an active (non-terminal) workflow
	// already exists for the same (candidate, job) pair.
	CreateWorkflow(ctx context.Context, wf *types.ApplicationWorkflow) error
	// ActiveWorkflow returns the non-terminal workflow for the pair, or nil
	ActiveWorkflow(ctx context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error)
	// GetWorkflow returns the workflow by ID, or nil when absent
	GetWorkflow(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	// SaveWorkflow persists the workflow's current state
	SaveWorkflow(ctx context.Context, wf *types.ApplicationWorkflow) error
	// SaveDocument persists a generated document for the workflow
	SaveDocument(ctx context.Context, workflowID uuid.UUID, doc *types.Document) error
}

// GraphStore loads the graphs the stages operate on and records scores
type GraphStore interface {
	LoadCandidateGraph(ctx context.Context, candidateID string) (*types.CandidateGraph, error)
	LoadJobGraph(ctx context.Context, jobID string) (*types.JobGraph, error)
	SaveCompatibilityScore(ctx context.Context, score *types.CompatibilityScore) error
}

// Generator produces application documents. Calls may fail or time out; the
// engine retries them per the stage retry policy.
type Generator interface {
	GenerateResume(ctx context.Context, candidate *types.CandidateGraph, job *types.JobGraph) (*types.Document, error)
	GenerateCoverLetter(ctx context.Context, candidate *types.CandidateGraph, job *types.JobGraph) (*types.Document, error)
}

// Submitter delivers the finished application to the job source
type Submitter interface {
	Submit(ctx context.Context, wf *types.ApplicationWorkflow, job *types.JobGraph) error
}

// Scorer computes the ATS compatibility score for the scoring stage
type Scorer interface {
	Score(candidate *types.CandidateGraph, job *types.JobGraph) (*types.CompatibilityScore, error)
}

// Notifier is told when an application reaches review. Delivery failures are
// the channel's concern; the engine only logs them.
type Notifier interface {
	ApplicationReady(ctx context.Context, wf *types.ApplicationWorkflow)
}

// Options configures engine retry and timeout behavior
type Options struct {
	// MaxAttempts caps attempts per stage before the workflow fails
	MaxAttempts int
	// StageTimeout bounds each external call
	StageTimeout time.Duration
	// Backoff spaces retry attempts
	Backoff external.Backoff
	// Logger defaults to zap.NewNop
	Logger *zap.Logger
	// Notifier is optional
	Notifier Notifier
}

// Engine drives application workflows through their stages. At most one
// Advance runs per workflow ID at a time; concurrent Start calls for the
// same pair are deserialized by the store's uniqueness contract.
type Engine struct {
	store     Store
	graphs    GraphStore
	generator Generator
	submitter Submitter
	scorer    Scorer
	notifier  Notifier

	maxAttempts  int
	stageTimeout time.Duration
	backoff      external.Backoff
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewEngine creates a workflow engine
func NewEngine(store Store, graphs GraphStore, generator Generator, submitter Submitter, scorer Scorer, opts Options) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = 2 * time.Minute
	}
	if opts.Backoff == (external.Backoff{}) {
		opts.Backoff = external.DefaultBackoff()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		store:        store,
		graphs:       graphs,
		generator:    generator,
		submitter:    submitter,
		scorer:       scorer,
		notifier:     opts.Notifier,
		maxAttempts:  opts.MaxAttempts,
		stageTimeout: opts.StageTimeout,
		backoff:      opts.Backoff,
		logger:       opts.Logger,
	}
}

// Start creates a new workflow in pending for the (candidate, job) pair, or
// returns the existing one when an active workflow already exists. The
// trigger is idempotent: duplicate workflows for the same pair cannot be
// created, even under concurrent calls.
func (e *Engine) Start(ctx context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error) {
	if candidateID == "" || jobID == "" {
		return nil, &types.ValidationError{Message: "candidate and job IDs are required"}
	}

	existing, err := e.store.ActiveWorkflow(ctx, candidateID, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active workflow: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	wf := &types.ApplicationWorkflow{
		ID:          uuid.New(),
		CandidateID: candidateID,
		JobID:       jobID,
		Status:      types.StatusPending,
		Stages:      make(map[string]*types.StageState),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.store.CreateWorkflow(ctx, wf); err != nil {
		var conflict *ConcurrencyConflictError
		if errors.As(err, &conflict) {
			// Lost the race; the winner's workflow is the one.
			winner, lookupErr := e.store.ActiveWorkflow(ctx, candidateID, jobID)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to resolve conflicting workflow: %w", lookupErr)
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	e.logger.Info("workflow started",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("candidate_id", candidateID),
		zap.String("job_id", jobID),
	)
	return wf, nil
}

// Advance executes the workflow's next stage and transitions on success.
// Calling Advance on a terminal workflow, a workflow waiting on review, or a
// stage that already completed performs zero additional external calls and
// returns the current state. Stage failures are retried with exponential
// backoff up to the attempt cap, after which the workflow fails with the
// last error recorded.
func (e *Engine) Advance(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if wf == nil {
		return nil, &NotFoundError{WorkflowID: id}
	}
	if wf.Status.Terminal() {
		return wf, nil
	}

	switch wf.Status {
	case types.StatusPending:
		if err := e.transition(ctx, wf, types.StatusGeneratingResume); err != nil {
			return nil, err
		}
		return e.runStage(ctx, wf)

	case types.StatusGeneratingResume, types.StatusGeneratingCoverLetter,
		types.StatusCalculatingATSScore, types.StatusSubmitting:
		if !wf.Stage(stageFor[wf.Status]).Completed() {
			// Resume an interrupted stage in place.
			return e.runStage(ctx, wf)
		}
		return e.advanceCompleted(ctx, wf)

	case types.StatusReadyForReview, types.StatusUnderReview:
		// Waiting on the reviewer; nothing to execute.
		return wf, nil

	case types.StatusApprovedForSubmission:
		if err := e.transition(ctx, wf, types.StatusSubmitting); err != nil {
			return nil, err
		}
		return e.runStage(ctx, wf)

	default:
		return wf, nil
	}
}

// advanceCompleted moves past a working state whose stage already finished
func (e *Engine) advanceCompleted(ctx context.Context, wf *types.ApplicationWorkflow) (*types.ApplicationWorkflow, error) {
	switch wf.Status {
	case types.StatusGeneratingResume:
		if err := e.transition(ctx, wf, types.StatusGeneratingCoverLetter); err != nil {
			return nil, err
		}
		return e.runStage(ctx, wf)
	case types.StatusGeneratingCoverLetter:
		if err := e.transition(ctx, wf, types.StatusCalculatingATSScore); err != nil {
			return nil, err
		}
		return e.runStage(ctx, wf)
	case types.StatusCalculatingATSScore:
		if err := e.transition(ctx, wf, types.StatusReadyForReview); err != nil {
			return nil, err
		}
		if e.notifier != nil {
			e.notifier.ApplicationReady(ctx, wf)
		}
		return wf, nil
	case types.StatusSubmitting:
		if err := e.transition(ctx, wf, types.StatusSubmitted); err != nil {
			return nil, err
		}
		e.logger.Info("workflow submitted", zap.String("workflow_id", wf.ID.String()))
		return wf, nil
	default:
		return wf, nil
	}
}

// BeginReview moves a workflow from ready_for_review into under_review
func (e *Engine) BeginReview(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.reviewTransition(ctx, id, types.StatusReadyForReview, types.StatusUnderReview)
}

// ApproveForSubmission approves a reviewed application. Valid only from
// under_review; any other source state is a contract violation.
func (e *Engine) ApproveForSubmission(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.reviewTransition(ctx, id, types.StatusUnderReview, types.StatusApprovedForSubmission)
}

// RequestChanges sends a reviewed application back for refinement. Valid
// only from under_review; the loop back to ready_for_review is unbounded.
func (e *Engine) RequestChanges(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return e.reviewTransition(ctx, id, types.StatusUnderReview, types.StatusReadyForReview)
}

// Cancel aborts a non-terminal workflow
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if wf == nil {
		return nil, &NotFoundError{WorkflowID: id}
	}
	if wf.Status.Terminal() {
		return nil, &InvalidTransitionError{WorkflowID: id, From: wf.Status, To: types.StatusCancelled}
	}
	if err := e.transition(ctx, wf, types.StatusCancelled); err != nil {
		return nil, err
	}
	return wf, nil
}

// Get returns the current workflow state
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if wf == nil {
		return nil, &NotFoundError{WorkflowID: id}
	}
	return wf, nil
}

func (e *Engine) reviewTransition(ctx context.Context, id uuid.UUID, from, to types.WorkflowStatus) (*types.ApplicationWorkflow, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	wf, err := e.store.GetWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if wf == nil {
		return nil, &NotFoundError{WorkflowID: id}
	}
	if wf.Status != from {
		return nil, &InvalidTransitionError{WorkflowID: id, From: wf.Status, To: to}
	}
	if err := e.transition(ctx, wf, to); err != nil {
		return nil, err
	}
	return wf, nil
}

// transition applies a validated edge and persists the new state
func (e *Engine) transition(ctx context.Context, wf *types.ApplicationWorkflow, to types.WorkflowStatus) error {
	if !canTransition(wf.Status, to) {
		return &InvalidTransitionError{WorkflowID: wf.ID, From: wf.Status, To: to}
	}
	from := wf.Status
	wf.Status = to
	wf.UpdatedAt = time.Now().UTC()
	if err := e.store.SaveWorkflow(ctx, wf); err != nil {
		wf.Status = from
		return fmt.Errorf("failed to persist transition to %s: %w", to, err)
	}
	e.logger.Debug("workflow transition",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

// runStage executes the stage for the workflow's current status, retrying
// transient failures until the persisted attempt counter reaches the cap.
// Completed stages are never re-executed.
func (e *Engine) runStage(ctx context.Context, wf *types.ApplicationWorkflow) (*types.ApplicationWorkflow, error) {
	stageName := stageFor[wf.Status]
	state := wf.Stage(stageName)
	if state.Completed() {
		return wf, nil
	}

	state.Status = types.StageStatusInProgress
	if err := e.store.SaveWorkflow(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to persist stage start: %w", err)
	}

	for {
		if state.Attempts >= e.maxAttempts {
			return e.failWorkflow(ctx, wf, stageName, errors.New(state.LastError))
		}
		if state.Attempts > 0 {
			if err := e.backoff.Wait(ctx, state.Attempts-1); err != nil {
				return nil, err
			}
		}

		err := e.executeStage(ctx, wf, stageName)
		if err == nil {
			now := time.Now().UTC()
			state.Status = types.StageStatusCompleted
			state.CompletedAt = &now
			wf.LastError = ""
			wf.UpdatedAt = now
			if saveErr := e.store.SaveWorkflow(ctx, wf); saveErr != nil {
				return nil, fmt.Errorf("failed to persist stage completion: %w", saveErr)
			}
			return wf, nil
		}

		state.Attempts++
		state.LastError = err.Error()
		wf.LastError = err.Error()
		wf.UpdatedAt = time.Now().UTC()
		if saveErr := e.store.SaveWorkflow(ctx, wf); saveErr != nil {
			return nil, fmt.Errorf("failed to persist stage failure: %w", saveErr)
		}

		if !external.IsRetryable(err) {
			return e.failWorkflow(ctx, wf, stageName, err)
		}
		e.logger.Warn("stage attempt failed",
			zap.String("workflow_id", wf.ID.String()),
			zap.String("stage", stageName),
			zap.Int("attempt", state.Attempts),
			zap.Error(err),
		)
	}
}

// failWorkflow records the terminal failure. The failure itself is state,
// not an error: the caller gets back an inspectable failed workflow.
func (e *Engine) failWorkflow(ctx context.Context, wf *types.ApplicationWorkflow, stageName string, cause error) (*types.ApplicationWorkflow, error) {
	state := wf.Stage(stageName)
	state.Status = types.StageStatusFailed
	if cause != nil && cause.Error() != "" {
		wf.LastError = cause.Error()
	}
	wf.Status = types.StatusFailed
	wf.UpdatedAt = time.Now().UTC()
	if err := e.store.SaveWorkflow(ctx, wf); err != nil {
		return nil, fmt.Errorf("failed to persist workflow failure: %w", err)
	}
	e.logger.Error("workflow failed",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("stage", stageName),
		zap.String("last_error", wf.LastError),
	)
	return wf, nil
}

// executeStage performs the external call for one stage, bounded by the
// stage timeout
func (e *Engine) executeStage(ctx context.Context, wf *types.ApplicationWorkflow, stageName string) error {
	stageCtx, cancel := context.WithTimeout(ctx, e.stageTimeout)
	defer cancel()

	switch stageName {
	case types.StageResumeGeneration:
		candidate, job, err := e.loadGraphs(stageCtx, wf)
		if err != nil {
			return err
		}
		doc, err := e.generator.GenerateResume(stageCtx, candidate, job)
		if err != nil {
			return err
		}
		return e.store.SaveDocument(ctx, wf.ID, doc)

	case types.StageCoverLetterGeneration:
		candidate, job, err := e.loadGraphs(stageCtx, wf)
		if err != nil {
			return err
		}
		doc, err := e.generator.GenerateCoverLetter(stageCtx, candidate, job)
		if err != nil {
			return err
		}
		return e.store.SaveDocument(ctx, wf.ID, doc)

	case types.StageATSScoring:
		candidate, job, err := e.loadGraphs(stageCtx, wf)
		if err != nil {
			return err
		}
		score, err := e.scorer.Score(candidate, job)
		if err != nil {
			var insufficient *scoring.DataInsufficientError
			if errors.As(err, &insufficient) {
				return external.Permanent("scorer", "score", err)
			}
			return err
		}
		return e.graphs.SaveCompatibilityScore(ctx, score)

	case types.StageSubmission:
		job, err := e.graphs.LoadJobGraph(stageCtx, wf.JobID)
		if err != nil {
			return err
		}
		return e.submitter.Submit(stageCtx, wf, job)

	default:
		return fmt.Errorf("unknown stage: %s", stageName)
	}
}

func (e *Engine) loadGraphs(ctx context.Context, wf *types.ApplicationWorkflow) (*types.CandidateGraph, *types.JobGraph, error) {
	candidate, err := e.graphs.LoadCandidateGraph(ctx, wf.CandidateID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate graph: %w", err)
	}
	job, err := e.graphs.LoadJobGraph(ctx, wf.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load job graph: %w", err)
	}
	return candidate, job, nil
}

// lockFor returns the per-workflow mutex, creating it on first use
func (e *Engine) lockFor(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.locks == nil {
		e.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}
