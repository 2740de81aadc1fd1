package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/applyflow/internal/types"
	"github.com/jonathan/applyflow/internal/workflow"
)

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index on active (candidate_id, job_id) pairs
const uniqueViolation = "23505"

// CreateWorkflow inserts a new workflow row. A second active workflow for
// the same pair violates the active-pair index and is reported as a
// *workflow.ConcurrencyConflictError.
func (s *Store) CreateWorkflow(ctx context.Context, wf *types.ApplicationWorkflow) error {
	stagesJSON, err := json.Marshal(wf.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow stages: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO application_workflows
		   (id, candidate_id, job_id, status, stages, last_error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		wf.ID, wf.CandidateID, wf.JobID, wf.Status, stagesJSON,
		wf.LastError, wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &workflow.ConcurrencyConflictError{CandidateID: wf.CandidateID, JobID: wf.JobID}
		}
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

// ActiveWorkflow retrieves the non-terminal workflow for a pair, or nil
func (s *Store) ActiveWorkflow(ctx context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error) {
	return s.scanWorkflow(s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_id, status, stages, last_error, created_at, updated_at
		 FROM application_workflows
		 WHERE candidate_id = $1 AND job_id = $2
		   AND status NOT IN ('submitted', 'failed', 'cancelled')`,
		candidateID, jobID,
	))
}

// GetWorkflow retrieves a workflow by ID, or nil when absent
func (s *Store) GetWorkflow(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error) {
	return s.scanWorkflow(s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_id, status, stages, last_error, created_at, updated_at
		 FROM application_workflows WHERE id = $1`,
		id,
	))
}

// SaveWorkflow persists the workflow's current status and stage states
func (s *Store) SaveWorkflow(ctx context.Context, wf *types.ApplicationWorkflow) error {
	stagesJSON, err := json.Marshal(wf.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow stages: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE application_workflows
		 SET status = $1, stages = $2, last_error = $3, updated_at = $4
		 WHERE id = $5`,
		wf.Status, stagesJSON, wf.LastError, wf.UpdatedAt, wf.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// ListWorkflows retrieves all workflows for a candidate, newest first
func (s *Store) ListWorkflows(ctx context.Context, candidateID string) ([]*types.ApplicationWorkflow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, job_id, status, stages, last_error, created_at, updated_at
		 FROM application_workflows
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*types.ApplicationWorkflow
	for rows.Next() {
		wf, err := s.scanWorkflowRow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// SaveDocument stores a generated document for a workflow. Regenerating the
// same kind replaces the previous document.
func (s *Store) SaveDocument(ctx context.Context, workflowID uuid.UUID, doc *types.Document) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO workflow_documents (workflow_id, kind, content, format, model, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (workflow_id, kind)
		 DO UPDATE SET content = $3, format = $4, model = $5, generated_at = $6`,
		workflowID, doc.Kind, doc.Content, doc.Format, doc.Model, doc.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s document: %w", doc.Kind, err)
	}
	return nil
}

// GetDocument retrieves a workflow document by kind, or nil when absent
func (s *Store) GetDocument(ctx context.Context, workflowID uuid.UUID, kind string) (*types.Document, error) {
	var doc types.Document
	err := s.pool.QueryRow(ctx,
		`SELECT kind, content, format, model, generated_at
		 FROM workflow_documents
		 WHERE workflow_id = $1 AND kind = $2`,
		workflowID, kind,
	).Scan(&doc.Kind, &doc.Content, &doc.Format, &doc.Model, &doc.GeneratedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s document: %w", kind, err)
	}
	return &doc, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanWorkflow(row pgx.Row) (*types.ApplicationWorkflow, error) {
	wf, err := s.scanWorkflowRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return wf, nil
}

func (s *Store) scanWorkflowRow(row rowScanner) (*types.ApplicationWorkflow, error) {
	var wf types.ApplicationWorkflow
	var stagesJSON []byte
	if err := row.Scan(&wf.ID, &wf.CandidateID, &wf.JobID, &wf.Status,
		&stagesJSON, &wf.LastError, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}
	if stagesJSON != nil {
		if err := json.Unmarshal(stagesJSON, &wf.Stages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal workflow stages: %w", err)
		}
	}
	return &wf, nil
}
