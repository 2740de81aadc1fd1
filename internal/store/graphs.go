package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyflow/internal/types"
)

// SaveCandidateGraph stores or replaces a candidate graph as JSONB
func (s *Store) SaveCandidateGraph(ctx context.Context, g *types.CandidateGraph) error {
	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate graph: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidate_graphs (candidate_id, content, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (candidate_id) DO UPDATE SET content = $2, updated_at = NOW()`,
		g.CandidateID, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate graph %s: %w", g.CandidateID, err)
	}
	return nil
}

// LoadCandidateGraph retrieves a candidate graph, or nil when absent
func (s *Store) LoadCandidateGraph(ctx context.Context, candidateID string) (*types.CandidateGraph, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM candidate_graphs WHERE candidate_id = $1`,
		candidateID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate graph %s: %w", candidateID, err)
	}

	var g types.CandidateGraph
	if err := json.Unmarshal(content, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate graph %s: %w", candidateID, err)
	}
	return &g, nil
}

// SaveJobGraph stores or replaces a job graph as JSONB
func (s *Store) SaveJobGraph(ctx context.Context, g *types.JobGraph) error {
	jsonBytes, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal job graph: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO job_graphs (job_id, posted_date, content, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (job_id) DO UPDATE SET posted_date = $2, content = $3, updated_at = NOW()`,
		g.JobID, g.Posting.PostedDate, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save job graph %s: %w", g.JobID, err)
	}
	return nil
}

// LoadJobGraph retrieves a job graph, or nil when absent
func (s *Store) LoadJobGraph(ctx context.Context, jobID string) (*types.JobGraph, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM job_graphs WHERE job_id = $1`,
		jobID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job graph %s: %w", jobID, err)
	}

	var g types.JobGraph
	if err := json.Unmarshal(content, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job graph %s: %w", jobID, err)
	}
	return &g, nil
}

// ListJobGraphsSince retrieves job graphs posted after the given time,
// oldest first
func (s *Store) ListJobGraphsSince(ctx context.Context, since time.Time) ([]*types.JobGraph, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT content FROM job_graphs WHERE posted_date > $1 ORDER BY posted_date`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job graphs: %w", err)
	}
	defer rows.Close()

	var graphs []*types.JobGraph
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		var g types.JobGraph
		if err := json.Unmarshal(content, &g); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job graph: %w", err)
		}
		graphs = append(graphs, &g)
	}
	return graphs, rows.Err()
}

// LocalJobSource serves job graphs already loaded into the store as
// monitoring postings. It stands in for a job board client when none is
// configured.
type LocalJobSource struct {
	store *Store
}

// NewLocalJobSource creates a job source backed by the store
func NewLocalJobSource(s *Store) *LocalJobSource {
	return &LocalJobSource{store: s}
}

// FetchNewPostings returns job graphs posted after the given time
func (l *LocalJobSource) FetchNewPostings(ctx context.Context, since time.Time) ([]*types.JobGraph, error) {
	return l.store.ListJobGraphsSince(ctx, since)
}
