package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyflow/internal/types"
)

// SaveMonitoringPreference stores or replaces a candidate's monitoring
// preference
func (s *Store) SaveMonitoringPreference(ctx context.Context, pref *types.MonitoringPreference) error {
	jsonBytes, err := json.Marshal(pref)
	if err != nil {
		return fmt.Errorf("failed to marshal monitoring preference: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO monitoring_preferences (candidate_id, enabled, content, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (candidate_id) DO UPDATE SET enabled = $2, content = $3, updated_at = NOW()`,
		pref.CandidateID, pref.Enabled, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save monitoring preference %s: %w", pref.CandidateID, err)
	}
	return nil
}

// GetPreference retrieves a candidate's monitoring preference, or nil
func (s *Store) GetPreference(ctx context.Context, candidateID string) (*types.MonitoringPreference, error) {
	var content []byte
	err := s.pool.QueryRow(ctx,
		`SELECT content FROM monitoring_preferences WHERE candidate_id = $1`,
		candidateID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get monitoring preference %s: %w", candidateID, err)
	}

	var pref types.MonitoringPreference
	if err := json.Unmarshal(content, &pref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monitoring preference %s: %w", candidateID, err)
	}
	return &pref, nil
}

// ListEnabledCandidates retrieves candidate IDs with monitoring enabled
func (s *Store) ListEnabledCandidates(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id FROM monitoring_preferences WHERE enabled ORDER BY candidate_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled candidates: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
