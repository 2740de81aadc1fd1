package store

import (
	"context"
	"fmt"

	"github.com/jonathan/applyflow/internal/types"
)

// WasNotified reports whether the candidate was already notified about the
// job
func (s *Store) WasNotified(ctx context.Context, candidateID, jobID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM job_notifications WHERE candidate_id = $1 AND job_id = $2
		 )`,
		candidateID, jobID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification log: %w", err)
	}
	return exists, nil
}

// MarkNotified records a delivered notification. Recording the same pair
// twice is a no-op so delivery retries stay safe.
func (s *Store) MarkNotified(ctx context.Context, n *types.JobMatchNotification) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_notifications
		   (candidate_id, job_id, job_title, company, match_score, posted_date, notified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (candidate_id, job_id) DO NOTHING`,
		n.CandidateID, n.JobID, n.JobTitle, n.Company, n.MatchScore, n.PostedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// ListNotifications retrieves a candidate's notification history, newest
// first
func (s *Store) ListNotifications(ctx context.Context, candidateID string) ([]types.JobMatchNotification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, job_id, job_title, company, match_score, posted_date
		 FROM job_notifications
		 WHERE candidate_id = $1
		 ORDER BY notified_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []types.JobMatchNotification
	for rows.Next() {
		var n types.JobMatchNotification
		if err := rows.Scan(&n.CandidateID, &n.JobID, &n.JobTitle, &n.Company,
			&n.MatchScore, &n.PostedDate); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
