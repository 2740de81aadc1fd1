package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyflow/internal/types"
)

// SaveCompatibilityScore appends a scoring event. Scores are never updated;
// recomputation inserts a new row so history stays auditable.
func (s *Store) SaveCompatibilityScore(ctx context.Context, score *types.CompatibilityScore) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO compatibility_scores
		   (id, candidate_id, job_id, skill_match_pct, experience_match_pct,
		    overall_score, mandatory_matched, mandatory_total, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		score.ID, score.CandidateID, score.JobID, score.SkillMatchPct,
		score.ExperienceMatchPct, score.OverallScore, score.MandatoryMatched,
		score.MandatoryTotal, score.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save compatibility score: %w", err)
	}
	return nil
}

// LatestCompatibilityScore retrieves the most recent score for a pair, or
// nil when the pair was never scored
func (s *Store) LatestCompatibilityScore(ctx context.Context, candidateID, jobID string) (*types.CompatibilityScore, error) {
	var score types.CompatibilityScore
	err := s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_id, skill_match_pct, experience_match_pct,
		        overall_score, mandatory_matched, mandatory_total, computed_at
		 FROM compatibility_scores
		 WHERE candidate_id = $1 AND job_id = $2
		 ORDER BY computed_at DESC
		 LIMIT 1`,
		candidateID, jobID,
	).Scan(&score.ID, &score.CandidateID, &score.JobID, &score.SkillMatchPct,
		&score.ExperienceMatchPct, &score.OverallScore, &score.MandatoryMatched,
		&score.MandatoryTotal, &score.ComputedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get compatibility score: %w", err)
	}
	return &score, nil
}

// ListCompatibilityScores retrieves the scoring history for a pair, newest
// first
func (s *Store) ListCompatibilityScores(ctx context.Context, candidateID, jobID string) ([]types.CompatibilityScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, job_id, skill_match_pct, experience_match_pct,
		        overall_score, mandatory_matched, mandatory_total, computed_at
		 FROM compatibility_scores
		 WHERE candidate_id = $1 AND job_id = $2
		 ORDER BY computed_at DESC`,
		candidateID, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list compatibility scores: %w", err)
	}
	defer rows.Close()

	var scores []types.CompatibilityScore
	for rows.Next() {
		var score types.CompatibilityScore
		if err := rows.Scan(&score.ID, &score.CandidateID, &score.JobID,
			&score.SkillMatchPct, &score.ExperienceMatchPct, &score.OverallScore,
			&score.MandatoryMatched, &score.MandatoryTotal, &score.ComputedAt); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}
