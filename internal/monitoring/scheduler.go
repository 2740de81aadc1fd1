package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/types"
)

const (
	defaultMinMatchScore = 0.6
	defaultMaxPerScan    = 3
	defaultPoolSize      = 4
	defaultInterval      = time.Hour
)

// PreferenceStore reads monitoring preferences. The scheduler reads them
// fresh at the start of each candidate scan and re-checks enabled just
// before delivery, so disabling takes effect without waiting out a cycle.
type PreferenceStore interface {
	ListEnabledCandidates(ctx context.Context) ([]string, error)
	GetPreference(ctx context.Context, candidateID string) (*types.MonitoringPreference, error)
}

// NotificationLog records which (candidate, job) pairs were already
// notified so repeated scans stay silent about the same posting.
type NotificationLog interface {
	WasNotified(ctx context.Context, candidateID, jobID string) (bool, error)
	MarkNotified(ctx context.Context, n *types.JobMatchNotification) error
}

// JobSource supplies postings that appeared since the given time
type JobSource interface {
	FetchNewPostings(ctx context.Context, since time.Time) ([]*types.JobGraph, error)
}

// CandidateSource loads candidate graphs for scoring
type CandidateSource interface {
	LoadCandidateGraph(ctx context.Context, candidateID string) (*types.CandidateGraph, error)
}

// Scorer computes compatibility between a candidate and a posting
type Scorer interface {
	Score(candidate *types.CandidateGraph, job *types.JobGraph) (*types.CompatibilityScore, error)
}

// Channel delivers notifications to the candidate
type Channel interface {
	Notify(ctx context.Context, n *types.JobMatchNotification) error
}

// Stats is a snapshot of scheduler counters
type Stats struct {
	ScansCompleted     int       `json:"scans_completed"`
	CandidatesScanned  int       `json:"candidates_scanned"`
	PostingsFetched    int       `json:"postings_fetched"`
	NotificationsSent  int       `json:"notifications_sent"`
	CandidateErrors    int       `json:"candidate_errors"`
	LastScanAt         time.Time `json:"last_scan_at,omitempty"`
	LastScanDurationMS int64     `json:"last_scan_duration_ms,omitempty"`
}

// SchedulerOptions configures scan cadence and concurrency
type SchedulerOptions struct {
	// Interval between scans; also the lookback window for new postings
	Interval time.Duration
	// PoolSize bounds concurrent candidate scans
	PoolSize int
	// Cooldown skips candidates scanned within this window. Zero disables
	// the guard.
	Cooldown time.Duration
	// Logger defaults to zap.NewNop
	Logger *zap.Logger
}

// Scheduler periodically scans new postings against enabled candidates.
// Candidate scans within a tick run concurrently on a bounded pool; one
// candidate's failure never aborts the others.
type Scheduler struct {
	prefs      PreferenceStore
	log        NotificationLog
	source     JobSource
	candidates CandidateSource
	scorer     Scorer
	channel    Channel

	interval time.Duration
	poolSize int
	cooldown time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	stats    Stats
	lastScan time.Time
	scanning bool
	scanned  map[string]time.Time
}

// NewScheduler creates a monitoring scheduler
func NewScheduler(prefs PreferenceStore, log NotificationLog, source JobSource, candidates CandidateSource, scorer Scorer, channel Channel, opts SchedulerOptions) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scheduler{
		prefs:      prefs,
		log:        log,
		source:     source,
		candidates: candidates,
		scorer:     scorer,
		channel:    channel,
		interval:   opts.Interval,
		poolSize:   opts.PoolSize,
		cooldown:   opts.Cooldown,
		logger:     opts.Logger,
		scanned:    make(map[string]time.Time),
	}
}

// Run executes scans on the configured interval until the context ends.
// The first scan runs immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("scan failed", zap.Error(err))
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("scan failed", zap.Error(err))
			}
		}
	}
}

// Tick runs one scan. Overlapping ticks are collapsed: a tick that fires
// while a scan is still running returns immediately.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil
	}
	s.scanning = true
	since := s.lastScan
	if since.IsZero() {
		since = time.Now().UTC().Add(-s.interval)
	}
	s.mu.Unlock()

	started := time.Now().UTC()
	fetched := false
	defer func() {
		s.mu.Lock()
		s.scanning = false
		// A failed fetch must not advance the scan window, or postings
		// published during the failed tick would never be seen.
		if fetched {
			s.lastScan = started
			s.stats.ScansCompleted++
			s.stats.LastScanAt = started
			s.stats.LastScanDurationMS = time.Since(started).Milliseconds()
		}
		s.mu.Unlock()
	}()

	postings, err := s.source.FetchNewPostings(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to fetch new postings: %w", err)
	}
	fetched = true
	s.mu.Lock()
	s.stats.PostingsFetched += len(postings)
	s.mu.Unlock()
	if len(postings) == 0 {
		return nil
	}

	candidateIDs, err := s.prefs.ListEnabledCandidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list enabled candidates: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.poolSize)
	for _, candidateID := range candidateIDs {
		group.Go(func() error {
			if err := s.scanCandidate(groupCtx, candidateID, postings); err != nil {
				// Per-candidate failures are counted, not fatal.
				s.mu.Lock()
				s.stats.CandidateErrors++
				s.mu.Unlock()
				s.logger.Warn("candidate scan failed",
					zap.String("candidate_id", candidateID),
					zap.Error(err),
				)
			}
			return groupCtx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	s.logger.Info("scan completed",
		zap.Int("postings", len(postings)),
		zap.Int("candidates", len(candidateIDs)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// candidateMatch pairs a posting with its score for ranking
type candidateMatch struct {
	job   *types.JobGraph
	score *types.CompatibilityScore
}

func (s *Scheduler) scanCandidate(ctx context.Context, candidateID string, postings []*types.JobGraph) error {
	if s.recentlyScanned(candidateID) {
		return nil
	}

	pref, err := s.prefs.GetPreference(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to read preference: %w", err)
	}
	if pref == nil || !pref.Enabled {
		return nil
	}

	s.mu.Lock()
	s.stats.CandidatesScanned++
	if s.cooldown > 0 {
		s.scanned[candidateID] = time.Now().UTC()
	}
	s.mu.Unlock()

	jobs, err := RunFilters(ctx, s.logger, pref, DefaultFilters(), postings)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	candidate, err := s.candidates.LoadCandidateGraph(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to load candidate graph: %w", err)
	}

	minScore := pref.MinMatchScore
	if minScore <= 0 {
		minScore = defaultMinMatchScore
	}

	matches := make([]candidateMatch, 0, len(jobs))
	for _, job := range jobs {
		score, err := s.scorer.Score(candidate, job)
		if err != nil {
			var insufficient *scoring.DataInsufficientError
			if errors.As(err, &insufficient) {
				// Postings without requirements cannot be ranked.
				continue
			}
			return fmt.Errorf("failed to score job %s: %w", job.JobID, err)
		}
		if score.OverallScore < minScore {
			continue
		}
		notified, err := s.log.WasNotified(ctx, candidateID, job.JobID)
		if err != nil {
			return fmt.Errorf("failed to check notification log: %w", err)
		}
		if notified {
			continue
		}
		matches = append(matches, candidateMatch{job: job, score: score})
	}
	if len(matches) == 0 {
		return nil
	}

	// Highest score first; ties broken by older posting date.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score.OverallScore != matches[j].score.OverallScore {
			return matches[i].score.OverallScore > matches[j].score.OverallScore
		}
		return matches[i].job.Posting.PostedDate.Before(matches[j].job.Posting.PostedDate)
	})

	limit := pref.MaxNotificationsPerScan
	if limit <= 0 {
		limit = defaultMaxPerScan
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}

	// The candidate may have disabled monitoring while this scan ran.
	current, err := s.prefs.GetPreference(ctx, candidateID)
	if err != nil {
		return fmt.Errorf("failed to re-check preference: %w", err)
	}
	if current == nil || !current.Enabled {
		return nil
	}

	for _, match := range matches {
		notification := &types.JobMatchNotification{
			CandidateID: candidateID,
			JobID:       match.job.JobID,
			JobTitle:    match.job.Posting.Title,
			Company:     match.job.Company.Name,
			MatchScore:  match.score.OverallScore,
			PostedDate:  match.job.Posting.PostedDate,
		}
		if err := s.channel.Notify(ctx, notification); err != nil {
			// Delivery is fire-and-forget. An undelivered job stays out of
			// the dedupe log so a later scan can pick it up again.
			s.logger.Warn("notification delivery failed",
				zap.String("candidate_id", candidateID),
				zap.String("job_id", match.job.JobID),
				zap.Error(err),
			)
			continue
		}
		if err := s.log.MarkNotified(ctx, notification); err != nil {
			return fmt.Errorf("failed to record notification for job %s: %w", match.job.JobID, err)
		}
		s.mu.Lock()
		s.stats.NotificationsSent++
		s.mu.Unlock()
	}
	return nil
}

// recentlyScanned reports whether the candidate is inside the scan cooldown
func (s *Scheduler) recentlyScanned(candidateID string) bool {
	if s.cooldown <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.scanned[candidateID]
	return ok && time.Since(last) < s.cooldown
}

// Snapshot returns a copy of the scheduler counters
func (s *Scheduler) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
