// Package notify delivers job match notifications to candidates.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/types"
)

// DefaultTimeout is the default webhook delivery timeout
const DefaultTimeout = 10 * time.Second

// Channel delivers a single notification
type Channel interface {
	Notify(ctx context.Context, n *types.JobMatchNotification) error
}

// LogChannel writes notifications to the logger. It is the default channel
// when no webhook is configured.
type LogChannel struct {
	logger *zap.Logger
}

// NewLogChannel creates a log-backed channel
func NewLogChannel(logger *zap.Logger) *LogChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogChannel{logger: logger}
}

// Notify logs the match
func (c *LogChannel) Notify(_ context.Context, n *types.JobMatchNotification) error {
	c.logger.Info("job match",
		zap.String("candidate_id", n.CandidateID),
		zap.String("job_id", n.JobID),
		zap.String("job_title", n.JobTitle),
		zap.String("company", n.Company),
		zap.Float64("match_score", n.MatchScore),
	)
	return nil
}

// WebhookChannel POSTs notifications as JSON to a configured endpoint
type WebhookChannel struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewWebhookChannel creates a webhook-backed channel
func NewWebhookChannel(endpoint string, timeout time.Duration, logger *zap.Logger) (*WebhookChannel, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid webhook endpoint %q", endpoint)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookChannel{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// Notify delivers the notification to the webhook
func (c *WebhookChannel) Notify(ctx context.Context, n *types.JobMatchNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, detail)
	}

	c.logger.Debug("notification delivered",
		zap.String("candidate_id", n.CandidateID),
		zap.String("job_id", n.JobID),
	)
	return nil
}

// ReviewNotifier announces an application reaching review. Delivery is
// best effort; the workflow engine never blocks on it.
type ReviewNotifier struct {
	logger *zap.Logger
}

// NewReviewNotifier creates a log-backed review notifier
func NewReviewNotifier(logger *zap.Logger) *ReviewNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewNotifier{logger: logger}
}

// ApplicationReady reports that the workflow's documents are generated and
// scored, and the application is waiting for review.
func (n *ReviewNotifier) ApplicationReady(_ context.Context, wf *types.ApplicationWorkflow) {
	n.logger.Info("application ready for review",
		zap.String("workflow_id", wf.ID.String()),
		zap.String("candidate_id", wf.CandidateID),
		zap.String("job_id", wf.JobID),
	)
}
