// Package jobsource provides access to the external job board API: fetching
// newly posted jobs for the monitoring scan and submitting finished
// applications.
package jobsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/applyflow/internal/external"
	"github.com/jonathan/applyflow/internal/types"
)

// DefaultTimeout is the default HTTP request timeout
const DefaultTimeout = 30 * time.Second

// Error represents an error from the job board API
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("job board %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("job board %s failed: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("job board %s failed: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the job board client
type Options struct {
	Timeout time.Duration
	// APIKey is sent as a bearer token when set
	APIKey string
}

// Client talks to the job board HTTP API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a job board client for the given base URL
func NewClient(baseURL string, opts *Options) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Op: "configure", Message: "invalid base URL", Cause: err}
	}

	timeout := DefaultTimeout
	apiKey := ""
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		apiKey = opts.APIKey
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// FetchNewPostings retrieves job postings that appeared after the given time
func (c *Client) FetchNewPostings(ctx context.Context, since time.Time) ([]*types.JobGraph, error) {
	endpoint := fmt.Sprintf("%s/postings?since=%s", c.baseURL, url.QueryEscape(since.UTC().Format(time.RFC3339)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: "fetch", Message: "failed to build request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, external.Transient("jobsource", "fetch",
			&Error{Op: "fetch", Message: "request failed", Cause: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("fetch", resp)
	}

	var payload struct {
		Postings []*types.JobGraph `json:"postings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, external.Transient("jobsource", "fetch",
			&Error{Op: "fetch", Message: "failed to decode response", Cause: err})
	}
	return payload.Postings, nil
}

// submission is the application payload posted to the board
type submission struct {
	WorkflowID  uuid.UUID `json:"workflow_id"`
	CandidateID string    `json:"candidate_id"`
	JobID       string    `json:"job_id"`
	JobURL      string    `json:"job_url,omitempty"`
}

// Submit delivers an approved application to the job board
func (c *Client) Submit(ctx context.Context, wf *types.ApplicationWorkflow, job *types.JobGraph) error {
	body, err := json.Marshal(submission{
		WorkflowID:  wf.ID,
		CandidateID: wf.CandidateID,
		JobID:       wf.JobID,
		JobURL:      job.Posting.URL,
	})
	if err != nil {
		return external.Permanent("jobsource", "submit",
			&Error{Op: "submit", Message: "failed to marshal application", Cause: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/applications", bytes.NewReader(body))
	if err != nil {
		return &Error{Op: "submit", Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return external.Transient("jobsource", "submit",
			&Error{Op: "submit", Message: "request failed", Cause: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return c.statusError("submit", resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// statusError classifies a non-success response. Server-side failures and
// throttling are transient; client-side rejections are permanent.
func (c *Client) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	apiErr := &Error{Op: op, StatusCode: resp.StatusCode, Message: string(body)}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return external.Transient("jobsource", op, apiErr)
	}
	return external.Permanent("jobsource", op, apiErr)
}
