// Package external classifies failures of external collaborators
// (generation, submission, job sources) and provides the retry backoff used
// by stages that call them.
package external

import (
	"context"
	"errors"
	"fmt"
)

// ServiceError represents a failure of an external collaborator call.
// Transient failures are retried with backoff; permanent failures are
// surfaced immediately.
type ServiceError struct {
	Service   string
	Op        string
	Transient bool
	Cause     error
}

func (e *ServiceError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s service error: %s %s: %v", kind, e.Service, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s service error: %s %s", kind, e.Service, e.Op)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Transient wraps an error as a retryable external failure
func Transient(service, op string, cause error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Transient: true, Cause: cause}
}

// Permanent wraps an error as a non-retryable external failure
func Permanent(service, op string, cause error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Transient: false, Cause: cause}
}

// IsRetryable reports whether an error should be retried. Timeouts are
// always retryable; classified service errors follow their flag; anything
// unclassified is treated as transient so a flaky collaborator cannot
// permanently fail a workflow on its first hiccup.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Transient
	}
	return true
}
