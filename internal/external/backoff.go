package external

import (
	"context"
	"time"
)

// Backoff computes exponential retry delays for external calls
type Backoff struct {
	// Base is the delay before the first retry
	Base time.Duration
	// Max bounds the delay regardless of attempt count
	Max time.Duration
}

// DefaultBackoff returns the backoff used by workflow stages
func DefaultBackoff() Backoff {
	return Backoff{Base: 2 * time.Second, Max: 30 * time.Second}
}

// Delay returns the delay before the given retry attempt (0-based).
// The delay doubles per attempt, bounded by Max.
func (b Backoff) Delay(attempt int) time.Duration {
	delay := b.Base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.Max {
			return b.Max
		}
	}
	if delay > b.Max {
		return b.Max
	}
	return delay
}

// Wait sleeps for the attempt's delay or until the context is cancelled
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
