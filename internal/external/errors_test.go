package external

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(Transient("generation", "resume", errors.New("503"))))
	assert.False(t, IsRetryable(Permanent("submission", "apply", errors.New("rejected"))))

	// Wrapped classification survives
	wrapped := fmt.Errorf("stage failed: %w", Permanent("generation", "cover_letter", errors.New("bad key")))
	assert.False(t, IsRetryable(wrapped))

	// Unclassified errors default to retryable
	assert.True(t, IsRetryable(errors.New("connection reset")))
}

func TestServiceError_Message(t *testing.T) {
	err := Transient("job_source", "fetch", errors.New("timeout"))
	assert.Contains(t, err.Error(), "transient")
	assert.Contains(t, err.Error(), "job_source")

	perm := Permanent("generation", "resume", nil)
	assert.Contains(t, perm.Error(), "permanent")
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}

	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
	assert.Equal(t, 10*time.Second, b.Delay(4))
	assert.Equal(t, 10*time.Second, b.Delay(20))
}

func TestBackoff_Wait_CancelledContext(t *testing.T) {
	b := Backoff{Base: time.Minute, Max: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Wait(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
