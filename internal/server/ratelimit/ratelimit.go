// Package ratelimit provides per-client token bucket rate limiting for the
// HTTP API.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a single token bucket. Tokens refill continuously at rate
// tokens/second up to capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	refilled time.Time
}

func newBucket(capacity int, rate float64) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		refilled: time.Now(),
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens += now.Sub(b.refilled).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.refilled = now
}

// take consumes one token if available. It also reports the remaining token
// count and the time at which the bucket is full again.
func (b *bucket) take() (allowed bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refill(now)

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	reset = now
	if b.tokens < b.capacity {
		missing := b.capacity - b.tokens
		reset = now.Add(time.Duration(missing / b.rate * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// Info describes the rate limit decision for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter applies per-endpoint rate limits keyed by client identifier. One
// bucket exists per (client, endpoint, method) triple; idle buckets are
// dropped by a background sweep.
type Limiter struct {
	config *Config

	mu       sync.Mutex
	buckets  map[string]*bucket
	lastSeen map[string]time.Time

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
}

// NewLimiter creates a limiter from the given configuration. A nil config
// gets the defaults from LoadConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}

	l := &Limiter{
		config:   config,
		buckets:  make(map[string]*bucket),
		lastSeen: make(map[string]time.Time),
	}

	if config.Enabled && config.SweepInterval > 0 {
		l.sweepTicker = time.NewTicker(config.SweepInterval)
		l.sweepStop = make(chan struct{})
		go l.sweepLoop()
	}

	return l
}

// Allow reports whether a request from clientID to the given endpoint may
// proceed, consuming a token when it does.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	rule := MatchEndpoint(path, method, l.config.Endpoints)
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if rule.Limit <= 0 {
		// Unlimited endpoint, e.g. health checks.
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + path + ":" + method
	b := l.bucketFor(key, rule)

	allowed, remaining, reset := b.take()
	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		info.RetryAfter = time.Until(reset)
		if info.RetryAfter < 0 {
			info.RetryAfter = 0
		}
	}
	return allowed, info
}

func (l *Limiter) bucketFor(key string, rule *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSeen[key] = time.Now()
	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.sweepTicker.C:
			l.sweep()
		case <-l.sweepStop:
			return
		}
	}
}

// sweep drops buckets not seen for over an hour
func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-1 * time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, seen := range l.lastSeen {
		if seen.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastSeen, key)
		}
	}
}

// Stop terminates the background sweep goroutine.
func (l *Limiter) Stop() {
	if l.sweepTicker != nil {
		l.sweepTicker.Stop()
	}
	if l.sweepStop != nil {
		close(l.sweepStop)
	}
}
