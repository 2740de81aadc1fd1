package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBucketBurstThenDeny(t *testing.T) {
	b := newBucket(5, 1.0)

	for i := 0; i < 5; i++ {
		allowed, _, _ := b.take()
		if !allowed {
			t.Errorf("expected request %d to be allowed", i+1)
		}
	}

	allowed, remaining, reset := b.take()
	if allowed {
		t.Error("expected request to be denied with empty bucket")
	}
	if remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", remaining)
	}
	if !reset.After(time.Now()) {
		t.Error("reset time should be in the future")
	}
}

func TestBucketRefill(t *testing.T) {
	b := newBucket(2, 10.0) // refills one token every 100ms

	b.take()
	b.take()
	if allowed, _, _ := b.take(); allowed {
		t.Error("expected empty bucket to deny")
	}

	time.Sleep(150 * time.Millisecond)

	if allowed, _, _ := b.take(); !allowed {
		t.Error("expected request to be allowed after refill")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("client", "/workflows", "POST")
		if !allowed {
			t.Fatal("disabled limiter must allow everything")
		}
	}
}

func TestLimiterEndpointRule(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Endpoints: []EndpointConfig{
			{Path: "/workflows", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		},
	})
	defer l.Stop()

	allowed, info := l.Allow("client", "/workflows", "POST")
	if !allowed {
		t.Fatal("first request should be allowed")
	}
	if info.Limit != 10 {
		t.Errorf("expected limit 10, got %d", info.Limit)
	}

	l.Allow("client", "/workflows", "POST")
	allowed, info = l.Allow("client", "/workflows", "POST")
	if allowed {
		t.Error("expected burst of 2 to be exhausted")
	}
	if info.RetryAfter <= 0 {
		t.Error("expected a positive retry-after when denied")
	}

	if allowed, _ := l.Allow("other", "/workflows", "POST"); !allowed {
		t.Error("a different client must not share the exhausted bucket")
	}
}

func TestLimiterHealthUnlimited(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
	})
	defer l.Stop()

	for i := 0; i < 50; i++ {
		if allowed, _ := l.Allow("client", "/health", "GET"); !allowed {
			t.Fatal("health checks must never be limited")
		}
	}
}

func TestLimiterConcurrentAccess(t *testing.T) {
	l := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			client := fmt.Sprintf("client-%d", n)
			for j := 0; j < 100; j++ {
				l.Allow(client, "/candidates/c/graph", "GET")
			}
		}(i)
	}
	wg.Wait()
}

func TestMatchEndpointPrefix(t *testing.T) {
	rules := []EndpointConfig{
		{Path: "/workflows", Method: "POST", Limit: 10, Window: time.Hour},
		{Path: "/workflows/", Method: "POST", Limit: 60, Window: time.Hour},
	}

	exact := MatchEndpoint("/workflows", "POST", rules)
	if exact == nil || exact.Limit != 10 {
		t.Fatalf("expected exact match with limit 10, got %+v", exact)
	}

	prefix := MatchEndpoint("/workflows/b1946ac9/advance", "POST", rules)
	if prefix == nil || prefix.Limit != 60 {
		t.Fatalf("expected prefix match with limit 60, got %+v", prefix)
	}

	if MatchEndpoint("/workflows/b1946ac9/advance", "GET", rules) != nil {
		t.Error("method mismatch should not match")
	}

	health := MatchEndpoint("/health", "GET", rules)
	if health == nil || health.Limit != 0 {
		t.Error("health should resolve to the unlimited rule")
	}
}
