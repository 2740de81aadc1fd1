package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limit rule for one endpoint. A Path ending in
// "/" matches by prefix, so "/workflows/" covers "/workflows/{id}/advance".
type EndpointConfig struct {
	Path   string
	Method string

	// Limit requests per Window. Burst is the bucket capacity and defaults
	// to Limit.
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds limiter configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	SweepInterval time.Duration
	Endpoints     []EndpointConfig
}

// LoadConfig builds limiter configuration from environment variables,
// falling back to the built-in endpoint tiers.
func LoadConfig() *Config {
	enabled := envBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:       true,
		DefaultLimit:  envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow: envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		SweepInterval: envDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		Endpoints:     DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the built-in per-endpoint rules. Endpoints
// that fan out to the LLM or the job board get the tightest budgets; plain
// reads fall through to the default limit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Generation and submission stages run behind these.
		{Path: "/workflows", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/workflows/", Method: "POST", Limit: 60, Window: time.Hour, Burst: 10},

		// A scan fans out across every enabled candidate.
		{Path: "/monitoring/scan", Method: "POST", Limit: 6, Window: time.Hour, Burst: 2},

		// Scoring is CPU-bound but cheap compared to generation.
		{Path: "/candidates/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},

		// Graph and preference writes.
		{Path: "/candidates/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// MatchEndpoint resolves the rule for a request path and method. Exact path
// matches win over prefix matches; nil means no endpoint-specific rule.
func MatchEndpoint(path, method string, rules []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Limit: 0}
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Path == path && rule.Method == method {
			return rule
		}
	}

	for i := range rules {
		rule := &rules[i]
		if rule.Method == method && strings.HasSuffix(rule.Path, "/") && strings.HasPrefix(path, rule.Path) {
			return rule
		}
	}

	return nil
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
