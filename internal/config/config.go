// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Connections
	DatabaseURL    string `json:"database_url,omitempty"`      // PostgreSQL connection URL
	APIKey         string `json:"api_key,omitempty"`           // Gemini API key
	JobBoardURL    string `json:"job_board_url,omitempty"`     // Job board API base URL
	JobBoardAPIKey string `json:"job_board_api_key,omitempty"` // Job board API key
	WebhookURL     string `json:"webhook_url,omitempty"`       // Notification webhook endpoint
	ListenAddr     string `json:"listen_addr,omitempty"`       // HTTP server listen address

	// Scheduler
	ScanIntervalMinutes int `json:"scan_interval_minutes,omitempty"` // Minutes between monitoring scans
	ScanPoolSize        int `json:"scan_pool_size,omitempty"`        // Concurrent candidate scans per tick
	ScanCooldownMinutes int `json:"scan_cooldown_minutes,omitempty"` // Minutes before a candidate is rescanned

	// Workflow
	MaxStageAttempts    int `json:"max_stage_attempts,omitempty"`    // Attempts per stage before the workflow fails
	StageTimeoutSeconds int `json:"stage_timeout_seconds,omitempty"` // Timeout per external stage call

	// Scoring
	SkillShare      float64 `json:"skill_share,omitempty"`      // Weight of skill match in the overall score (0.0-1.0)
	ExperienceShare float64 `json:"experience_share,omitempty"` // Weight of experience match in the overall score (0.0-1.0)

	// Behavior
	Verbose  bool `json:"verbose,omitempty"`   // Print detailed debug information
	JSONLogs bool `json:"json_logs,omitempty"` // Emit logs as JSON
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.ScanIntervalMinutes < 0 {
		return fmt.Errorf("config error: 'scan_interval_minutes' must be non-negative")
	}
	if c.ScanPoolSize < 0 {
		return fmt.Errorf("config error: 'scan_pool_size' must be non-negative")
	}
	if c.ScanCooldownMinutes < 0 {
		return fmt.Errorf("config error: 'scan_cooldown_minutes' must be non-negative")
	}
	if c.MaxStageAttempts < 0 {
		return fmt.Errorf("config error: 'max_stage_attempts' must be non-negative")
	}
	if c.StageTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'stage_timeout_seconds' must be non-negative")
	}

	if c.SkillShare < 0 || c.SkillShare > 1 {
		return fmt.Errorf("config error: 'skill_share' must be between 0.0 and 1.0")
	}
	if c.ExperienceShare < 0 || c.ExperienceShare > 1 {
		return fmt.Errorf("config error: 'experience_share' must be between 0.0 and 1.0")
	}
	if c.SkillShare > 0 && c.ExperienceShare > 0 && c.SkillShare+c.ExperienceShare != 1 {
		return fmt.Errorf("config error: 'skill_share' and 'experience_share' must sum to 1.0")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.JobBoardURL == "" {
		result.JobBoardURL = defaults.JobBoardURL
	}
	if result.JobBoardAPIKey == "" {
		result.JobBoardAPIKey = defaults.JobBoardAPIKey
	}
	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}

	// Int fields: use default if zero
	if result.ScanIntervalMinutes == 0 {
		result.ScanIntervalMinutes = defaults.ScanIntervalMinutes
	}
	if result.ScanPoolSize == 0 {
		result.ScanPoolSize = defaults.ScanPoolSize
	}
	if result.ScanCooldownMinutes == 0 {
		result.ScanCooldownMinutes = defaults.ScanCooldownMinutes
	}
	if result.MaxStageAttempts == 0 {
		result.MaxStageAttempts = defaults.MaxStageAttempts
	}
	if result.StageTimeoutSeconds == 0 {
		result.StageTimeoutSeconds = defaults.StageTimeoutSeconds
	}

	// Float fields: use default if zero
	if result.SkillShare == 0 {
		result.SkillShare = defaults.SkillShare
	}
	if result.ExperienceShare == 0 {
		result.ExperienceShare = defaults.ExperienceShare
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
