package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/config"
	"github.com/jonathan/applyflow/internal/generation"
	"github.com/jonathan/applyflow/internal/jobsource"
	"github.com/jonathan/applyflow/internal/logger"
	"github.com/jonathan/applyflow/internal/monitoring"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/store"
	"github.com/jonathan/applyflow/internal/types"
	"github.com/jonathan/applyflow/internal/workflow"
)

// loadSettings merges the optional config file with environment variables.
// Explicit config file values win over the environment.
func loadSettings() (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.JobBoardURL == "" {
		cfg.JobBoardURL = os.Getenv("JOB_BOARD_URL")
	}
	if cfg.JobBoardAPIKey == "" {
		cfg.JobBoardAPIKey = os.Getenv("JOB_BOARD_API_KEY")
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
	}
	if verbose {
		cfg.Verbose = true
	}
	if jsonLogs {
		cfg.JSONLogs = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.JSONLogs, cfg.Verbose)
}

// openStore connects to PostgreSQL using the configured URL.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return store.Connect(ctx, cfg.DatabaseURL)
}

// buildScorer returns a scorer with the configured component shares, falling
// back to the default weights.
func buildScorer(cfg *config.Config) *scoring.Scorer {
	weights := scoring.DefaultWeights()
	if cfg.SkillShare > 0 && cfg.ExperienceShare > 0 {
		weights.SkillShare = cfg.SkillShare
		weights.ExperienceShare = cfg.ExperienceShare
	}
	return scoring.NewScorer(weights)
}

// buildEngine wires the workflow engine with its generation, submission, and
// scoring collaborators. The returned cleanup closes the Gemini client.
func buildEngine(ctx context.Context, cfg *config.Config, st *store.Store, log *zap.Logger) (*workflow.Engine, func(), error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if cfg.JobBoardURL == "" {
		return nil, nil, fmt.Errorf("JOB_BOARD_URL environment variable is required")
	}

	client, err := generation.NewGeminiClient(ctx, generation.DefaultModelConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	generator := generation.NewService(client, log)

	submitter, err := jobsource.NewClient(cfg.JobBoardURL, &jobsource.Options{APIKey: cfg.JobBoardAPIKey})
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create job board client: %w", err)
	}

	opts := workflow.Options{
		MaxAttempts: cfg.MaxStageAttempts,
		Logger:      log,
		Notifier:    notify.NewReviewNotifier(log),
	}
	if cfg.StageTimeoutSeconds > 0 {
		opts.StageTimeout = time.Duration(cfg.StageTimeoutSeconds) * time.Second
	}

	engine := workflow.NewEngine(st, st, generator, submitter, buildScorer(cfg), opts)
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("closing Gemini client", zap.Error(err))
		}
	}
	return engine, cleanup, nil
}

// readCandidateGraph loads and validates a candidate graph JSON file.
func readCandidateGraph(path string) (*types.CandidateGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate file: %w", err)
	}
	var g types.CandidateGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse candidate graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// readJobGraph loads and validates a job graph JSON file.
func readJobGraph(path string) (*types.JobGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	var g types.JobGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse job graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// buildScanner wires the monitoring scheduler. Without a configured job
// board it scans job graphs already loaded into the store.
func buildScanner(cfg *config.Config, st *store.Store, log *zap.Logger) (*monitoring.Scheduler, error) {
	var source monitoring.JobSource
	if cfg.JobBoardURL != "" {
		client, err := jobsource.NewClient(cfg.JobBoardURL, &jobsource.Options{APIKey: cfg.JobBoardAPIKey})
		if err != nil {
			return nil, err
		}
		source = client
	} else {
		log.Info("no job board configured, scanning locally stored job graphs")
		source = store.NewLocalJobSource(st)
	}

	var channel monitoring.Channel
	if cfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookChannel(cfg.WebhookURL, notify.DefaultTimeout, log)
		if err != nil {
			return nil, err
		}
		channel = webhook
	} else {
		channel = notify.NewLogChannel(log)
	}

	opts := monitoring.SchedulerOptions{
		PoolSize: cfg.ScanPoolSize,
		Logger:   log,
	}
	if cfg.ScanIntervalMinutes > 0 {
		opts.Interval = time.Duration(cfg.ScanIntervalMinutes) * time.Minute
	}
	if cfg.ScanCooldownMinutes > 0 {
		opts.Cooldown = time.Duration(cfg.ScanCooldownMinutes) * time.Minute
	}
	return monitoring.NewScheduler(st, st, source, st, buildScorer(cfg), channel, opts), nil
}
