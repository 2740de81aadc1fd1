package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the periodic job monitoring scheduler",
	Long: "Scan the job board for new postings on a fixed interval, score them " +
		"against every enabled candidate, and deliver match notifications. " +
		"Runs until interrupted.",
	RunE: runMonitor,
}

var monitorOnce bool

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "Run a single scan and exit")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	scheduler, err := buildScanner(cfg, st, log)
	if err != nil {
		return err
	}

	if monitorOnce {
		if err := scheduler.Tick(ctx); err != nil {
			return err
		}
		stats := scheduler.Snapshot()
		log.Info("scan complete",
			zap.Int("candidates_scanned", stats.CandidatesScanned),
			zap.Int("postings_fetched", stats.PostingsFetched),
			zap.Int("notifications_sent", stats.NotificationsSent))
		return nil
	}

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
