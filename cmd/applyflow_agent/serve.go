package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: "Start an HTTP server exposing graph management, scoring, workflow, " +
		"and monitoring endpoints.",
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if cfg.ListenAddr != "" && serveAddr == ":8080" {
		serveAddr = cfg.ListenAddr
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck // best-effort flush on exit

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	engine, cleanup, err := buildEngine(ctx, cfg, st, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// The scheduler is exposed for manually triggered scans; the serve
	// command does not run the periodic loop. Use the monitor command for
	// continuous scanning.
	scanner, err := buildScanner(cfg, st, log)
	if err != nil {
		return err
	}

	srv := server.New(st, engine, buildScorer(cfg), server.Options{
		Addr:    serveAddr,
		Logger:  log,
		Scanner: scanner,
	})
	return srv.Start()
}
