package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/graph"
	"github.com/jonathan/applyflow/internal/observability"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Analyze skill gaps between a candidate and a job posting",
	Long: "List the job requirements the candidate cannot satisfy, with the " +
		"severity of each gap: missing entirely, below the required proficiency, " +
		"or short on years of experience.",
	RunE: runGaps,
}

var (
	gapsCandidateFile string
	gapsJobFile       string
)

func init() {
	gapsCmd.Flags().StringVarP(&gapsCandidateFile, "candidate-file", "c", "", "Path to candidate graph JSON (required)")
	gapsCmd.Flags().StringVarP(&gapsJobFile, "job-file", "j", "", "Path to job graph JSON (required)")

	if err := gapsCmd.MarkFlagRequired("candidate-file"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate-file flag as required: %v", err))
	}
	if err := gapsCmd.MarkFlagRequired("job-file"); err != nil {
		panic(fmt.Sprintf("failed to mark job-file flag as required: %v", err))
	}

	rootCmd.AddCommand(gapsCmd)
}

func runGaps(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	candidate, err := readCandidateGraph(gapsCandidateFile)
	if err != nil {
		return err
	}
	job, err := readJobGraph(gapsJobFile)
	if err != nil {
		return err
	}

	graph.Verify(candidate)

	gaps, err := buildScorer(cfg).AnalyzeGaps(candidate, job)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintGaps(gaps)
	return nil
}
