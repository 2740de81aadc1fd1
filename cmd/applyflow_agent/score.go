package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/graph"
	"github.com/jonathan/applyflow/internal/observability"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate against a job posting",
	Long: "Compute the compatibility score between a candidate graph and a job graph. " +
		"Skill verification runs first, so unverified skill claims do not count.",
	RunE: runScore,
}

var (
	scoreCandidateFile string
	scoreJobFile       string
	scoreShowMatches   bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreCandidateFile, "candidate-file", "c", "", "Path to candidate graph JSON (required)")
	scoreCmd.Flags().StringVarP(&scoreJobFile, "job-file", "j", "", "Path to job graph JSON (required)")
	scoreCmd.Flags().BoolVar(&scoreShowMatches, "matches", false, "Print the per-requirement match breakdown")

	if err := scoreCmd.MarkFlagRequired("candidate-file"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate-file flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("job-file"); err != nil {
		panic(fmt.Sprintf("failed to mark job-file flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	candidate, err := readCandidateGraph(scoreCandidateFile)
	if err != nil {
		return err
	}
	job, err := readJobGraph(scoreJobFile)
	if err != nil {
		return err
	}

	graph.Verify(candidate)
	scorer := buildScorer(cfg)

	score, err := scorer.Score(candidate, job)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintScore(score)

	if scoreShowMatches {
		matches, err := scorer.Evaluate(candidate, job)
		if err != nil {
			return err
		}
		printer.PrintRequirementMatches(matches)
	}

	return nil
}
