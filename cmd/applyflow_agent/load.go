package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/graph"
)

var loadCandidateCmd = &cobra.Command{
	Use:   "load-candidate",
	Short: "Load a candidate graph into the database",
	Long: "Validate a candidate graph JSON file, run skill verification, and " +
		"upsert it into the database keyed by candidate ID.",
	RunE: runLoadCandidate,
}

var loadJobCmd = &cobra.Command{
	Use:   "load-job",
	Short: "Load a job graph into the database",
	RunE:  runLoadJob,
}

var (
	loadCandidateFile string
	loadJobFile       string
)

func init() {
	loadCandidateCmd.Flags().StringVarP(&loadCandidateFile, "file", "f", "", "Path to candidate graph JSON (required)")
	if err := loadCandidateCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	loadJobCmd.Flags().StringVarP(&loadJobFile, "file", "f", "", "Path to job graph JSON (required)")
	if err := loadJobCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(loadCandidateCmd)
	rootCmd.AddCommand(loadJobCmd)
}

func runLoadCandidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	candidate, err := readCandidateGraph(loadCandidateFile)
	if err != nil {
		return err
	}
	graph.Verify(candidate)

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveCandidateGraph(ctx, candidate); err != nil {
		return fmt.Errorf("failed to save candidate graph: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Loaded candidate %s (%d skills, %d experiences, %d projects)\n",
		candidate.CandidateID, len(candidate.Skills), len(candidate.Experiences), len(candidate.Projects))
	return nil
}

func runLoadJob(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	job, err := readJobGraph(loadJobFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveJobGraph(ctx, job); err != nil {
		return fmt.Errorf("failed to save job graph: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Loaded job %s: %s at %s (%d requirements)\n",
		job.JobID, job.Posting.Title, job.Company.Name, len(job.Requirements))
	return nil
}
