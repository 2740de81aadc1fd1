package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/graph"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute skill verification for a candidate graph",
	Long: "Recompute the verified flag of every skill claim from the evidence " +
		"edges in the candidate's experiences and projects, and write the " +
		"updated graph as JSON.",
	RunE: runVerify,
}

var (
	verifyCandidateFile string
	verifyOut           string
)

func init() {
	verifyCmd.Flags().StringVarP(&verifyCandidateFile, "candidate-file", "c", "", "Path to candidate graph JSON (required)")
	verifyCmd.Flags().StringVarP(&verifyOut, "out", "o", "", "Output file (defaults to stdout)")

	if err := verifyCmd.MarkFlagRequired("candidate-file"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate-file flag as required: %v", err))
	}

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	candidate, err := readCandidateGraph(verifyCandidateFile)
	if err != nil {
		return err
	}

	graph.Verify(candidate)

	verified := 0
	for _, claim := range candidate.Skills {
		if claim.Verified {
			verified++
		}
	}
	fmt.Fprintf(os.Stderr, "Verified %d of %d skill claims\n", verified, len(candidate.Skills))

	data, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode candidate graph: %w", err)
	}
	data = append(data, '\n')

	if verifyOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(verifyOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
