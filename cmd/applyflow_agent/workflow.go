package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/observability"
	"github.com/jonathan/applyflow/internal/types"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage application workflows",
	Long: "Start, advance, review, and cancel application workflows. Each " +
		"advance executes the workflow's next stage: resume generation, cover " +
		"letter generation, ATS scoring, or submission.",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a workflow for a candidate and job",
	RunE:  runWorkflowStart,
}

var advanceCmd = &cobra.Command{
	Use:   "advance <workflow-id>",
	Short: "Execute the workflow's next stage",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.Advance),
}

var statusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Show workflow state",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.Get),
}

var reviewCmd = &cobra.Command{
	Use:   "review <workflow-id>",
	Short: "Move a ready workflow into review",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.BeginReview),
}

var approveCmd = &cobra.Command{
	Use:   "approve <workflow-id>",
	Short: "Approve a reviewed workflow for submission",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.ApproveForSubmission),
}

var changesCmd = &cobra.Command{
	Use:   "request-changes <workflow-id>",
	Short: "Send a workflow back for changes",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.RequestChanges),
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <workflow-id>",
	Short: "Cancel a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  workflowAction(engineOps.Cancel),
}

var (
	startCandidateID string
	startJobID       string
)

func init() {
	startCmd.Flags().StringVar(&startCandidateID, "candidate-id", "", "Candidate ID (required)")
	startCmd.Flags().StringVar(&startJobID, "job-id", "", "Job ID (required)")
	if err := startCmd.MarkFlagRequired("candidate-id"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate-id flag as required: %v", err))
	}
	if err := startCmd.MarkFlagRequired("job-id"); err != nil {
		panic(fmt.Sprintf("failed to mark job-id flag as required: %v", err))
	}

	workflowCmd.AddCommand(startCmd)
	workflowCmd.AddCommand(advanceCmd)
	workflowCmd.AddCommand(statusCmd)
	workflowCmd.AddCommand(reviewCmd)
	workflowCmd.AddCommand(approveCmd)
	workflowCmd.AddCommand(changesCmd)
	workflowCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(workflowCmd)
}

// engineOps is the subset of the workflow engine the CLI drives.
type engineOps interface {
	Start(ctx context.Context, candidateID, jobID string) (*types.ApplicationWorkflow, error)
	Advance(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	BeginReview(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	ApproveForSubmission(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	RequestChanges(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	Cancel(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ApplicationWorkflow, error)
}

func runWorkflowStart(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	engine, cleanup, err := buildEngine(ctx, cfg, st, log)
	if err != nil {
		return err
	}
	defer cleanup()

	wf, err := engine.Start(ctx, startCandidateID, startJobID)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintWorkflow(wf)
	return nil
}

// workflowAction wires the shared setup around one engine call keyed by the
// workflow ID argument.
func workflowAction(action func(engineOps, context.Context, uuid.UUID) (*types.ApplicationWorkflow, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid workflow ID %q: %w", args[0], err)
		}

		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		engine, cleanup, err := buildEngine(ctx, cfg, st, log)
		if err != nil {
			return err
		}
		defer cleanup()

		wf, err := action(engine, ctx, id)
		if err != nil {
			return err
		}

		observability.NewPrinter(os.Stdout).PrintWorkflow(wf)
		return nil
	}
}
