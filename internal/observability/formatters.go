// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/applyflow/internal/scoring"
	"github.com/jonathan/applyflow/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScore outputs a human-readable summary of a compatibility score.
func (p *Printer) PrintScore(score *types.CompatibilityScore) {
	if score == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Candidate:  %s\n", score.CandidateID))
	sb.WriteString(fmt.Sprintf("Job:        %s\n", score.JobID))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Overall:    %.2f\n", score.OverallScore))
	sb.WriteString(fmt.Sprintf("Skills:     %.2f\n", score.SkillMatchPct))
	sb.WriteString(fmt.Sprintf("Experience: %.2f\n", score.ExperienceMatchPct))
	if score.MandatoryTotal > 0 {
		sb.WriteString(fmt.Sprintf("Mandatory:  %d/%d matched\n", score.MandatoryMatched, score.MandatoryTotal))
	}

	p.printBox("COMPATIBILITY SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGaps outputs the skill gap analysis, strongest blockers first.
func (p *Printer) PrintGaps(gaps []types.SkillGap) {
	if len(gaps) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(gaps), maxItemsToShow)
	for i := 0; i < count; i++ {
		gap := gaps[i]
		sb.WriteString(fmt.Sprintf("• %s (%s", gap.Requirement.Skill, gap.Severity))
		if gap.Requirement.Mandatory {
			sb.WriteString(", mandatory")
		}
		sb.WriteString(")\n")
		switch gap.Severity {
		case types.GapBelowLevel:
			sb.WriteString(fmt.Sprintf("  current level: %s\n", gap.CurrentProficiency))
		case types.GapBelowExperience:
			sb.WriteString(fmt.Sprintf("  %.1f of %.1f years\n", gap.CurrentYears, gap.Requirement.YearsRequired))
		}
	}
	if len(gaps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(gaps)-maxItemsToShow))
	}

	p.printBox("SKILL GAPS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirementMatches outputs the per-requirement scoring breakdown.
func (p *Printer) PrintRequirementMatches(matches []scoring.RequirementMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder

	for _, match := range matches {
		marker := "✗"
		if match.Matched {
			marker = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s)", marker, match.Requirement.Skill, match.Requirement.Importance))
		if match.Matched {
			sb.WriteString(fmt.Sprintf(" via %s %s", match.Claim.Proficiency, match.Claim.Name))
		}
		sb.WriteString("\n")
	}

	p.printBox("REQUIREMENT MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWorkflow outputs the workflow status and its stage states.
func (p *Printer) PrintWorkflow(wf *types.ApplicationWorkflow) {
	if wf == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ID:        %s\n", wf.ID))
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", wf.CandidateID))
	sb.WriteString(fmt.Sprintf("Job:       %s\n", wf.JobID))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", wf.Status))
	if wf.LastError != "" {
		sb.WriteString(fmt.Sprintf("Error:     %s\n", wf.LastError))
	}

	stages := []string{
		types.StageResumeGeneration,
		types.StageCoverLetterGeneration,
		types.StageATSScoring,
		types.StageSubmission,
	}
	printed := false
	for _, name := range stages {
		state, ok := wf.Stages[name]
		if !ok {
			continue
		}
		if !printed {
			sb.WriteString("\nStages:\n")
			printed = true
		}
		sb.WriteString(fmt.Sprintf("  %s: %s", name, state.Status))
		if state.Attempts > 0 {
			sb.WriteString(fmt.Sprintf(" (%d attempts)", state.Attempts))
		}
		sb.WriteString("\n")
	}

	p.printBox("APPLICATION WORKFLOW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintNotifications outputs a notification history list.
func (p *Printer) PrintNotifications(notifications []types.JobMatchNotification) {
	if len(notifications) == 0 {
		return
	}

	var sb strings.Builder

	count := min(len(notifications), maxItemsToShow)
	for i := 0; i < count; i++ {
		n := notifications[i]
		sb.WriteString(fmt.Sprintf("• %s at %s (%.2f)\n", n.JobTitle, n.Company, n.MatchScore))
	}
	if len(notifications) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(notifications)-maxItemsToShow))
	}

	p.printBox("JOB MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}
