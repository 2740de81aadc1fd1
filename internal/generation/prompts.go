package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/applyflow/internal/types"
)

// buildResumePrompt constructs the resume tailoring prompt. Only verified
// skills are offered to the model; unverified claims never reach a
// generated document.
func buildResumePrompt(candidate *types.CandidateGraph, job *types.JobGraph) string {
	var sb strings.Builder

	sb.WriteString("You are an expert resume writer. Tailor a resume for the candidate below ")
	sb.WriteString("to the target job posting. Emphasize the skills the posting requires and ")
	sb.WriteString("quantify achievements where the source material allows.\n\n")

	writeCandidateSection(&sb, candidate)
	writeJobSection(&sb, job)

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	sb.WriteString("  \"content\": string (required) // the complete resume in Markdown\n")
	sb.WriteString("}\n\n")
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Use only the skills, experiences, and projects listed above. Do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

// buildCoverLetterPrompt constructs the cover letter prompt
func buildCoverLetterPrompt(candidate *types.CandidateGraph, job *types.JobGraph) string {
	var sb strings.Builder

	sb.WriteString("You are an expert career writer. Write a concise, specific cover letter ")
	sb.WriteString("from the candidate below to the company behind the job posting. ")
	sb.WriteString("Connect the candidate's strongest verified skills to the posting's key requirements.\n\n")

	writeCandidateSection(&sb, candidate)
	writeJobSection(&sb, job)

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	sb.WriteString("  \"content\": string (required) // the complete cover letter in Markdown\n")
	sb.WriteString("}\n\n")
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Keep the letter under 350 words. Do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")

	return sb.String()
}

func writeCandidateSection(sb *strings.Builder, candidate *types.CandidateGraph) {
	sb.WriteString("CANDIDATE\n")

	verified := candidate.VerifiedSkills()
	if len(verified) > 0 {
		sb.WriteString("Skills:\n")
		for _, skill := range verified {
			fmt.Fprintf(sb, "- %s (%s, %.1f years)\n", skill.Name, skill.Proficiency, skill.YearsExperience)
		}
	}

	if len(candidate.Experiences) > 0 {
		sb.WriteString("Experience:\n")
		for _, exp := range candidate.Experiences {
			fmt.Fprintf(sb, "- %s at %s (%s - %s)\n",
				exp.Position, exp.Company,
				exp.StartDate.Format("Jan 2006"), formatEndDate(exp.EndDate))
			for _, achievement := range exp.Achievements {
				fmt.Fprintf(sb, "  * %s\n", achievement)
			}
		}
	}

	if len(candidate.Projects) > 0 {
		sb.WriteString("Projects:\n")
		for _, project := range candidate.Projects {
			fmt.Fprintf(sb, "- %s", project.Name)
			if project.Description != "" {
				fmt.Fprintf(sb, ": %s", project.Description)
			}
			if len(project.Technologies) > 0 {
				fmt.Fprintf(sb, " (%s)", strings.Join(project.Technologies, ", "))
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func writeJobSection(sb *strings.Builder, job *types.JobGraph) {
	sb.WriteString("TARGET JOB\n")
	fmt.Fprintf(sb, "Title: %s\n", job.Posting.Title)
	fmt.Fprintf(sb, "Company: %s\n", job.Company.Name)
	if job.Company.Industry != "" {
		fmt.Fprintf(sb, "Industry: %s\n", job.Company.Industry)
	}
	if job.Posting.Description != "" {
		fmt.Fprintf(sb, "Description: %s\n", job.Posting.Description)
	}
	if len(job.Requirements) > 0 {
		sb.WriteString("Requirements:\n")
		for _, req := range job.Requirements {
			marker := "preferred"
			if req.Mandatory {
				marker = "mandatory"
			}
			fmt.Fprintf(sb, "- %s (%s, %s", req.Skill, req.Importance, marker)
			if req.YearsRequired > 0 {
				fmt.Fprintf(sb, ", %.0f+ years", req.YearsRequired)
			}
			sb.WriteString(")\n")
		}
	}
	sb.WriteString("\n")
}

func formatEndDate(end *time.Time) string {
	if end == nil {
		return "present"
	}
	return end.Format("Jan 2006")
}
