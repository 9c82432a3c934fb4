// Package observability provides formatted report output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes boxed, human-readable reports.
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, ending in "..." when cut.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// writeList writes up to limit items as bullets, followed by a remainder line.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintResume outputs a summary of the parsed résumé.
func (p *Printer) PrintResume(resume *types.ResumeData) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(resume.Name)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(resume.Email)))
	if resume.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone:    %s\n", resume.Phone))
	}
	sb.WriteString("\n")

	if len(resume.Experience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(resume.Experience), maxItemsToShow)
		for _, exp := range resume.Experience[:count] {
			sb.WriteString(fmt.Sprintf("  • %s, %s", exp.Role, exp.Company))
			if exp.Duration != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", exp.Duration))
			}
			sb.WriteString("\n")
		}
		if len(resume.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(resume.Experience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(resume.Education) > 0 {
		sb.WriteString("Education:\n")
		for _, edu := range resume.Education[:min(len(resume.Education), 3)] {
			sb.WriteString(fmt.Sprintf("  • %s, %s %s\n", edu.Degree, edu.Institution, edu.Year))
		}
		sb.WriteString("\n")
	}

	if len(resume.Skills) > 0 {
		sb.WriteString("Skills:   " + strings.Join(resume.Skills, ", ") + "\n")
	}

	p.printBox("PARSED RESUME", strings.TrimRight(sb.String(), "\n"))
}

// PrintScores outputs the six scores as bars.
func (p *Printer) PrintScores(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	scores := []struct {
		label string
		value int
	}{
		{"ATS", result.ATSScore},
		{"Readability", result.ReadabilityScore},
		{"Keyword match", result.KeywordMatchScore},
		{"Quantified impact", result.QuantifiedImpactScore},
		{"Formatting", result.FormattingHealthScore},
		{"Recruiter sim", result.RecruiterSimulationScore},
	}

	var sb strings.Builder
	for _, s := range scores {
		sb.WriteString(fmt.Sprintf("%-18s %3d %s\n", s.label, s.value, bar(s.value)))
	}
	sb.WriteString("\n")
	writeList(&sb, "Matched skills", result.MatchedSkills, maxItemsToShow)
	writeList(&sb, "Missing keywords", result.MissingKeywords, maxItemsToShow)

	p.printBox("SCORES", strings.TrimRight(sb.String(), "\n"))
}

// bar renders a score in [0, 100] as 20 cells.
func bar(score int) string {
	filled := types.ClampScore(score) / 5
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// PrintRoadmap outputs the weekly plan and the per-skill learning paths.
func (p *Printer) PrintRoadmap(result *types.AnalysisResult) {
	if result == nil || (len(result.WeeklyRoadmap) == 0 && len(result.SkillRoadmap) == 0) {
		return
	}

	var sb strings.Builder
	for _, week := range result.WeeklyRoadmap {
		sb.WriteString(fmt.Sprintf("%s: %s\n", week.Week, week.Goal))
		if week.Focus != "" {
			sb.WriteString(fmt.Sprintf("  focus: %s\n", week.Focus))
		}
	}
	if len(result.WeeklyRoadmap) > 0 && len(result.SkillRoadmap) > 0 {
		sb.WriteString("\n")
	}

	count := min(len(result.SkillRoadmap), maxItemsToShow)
	for i, skill := range result.SkillRoadmap[:count] {
		sb.WriteString(fmt.Sprintf("◆ %s", skill.SkillName))
		if skill.EstimatedTime != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", skill.EstimatedTime))
		}
		sb.WriteString("\n")
		for _, step := range skill.LearningPath {
			sb.WriteString(fmt.Sprintf("  → %s\n", step))
		}
		if skill.PracticeTask != "" {
			sb.WriteString(fmt.Sprintf("  task: %s\n", skill.PracticeTask))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(result.SkillRoadmap) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more skills", len(result.SkillRoadmap)-maxItemsToShow))
	}

	p.printBox("CAREER ROADMAP", strings.TrimRight(sb.String(), "\n"))
}

// PrintAnalysis outputs the complete report for one analysis.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnalysis(jobTitle string, resume *types.ResumeData, result *types.AnalysisResult) {
	if result == nil {
		return
	}
	if jobTitle != "" {
		fmt.Fprintf(p.out, "Analysis for %s\n\n", jobTitle)
	}
	p.PrintResume(resume)
	p.PrintScores(result)

	if result.TailoredSummary != "" || len(result.EnhancedBullets) > 0 {
		var sb strings.Builder
		if result.TailoredSummary != "" {
			sb.WriteString(result.TailoredSummary + "\n\n")
		}
		for _, b := range result.EnhancedBullets {
			sb.WriteString("• " + b + "\n")
		}
		p.printBox("TAILORED CONTENT", strings.TrimRight(sb.String(), "\n"))
	}

	p.PrintRoadmap(result)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
