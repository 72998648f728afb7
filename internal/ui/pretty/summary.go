package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// severityParts renders the non-zero severity counts, most severe first.
func (s *Styles) severityParts(bySeverity map[diag.Severity]int) []string {
	var parts []string
	if fatal := bySeverity[diag.SeverityFatal]; fatal > 0 {
		parts = append(parts, s.Fatal.Render(fmt.Sprintf("%d fatal", fatal)))
	}
	if errors := bySeverity[diag.SeverityError]; errors > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", errors, plural(errors, "error", "errors"))))
	}
	if warnings := bySeverity[diag.SeverityWarning]; warnings > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", warnings, plural(warnings, "warning", "warnings"))))
	}
	if infos := bySeverity[diag.SeverityInfo]; infos > 0 {
		parts = append(parts, s.Info.Render(fmt.Sprintf("%d info", infos)))
	}
	return parts
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "12 issues (8 errors, 4 warnings) in 3 files".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DiagnosticsTotal == 0 {
		msg := s.Success.Render("No issues found") +
			s.Dim.Render(fmt.Sprintf(" (%d %s parsed)", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)))
		if stats.FilesErrored > 0 {
			msg += ", " + s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored))
		}
		return msg + "\n"
	}

	var parts []string

	issueWord := plural(stats.DiagnosticsTotal, "issue", "issues")
	if severityParts := s.severityParts(stats.DiagnosticsBySeverity); len(severityParts) > 0 {
		parts = append(parts, fmt.Sprintf("%d %s (%s)", stats.DiagnosticsTotal, issueWord, strings.Join(severityParts, ", ")))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s", stats.DiagnosticsTotal, issueWord))
	}

	parts[0] += fmt.Sprintf(" in %d %s", stats.FilesWithIssues, plural(stats.FilesWithIssues, wordFile, wordFiles))

	if stats.FilesAborted > 0 {
		parts = append(parts, s.Fatal.Render(fmt.Sprintf("%d aborted", stats.FilesAborted)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d unreadable", stats.FilesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files parsed:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesWithIssues > 0 {
		builder.WriteString("  Files with issues: " +
			s.Failure.Render(strconv.Itoa(stats.FilesWithIssues)) + "\n")
	}
	if stats.FilesAborted > 0 {
		builder.WriteString("  Files aborted:     " +
			s.Fatal.Render(strconv.Itoa(stats.FilesAborted)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Files unreadable:  " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total issues:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.DiagnosticsTotal)) + "\n")

	rows := []struct {
		label    string
		severity diag.Severity
		style    func(...string) string
	}{
		{"    Fatal:           ", diag.SeverityFatal, s.Fatal.Render},
		{"    Errors:          ", diag.SeverityError, s.Error.Render},
		{"    Warnings:        ", diag.SeverityWarning, s.Warning.Render},
		{"    Info:            ", diag.SeverityInfo, s.Info.Render},
	}
	for _, row := range rows {
		if n := stats.DiagnosticsBySeverity[row.severity]; n > 0 {
			builder.WriteString(row.label + row.style(strconv.Itoa(n)) + "\n")
		}
	}

	builder.WriteString("\n")

	switch {
	case stats.DiagnosticsBySeverity[diag.SeverityFatal] > 0:
		builder.WriteString(s.Fatal.Render("Parse aborted"))
	case stats.DiagnosticsBySeverity[diag.SeverityError] > 0:
		builder.WriteString(s.Failure.Render("Parse failed with errors"))
	case stats.DiagnosticsBySeverity[diag.SeverityWarning] > 0:
		builder.WriteString(s.Warning.Render("Parse completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Parse passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}
