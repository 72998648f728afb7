package pretty

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// FormatDiagnostic formats a single located diagnostic for terminal output.
// Uses the code format for backwards compatibility.
func (s *Styles) FormatDiagnostic(path string, loc runner.Located, showContext bool, sourceLine string) string {
	return s.FormatDiagnosticWithFormat(path, loc, showContext, sourceLine, config.CodeFormatCode)
}

// FormatDiagnosticWithFormat formats a diagnostic with a configurable code format.
func (s *Styles) FormatDiagnosticWithFormat(
	path string,
	loc runner.Located,
	showContext bool,
	sourceLine string,
	format config.CodeFormat,
) string {
	var builder strings.Builder

	// Location: path:line:col
	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(path), loc.Line(), loc.Column())

	codeDisplay := s.Code.Render("(" + config.FormatCode(format, loc.Code) + ")")

	// Main line: location  severity  message  (code)
	builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.FormatSeverity(loc.Severity),
		s.Message.Render(loc.Message),
		codeDisplay,
	))

	if showContext && sourceLine != "" {
		width := 1
		if loc.Line() == loc.EndLine() {
			width = loc.EndColumn() - loc.Column()
		}
		builder.WriteString(s.FormatSourceContextSpan(sourceLine, loc.Column(), width))
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev diag.Severity) string {
	return s.ForSeverity(sev).Render(string(sev))
}

// FormatSourceContext formats the source line with a caret marker at the 1-based byte column.
func (s *Styles) FormatSourceContext(line string, column int) string {
	return s.FormatSourceContextSpan(line, column, 1)
}

// FormatSourceContextSpan formats the source line and underlines width bytes from the 1-based
// byte column: a caret followed by tildes.
func (s *Styles) FormatSourceContextSpan(line string, column, width int) string {
	var builder strings.Builder

	// Indent to align with diagnostic output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column <= 0 {
		return builder.String()
	}

	// Pad and underline in runes so multi-byte characters keep the marker aligned.
	start := min(column-1, len(line))
	end := min(start+max(width, 1), len(line))
	padding := utf8.RuneCountInString(line[:start])
	underline := max(utf8.RuneCountInString(line[start:end]), 1)

	marker := "^" + strings.Repeat("~", underline-1)
	builder.WriteString(indent + strings.Repeat(" ", padding) + s.Caret.Render(marker) + "\n")

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, issueCount int) string {
	header := s.FilePath.Render(path)
	if issueCount > 0 {
		word := "issues"
		if issueCount == 1 {
			word = "issue"
		}
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", issueCount, word))
	}
	return header
}

// FormatFileError formats a file that could not be parsed.
func (s *Styles) FormatFileError(path string, err error) string {
	return fmt.Sprintf("%s: %s\n", s.FilePath.Render(path), s.Error.Render(fmt.Sprintf("error: %v", err)))
}
