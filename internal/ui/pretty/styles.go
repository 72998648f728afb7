// Package pretty renders gorazor terminal output (diagnostics, syntax trees, summaries,
// tables and command help) with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
)

// ANSI palette indices.
const (
	colorSilver  = lipgloss.Color("7")
	colorGray    = lipgloss.Color("8")
	colorRed     = lipgloss.Color("9")
	colorGreen   = lipgloss.Color("10")
	colorYellow  = lipgloss.Color("11")
	colorBlue    = lipgloss.Color("12")
	colorMagenta = lipgloss.Color("13")
	colorCyan    = lipgloss.Color("14")
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	// Severity styles
	Fatal   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Diagnostic components
	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Code       lipgloss.Style
	Message    lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	// Tree styles
	TreeNode  lipgloss.Style
	TreeToken lipgloss.Style
	TreeSpan  lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	// Table styles
	TableHeader    lipgloss.Style
	TableBorder    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableInfoRow   lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	// Help styles
	Heading    lipgloss.Style
	Command    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates the output styles. With colorEnabled false every style renders
// its input unchanged.
func NewStyles(colorEnabled bool) *Styles {
	plain := lipgloss.NewStyle()
	fg := func(c lipgloss.Color) lipgloss.Style {
		if !colorEnabled {
			return plain
		}
		return plain.Foreground(c)
	}
	bold := func(style lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return style
		}
		return style.Bold(true)
	}
	italic := func(style lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return style
		}
		return style.Italic(true)
	}

	return &Styles{
		Fatal:   bold(fg(colorMagenta)),
		Error:   bold(fg(colorRed)),
		Warning: bold(fg(colorYellow)),
		Info:    bold(fg(colorBlue)),

		FilePath:   bold(plain),
		Location:   fg(colorGray),
		Code:       fg(colorGray),
		Message:    plain,
		SourceLine: fg(colorSilver),
		Caret:      fg(colorRed),

		TreeNode:  bold(fg(colorCyan)),
		TreeToken: fg(colorGreen),
		TreeSpan:  fg(colorGray),

		SummaryTitle: bold(plain),
		SummaryValue: plain,
		Success:      bold(fg(colorGreen)),
		Failure:      bold(fg(colorRed)),

		TableHeader:    bold(fg(colorSilver)),
		TableBorder:    fg(colorGray),
		TableErrorRow:  fg(colorRed),
		TableWarnRow:   fg(colorYellow),
		TableInfoRow:   fg(colorBlue),
		TableLegend:    italic(fg(colorGray)),
		TableSeparator: fg(colorGray),

		Heading:    bold(fg(colorYellow)),
		Command:    bold(fg(colorCyan)),
		Subcommand: fg(colorGreen),
		Flag:       fg(colorBlue),

		Dim:  fg(colorGray),
		Bold: bold(plain),
	}
}

// NewStylesFor creates styles for output written to writer under the given color mode.
func NewStylesFor(mode config.ColorMode, writer io.Writer) *Styles {
	return NewStyles(IsColorEnabled(mode, writer))
}

// ForSeverity returns the style used for diagnostics of severity sev.
func (s *Styles) ForSeverity(sev diag.Severity) lipgloss.Style {
	switch sev {
	case diag.SeverityFatal:
		return s.Fatal
	case diag.SeverityError:
		return s.Error
	case diag.SeverityWarning:
		return s.Warning
	case diag.SeverityInfo:
		return s.Info
	default:
		return s.Message
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode config.ColorMode, writer io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
