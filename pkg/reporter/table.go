package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// fallbackWidth is used when the writer is not a terminal.
const fallbackWidth = 100

// TableReporter renders diagnostics as severity-colored tables, either one
// table for the whole run or one per file.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
}

// NewTableReporter creates a table reporter sized to opts.Writer.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, colorEnabled, terminalWidth(opts.Writer), opts.CodeFormat),
	}
}

// Report implements Reporter. The whole table is built in memory and
// written once.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	var out strings.Builder
	issues := r.render(&out, result)

	if _, err := io.WriteString(r.opts.Writer, out.String()); err != nil {
		return issues, fmt.Errorf("write table: %w", err)
	}
	return issues, nil
}

func (r *TableReporter) render(out *strings.Builder, result *runner.Result) int {
	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			out.WriteString(r.styles.Success.Render("No files to parse.") + "\n")
		}
		return 0
	}

	display := r.withDisplayPaths(result)
	issues := display.Stats.DiagnosticsTotal

	switch {
	case issues == 0:
		if r.opts.ShowSummary {
			fmt.Fprintf(out, "\n%s\n%s\n",
				r.styles.Success.Render("All files parsed cleanly!"),
				r.styles.Dim.Render(fmt.Sprintf("%d files parsed", display.Stats.FilesProcessed)))
		}
	case r.opts.PerFile:
		r.perFile(out, display)
	default:
		out.WriteString(r.formatter.FormatTable(display))
		if r.opts.ShowSummary {
			out.WriteString(r.formatter.FormatTableSummary(display.Stats, "") + "\n\n")
		}
	}
	return issues
}

// perFile writes a titled table for each file with diagnostics, then an
// overall summary.
func (r *TableReporter) perFile(out *strings.Builder, result *runner.Result) {
	tables := 0
	for _, file := range result.Files {
		table := r.formatter.FormatFileTable(file)
		if table == "" {
			continue
		}
		tables++
		fmt.Fprintf(out, "\n%s\n%s", r.styles.Bold.Render(file.Path), table)
	}

	if !r.opts.ShowSummary || tables == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n%s\n%s\n",
		r.styles.TableSeparator.Render(strings.Repeat("═", 80)),
		r.styles.Bold.Render("Overall Summary"),
		r.formatter.FormatTableSummary(result.Stats, ""))
}

// withDisplayPaths returns a shallow copy of result whose file paths are
// relative to the working directory.
func (r *TableReporter) withDisplayPaths(result *runner.Result) *runner.Result {
	display := *result
	display.Files = make([]runner.FileOutcome, len(result.Files))
	for i, file := range result.Files {
		file.Path = r.opts.displayPath(file.Path)
		display.Files[i] = file
	}
	return &display
}

// terminalWidth reports the width of writer when it is a terminal.
func terminalWidth(writer io.Writer) int {
	fd, ok := writer.(interface{ Fd() uintptr })
	if !ok {
		return fallbackWidth
	}
	width, _, err := term.GetSize(int(fd.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}
