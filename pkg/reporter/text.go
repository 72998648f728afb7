package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// TextReporter prints one styled block per diagnostic, compiler style,
// optionally followed by the offending source line.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewTextReporter creates a text reporter.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
	}
}

// Report implements Reporter. It stops early when ctx is cancelled and
// still writes what it has.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (int, error) {
	var out strings.Builder
	total, reportErr := r.render(ctx, &out, result)

	if _, err := io.WriteString(r.opts.Writer, out.String()); err != nil {
		return total, fmt.Errorf("write text report: %w", err)
	}
	return total, reportErr
}

func (r *TextReporter) render(ctx context.Context, out *strings.Builder, result *runner.Result) (int, error) {
	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			out.WriteString(r.styles.Success.Render("No files to parse.") + "\n")
		}
		return 0, nil
	}

	total := 0
	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("report: %w", err)
		}
		total += r.file(out, file)
	}

	if r.opts.ShowSummary {
		out.WriteString(r.styles.FormatSummaryOneLine(result.Stats))
	}
	return total, nil
}

// file writes one file's block and returns how many diagnostics it held.
func (r *TextReporter) file(out *strings.Builder, file runner.FileOutcome) int {
	path := r.opts.displayPath(file.Path)
	if file.Error != nil {
		out.WriteString(r.styles.FormatFileError(path, file.Error))
		return 0
	}

	located := file.Located()
	if len(located) == 0 {
		return 0
	}

	if r.opts.GroupByFile {
		out.WriteString(r.styles.FormatFileHeader(path, len(located)) + "\n")
	}
	for _, loc := range located {
		line := ""
		if r.opts.ShowContext {
			line = file.SourceLine(loc.Line())
		}
		out.WriteString(r.styles.FormatDiagnosticWithFormat(path, loc, r.opts.ShowContext, line, r.opts.CodeFormat))
	}
	if r.opts.GroupByFile {
		out.WriteByte('\n')
	}
	return len(located)
}
