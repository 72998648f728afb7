package reporter

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/analysis"
	"github.com/yaklabco/gorazor/pkg/config"
)

// summaryWidth is the width of the rules framing both summary tables.
const summaryWidth = 90

// column describes one column of a summary table. Cells are padded before they are
// styled so escape sequences never count toward the width.
type column struct {
	title string
	width int
	right bool
}

func (c column) pad(cell string) string {
	if n := lipgloss.Width(cell); n < c.width {
		fill := strings.Repeat(" ", c.width-n)
		if c.right {
			return fill + cell
		}
		return cell + fill
	}
	return cell
}

//nolint:gochecknoglobals // Read-only table layouts.
var (
	codeColumns = []column{
		{title: "Code", width: 38},
		{title: "Count", width: 7, right: true},
		{title: "Errors", width: 7, right: true},
		{title: "Warnings", width: 8, right: true},
		{title: "Files", width: 7, right: true},
	}
	fileColumns = []column{
		{title: "File", width: 60},
		{title: "Count", width: 7, right: true},
		{title: "Errors", width: 7, right: true},
		{title: "Warnings", width: 8, right: true},
	}
)

// SummaryRenderer prints per-code and per-file tables followed by a total line.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a summary renderer writing to opts.Writer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStylesFor(opts.Color, opts.Writer),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	var buf strings.Builder

	for _, fileErr := range report.Errors {
		fmt.Fprintf(&buf, "%s: %s\n", r.styles.FilePath.Render(fileErr.Path), r.styles.Error.Render("error: "+fileErr.Message))
	}

	if report.Totals.Issues == 0 {
		buf.WriteString(r.styles.Success.Render("No issues found") + "\n")
	} else {
		codes, files := r.codeTable(report.ByCode), r.fileTable(report.ByFile)
		if r.opts.SummaryOrder == config.SummaryOrderFiles {
			codes, files = files, codes
		}
		for _, table := range []string{codes, files} {
			if table != "" {
				buf.WriteString(table + "\n")
			}
		}
		buf.WriteString(r.totalLine(report.Totals) + "\n")
	}

	if _, err := io.WriteString(r.out, buf.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (r *SummaryRenderer) codeTable(codes []analysis.CodeAnalysis) string {
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		display := code.Display
		if display == "" {
			display = code.Code
		}
		rows = append(rows, []string{
			truncateEnd(display, codeColumns[0].width-2),
			strconv.Itoa(code.Issues),
			strconv.Itoa(code.Errors),
			strconv.Itoa(code.Warnings),
			strconv.Itoa(len(code.Files)),
		})
	}
	return r.table("Codes Summary", codeColumns, rows, func(i int) (int, int) {
		return codes[i].Errors, codes[i].Warnings
	})
}

func (r *SummaryRenderer) fileTable(files []analysis.FileAnalysis) string {
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		path := truncateStart(file.Path, fileColumns[0].width-2)
		if file.Aborted {
			path += " (aborted)"
		}
		rows = append(rows, []string{
			path,
			strconv.Itoa(file.Issues),
			strconv.Itoa(file.Errors),
			strconv.Itoa(file.Warnings),
		})
	}
	return r.table("Files Summary", fileColumns, rows, func(i int) (int, int) {
		return files[i].Errors, files[i].Warnings
	})
}

// table renders a titled table. The first cell of each row takes the color of the
// worst severity that severities reports for it.
func (r *SummaryRenderer) table(title string, columns []column, rows [][]string, severities func(int) (int, int)) string {
	if len(rows) == 0 {
		return ""
	}

	rule := r.styles.TableSeparator.Render(strings.Repeat("─", summaryWidth))
	var buf strings.Builder
	buf.WriteString(r.styles.Bold.Render(title) + "\n" + rule + "\n")

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = r.styles.TableHeader.Render(col.pad(col.title))
	}
	buf.WriteString(strings.Join(header, " ") + "\n" + rule + "\n")

	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = col.pad(row[j])
		}
		cells[0] = r.rowStyle(severities(i)).Render(cells[0])
		buf.WriteString(strings.Join(cells, " ") + "\n")
	}
	return buf.String()
}

func (r *SummaryRenderer) rowStyle(errors, warnings int) lipgloss.Style {
	switch {
	case errors > 0:
		return r.styles.TableErrorRow
	case warnings > 0:
		return r.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

// totalLine renders e.g. "Total: 7 issues (2 errors, 5 warnings) in 2 files".
func (r *SummaryRenderer) totalLine(totals analysis.Totals) string {
	counts := []struct {
		n     int
		label string
		style lipgloss.Style
	}{
		{totals.Fatal, "fatal", r.styles.Fatal},
		{totals.Errors, "errors", r.styles.Error},
		{totals.Warnings, "warnings", r.styles.Warning},
	}

	var parts []string
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, c.style.Render(fmt.Sprintf("%d %s", c.n, c.label)))
		}
	}

	line := fmt.Sprintf("%d %s", totals.Issues, plural(totals.Issues, "issue", "issues"))
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	line += fmt.Sprintf(" in %d %s", totals.FilesWithIssues, plural(totals.FilesWithIssues, "file", "files"))

	return r.styles.Bold.Render("Total: ") + line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// truncateEnd shortens s to at most limit runes, marking the cut with an ellipsis.
func truncateEnd(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// truncateStart shortens s from the left, keeping the file name visible.
func truncateStart(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return "…" + string(runes[len(runes)-limit+1:])
}
