package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

const (
	defaultTermWidth = 100
	cellGap          = "  "
	ellipsis         = "..."
)

// TableRow is one located diagnostic, flattened to display strings.
type TableRow struct {
	File     string
	Location string
	Message  string
	Code     string
	Severity diag.Severity
}

// LocatedToTableRow converts a located diagnostic to a table row.
func LocatedToTableRow(path string, loc runner.Located, format config.CodeFormat) TableRow {
	return TableRow{
		File:     path,
		Location: fmt.Sprintf("%d:%d", loc.Line(), loc.Column()),
		Message:  loc.Message,
		Code:     config.FormatCode(format, loc.Code),
		Severity: loc.Severity,
	}
}

// tableColumn describes one column of the diagnostic table. Columns with a
// non-zero shrink order give up width, lowest order first, when the table
// is wider than the terminal.
type tableColumn struct {
	title  string
	min    int
	shrink int
	cell   func(TableRow) string
	clip   func(string, int) string
}

//nolint:gochecknoglobals // Fixed column layouts.
var (
	fileColumn     = tableColumn{title: "FILE", min: 20, shrink: 2, cell: func(r TableRow) string { return r.File }, clip: clipStart}
	locationColumn = tableColumn{title: "LOC", min: 10, cell: func(r TableRow) string { return r.Location }, clip: clipEnd}
	messageColumn  = tableColumn{title: "MESSAGE", min: 35, shrink: 1, cell: func(r TableRow) string { return r.Message }, clip: clipEnd}
	codeColumn     = tableColumn{title: "CODE", min: 8, cell: func(r TableRow) string { return r.Code }, clip: clipEnd}

	combinedColumns = []tableColumn{fileColumn, locationColumn, messageColumn, codeColumn}
	perFileColumns  = []tableColumn{locationColumn, messageColumn, codeColumn}
)

// TableFormatter renders diagnostics as fixed-width tables whose rows are
// colored by severity.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
	codeFormat   config.CodeFormat
}

// NewTableFormatter creates a table formatter. A non-positive termWidth
// falls back to 100 columns.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int, codeFormat config.CodeFormat) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
		codeFormat:   codeFormat,
	}
}

// FormatTable renders every file with diagnostics in one table, with a light
// rule between files. It returns "" when there is nothing to show.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil {
		return ""
	}

	var groups [][]TableRow
	for _, file := range result.Files {
		if rows := t.rows(file); len(rows) > 0 {
			groups = append(groups, rows)
		}
	}
	if len(groups) == 0 {
		return ""
	}

	tbl := t.layout(combinedColumns, groups...)

	var b strings.Builder
	tbl.header(&b)
	for i, group := range groups {
		if i > 0 {
			tbl.rule(&b, "-")
		}
		tbl.body(&b, group)
	}
	tbl.rule(&b, "=")

	if t.colorEnabled {
		b.WriteString(t.legend())
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatFileTable renders one file's diagnostics without a FILE column,
// followed by the file's severity counts.
func (t *TableFormatter) FormatFileTable(file runner.FileOutcome) string {
	rows := t.rows(file)
	if len(rows) == 0 {
		return ""
	}

	tbl := t.layout(perFileColumns, rows)

	var b strings.Builder
	tbl.header(&b)
	tbl.body(&b, rows)
	tbl.rule(&b, "=")

	counts := make(map[diag.Severity]int)
	for _, row := range rows {
		counts[row.Severity]++
	}
	b.WriteString(" " + strings.Join(t.styles.severityParts(counts), " | "))
	b.WriteByte('\n')
	return b.String()
}

// FormatTableSummary renders the one-line run summary printed under a table.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	parts := []string{fmt.Sprintf("%d %s parsed", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles))}
	parts = append(parts, t.styles.severityParts(stats.DiagnosticsBySeverity)...)
	if stats.FilesAborted > 0 {
		parts = append(parts, t.styles.Fatal.Render(fmt.Sprintf("%d aborted", stats.FilesAborted)))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}
	return " " + strings.Join(parts, " | ")
}

func (t *TableFormatter) rows(file runner.FileOutcome) []TableRow {
	located := file.Located()
	rows := make([]TableRow, len(located))
	for i, loc := range located {
		rows[i] = LocatedToTableRow(file.Path, loc, t.codeFormat)
	}
	return rows
}

func (t *TableFormatter) legend() string {
	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = error  %s = warning  %s = info",
		t.styles.TableErrorRow.Render(" error "),
		t.styles.TableWarnRow.Render(" warning "),
		t.styles.TableInfoRow.Render(" info "),
	))
}

func (t *TableFormatter) rowStyle(severity diag.Severity) lipgloss.Style {
	switch severity {
	case diag.SeverityFatal, diag.SeverityError:
		return t.styles.TableErrorRow
	case diag.SeverityWarning:
		return t.styles.TableWarnRow
	case diag.SeverityInfo:
		return t.styles.TableInfoRow
	default:
		return lipgloss.NewStyle()
	}
}

// tableLayout is a set of columns with resolved widths.
type tableLayout struct {
	formatter *TableFormatter
	columns   []tableColumn
	widths    []int
}

// layout sizes each column to its widest cell, then shrinks columns in
// shrink order, never below their minimum, until the table fits.
func (t *TableFormatter) layout(columns []tableColumn, groups ...[]TableRow) tableLayout {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(col.min, len(col.title))
		for _, group := range groups {
			for _, row := range group {
				widths[i] = max(widths[i], len(col.cell(row)))
			}
		}
	}

	tbl := tableLayout{formatter: t, columns: columns, widths: widths}
	for order := 1; ; order++ {
		found := false
		for i, col := range columns {
			if col.shrink != order {
				continue
			}
			found = true
			if excess := tbl.width() - t.termWidth; excess > 0 {
				widths[i] = max(col.min, widths[i]-excess)
			}
		}
		if !found {
			break
		}
	}
	return tbl
}

// width is the rendered width of a line: each cell plus the gap or edge after it.
func (l tableLayout) width() int {
	total := 0
	for _, w := range l.widths {
		total += w + len(cellGap)
	}
	return total
}

func (l tableLayout) line(cells []string) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = fmt.Sprintf("%-*s", l.widths[i], cell)
	}
	return " " + strings.Join(padded, cellGap) + " "
}

func (l tableLayout) header(b *strings.Builder) {
	titles := make([]string, len(l.columns))
	for i, col := range l.columns {
		titles[i] = col.title
	}
	b.WriteString(l.formatter.styles.TableHeader.Render(l.line(titles)))
	b.WriteByte('\n')
	l.rule(b, "=")
}

func (l tableLayout) rule(b *strings.Builder, char string) {
	b.WriteString(l.formatter.styles.TableSeparator.Render(strings.Repeat(char, l.width())))
	b.WriteByte('\n')
}

func (l tableLayout) body(b *strings.Builder, rows []TableRow) {
	cells := make([]string, len(l.columns))
	for _, row := range rows {
		for i, col := range l.columns {
			cells[i] = col.clip(col.cell(row), l.widths[i])
		}
		b.WriteString(l.formatter.rowStyle(row.Severity).Render(l.line(cells)))
		b.WriteByte('\n')
	}
}

// clipEnd shortens s to limit bytes, replacing its tail with an ellipsis.
func clipEnd(s string, limit int) string {
	switch {
	case len(s) <= limit:
		return s
	case limit <= len(ellipsis):
		return s[:limit]
	default:
		return s[:limit-len(ellipsis)] + ellipsis
	}
}

// clipStart shortens s to limit bytes, keeping its tail so file names survive.
func clipStart(s string, limit int) string {
	switch {
	case len(s) <= limit:
		return s
	case limit <= len(ellipsis):
		return s[len(s)-limit:]
	default:
		return ellipsis + s[len(s)-limit+len(ellipsis):]
	}
}
