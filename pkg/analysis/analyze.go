package analysis

import (
	"cmp"
	"maps"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// ReportVersion is the version of the report layout.
const ReportVersion = "1.0.0"

// NewDiagnosticEntry flattens a located diagnostic for serialization.
func NewDiagnosticEntry(path string, loc runner.Located) DiagnosticEntry {
	return DiagnosticEntry{
		FilePath:    path,
		Code:        string(loc.Code),
		Title:       loc.Code.Title(),
		Severity:    string(loc.Severity),
		Message:     loc.Message,
		StartLine:   loc.Line(),
		StartColumn: loc.Column(),
		EndLine:     loc.EndLine(),
		EndColumn:   loc.EndColumn(),
		Offset:      loc.Span.Start,
		Length:      loc.Span.Length,
	}
}

// tally is a per-severity counter. Fatal diagnostics count as errors.
type tally struct {
	issues, errors, warnings, infos int
}

func (t *tally) add(severity diag.Severity) {
	t.issues++
	switch severity {
	case diag.SeverityFatal, diag.SeverityError:
		t.errors++
	case diag.SeverityWarning:
		t.warnings++
	case diag.SeverityInfo:
		t.infos++
	}
}

// group accumulates one row of the by-file or by-code view.
type group struct {
	tally
	members map[string]struct{}
}

func (g *group) note(member string) {
	if g.members == nil {
		g.members = make(map[string]struct{})
	}
	g.members[member] = struct{}{}
}

func (g *group) sortedMembers() []string {
	return slices.Sorted(maps.Keys(g.members))
}

// groupFor returns the group stored under key, creating it on first use.
func groupFor[K comparable](groups map[K]*group, key K) *group {
	g, ok := groups[key]
	if !ok {
		g = &group{}
		groups[key] = g
	}
	return g
}

// Analyze builds every view of a run requested by opts in a single pass
// over its diagnostics. A nil result yields an empty report.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{Version: ReportVersion, Timestamp: time.Now()}
	if result == nil {
		return report
	}

	byFile := make(map[string]*group)
	byCode := make(map[diag.Code]*group)
	aborted := make(map[string]bool)
	totals := &report.Totals

	for _, file := range result.Files {
		totals.Files++
		path := relativeTo(opts.WorkingDir, file.Path)

		switch {
		case file.Error != nil:
			totals.FilesErrored++
			report.Errors = append(report.Errors, FileError{Path: path, Message: file.Error.Error()})
			continue
		case file.Result == nil:
			continue
		}

		if file.Result.Fatal() {
			totals.FilesAborted++
			aborted[path] = true
		}

		located := file.Located()
		if len(located) > 0 {
			totals.FilesWithIssues++
		}

		for _, loc := range located {
			totals.Issues++
			switch {
			case loc.IsFatal():
				totals.Fatal++
			case loc.Severity == diag.SeverityError:
				totals.Errors++
			case loc.Severity == diag.SeverityWarning:
				totals.Warnings++
			case loc.Severity == diag.SeverityInfo:
				totals.Infos++
			}

			fileGroup := groupFor(byFile, path)
			fileGroup.add(loc.Severity)
			fileGroup.note(string(loc.Code))

			codeGroup := groupFor(byCode, loc.Code)
			codeGroup.add(loc.Severity)
			codeGroup.note(path)

			if opts.IncludeDiagnostics {
				report.Diagnostics = append(report.Diagnostics, NewDiagnosticEntry(path, loc))
			}
		}
	}

	if opts.IncludeByFile {
		report.ByFile = fileViews(byFile, aborted, opts)
	}
	if opts.IncludeByCode {
		report.ByCode = codeViews(byCode, opts)
	}
	return report
}

// relativeTo makes path relative to dir, keeping it unchanged when dir is
// empty or the two are unrelated.
func relativeTo(dir, path string) string {
	if dir == "" {
		return path
	}
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}

func fileViews(groups map[string]*group, aborted map[string]bool, opts Options) []FileAnalysis {
	views := make([]FileAnalysis, 0, len(groups))
	for path, g := range groups {
		views = append(views, FileAnalysis{
			Path:     path,
			Issues:   g.issues,
			Errors:   g.errors,
			Warnings: g.warnings,
			Infos:    g.infos,
			Aborted:  aborted[path],
			Codes:    g.sortedMembers(),
		})
	}
	slices.SortFunc(views, func(a, b FileAnalysis) int {
		return compareRows(opts, a.tallyOf(), b.tallyOf(), a.Path, b.Path)
	})
	return views
}

func codeViews(groups map[diag.Code]*group, opts Options) []CodeAnalysis {
	views := make([]CodeAnalysis, 0, len(groups))
	for code, g := range groups {
		views = append(views, CodeAnalysis{
			Code:     string(code),
			Title:    code.Title(),
			Display:  config.FormatCode(opts.CodeFormat, code),
			Issues:   g.issues,
			Errors:   g.errors,
			Warnings: g.warnings,
			Infos:    g.infos,
			Files:    g.sortedMembers(),
		})
	}
	slices.SortFunc(views, func(a, b CodeAnalysis) int {
		return compareRows(opts, a.tallyOf(), b.tallyOf(), a.Code, b.Code)
	})
	return views
}

func (f FileAnalysis) tallyOf() tally {
	return tally{issues: f.Issues, errors: f.Errors, warnings: f.Warnings, infos: f.Infos}
}

func (c CodeAnalysis) tallyOf() tally {
	return tally{issues: c.Issues, errors: c.Errors, warnings: c.Warnings, infos: c.Infos}
}

// compareRows orders two view rows by opts.SortBy, breaking ties by name.
// Alphabetical order is always ascending and SortDesc applies to counts only.
func compareRows(opts Options, a, b tally, aName, bName string) int {
	var order int
	switch opts.SortBy {
	case SortByAlpha:
	case SortBySeverity:
		order = cmp.Or(
			cmp.Compare(b.errors, a.errors),
			cmp.Compare(b.warnings, a.warnings),
			cmp.Compare(b.issues, a.issues),
		)
	default:
		order = cmp.Compare(a.issues, b.issues)
		if opts.SortDesc {
			order = -order
		}
	}
	return cmp.Or(order, cmp.Compare(aName, bName))
}
