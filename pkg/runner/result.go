package runner

import (
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/fsutil"
	"github.com/yaklabco/gorazor/pkg/parser"
)

// FileOutcome is what happened to one discovered file. Exactly one of
// Result and Error is set.
type FileOutcome struct {
	Path string

	// Info describes the bytes that were parsed, for later change detection.
	Info *fsutil.FileInfo

	Result *parser.Result
	Error  error
}

// Diagnostics returns the parse diagnostics, or nil when the file was not parsed.
func (o FileOutcome) Diagnostics() []diag.Diagnostic {
	if o.Result == nil {
		return nil
	}
	return o.Result.Diagnostics
}

// Stats are the counters of a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int // parsed, including aborted ones
	FilesErrored    int // unreadable
	FilesAborted    int // parse stopped at a fatal diagnostic
	FilesWithIssues int

	DiagnosticsTotal      int
	DiagnosticsBySeverity map[diag.Severity]int
	DiagnosticsByCode     map[diag.Code]int
}

func newStats() Stats {
	return Stats{
		DiagnosticsBySeverity: make(map[diag.Severity]int),
		DiagnosticsByCode:     make(map[diag.Code]int),
	}
}

// count folds one outcome into the counters.
func (s *Stats) count(outcome FileOutcome) {
	switch {
	case outcome.Error != nil:
		s.FilesErrored++
		return
	case outcome.Result == nil:
		return
	}

	s.FilesProcessed++
	if outcome.Result.Fatal() {
		s.FilesAborted++
	}

	diags := outcome.Result.Diagnostics
	if len(diags) == 0 {
		return
	}
	s.FilesWithIssues++
	s.DiagnosticsTotal += len(diags)
	for _, d := range diags {
		s.DiagnosticsBySeverity[d.Severity]++
		s.DiagnosticsByCode[d.Code]++
	}
}

// Result collects every outcome of a run in discovery order.
type Result struct {
	Files []FileOutcome
	Stats Stats

	// Errors are failures not tied to a single file.
	Errors []error
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.count(outcome)
}

// HasFailures reports whether any error or fatal diagnostic was produced.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	counts := r.Stats.DiagnosticsBySeverity
	return counts[diag.SeverityError]+counts[diag.SeverityFatal] > 0
}

// HasIssues reports whether any diagnostic was produced.
func (r *Result) HasIssues() bool {
	return r != nil && r.Stats.DiagnosticsTotal > 0
}
