// Package analysis aggregates parse results into views shared by the reporters.
package analysis

import "time"

// Report contains pre-computed views of a parse run.
// Computed once by Analyze, used by all renderers.
type Report struct {
	// Diagnostics is the flat list for detailed output.
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`

	// ByFile groups diagnostics by file path.
	ByFile []FileAnalysis `json:"byFile,omitempty"`

	// ByCode groups diagnostics by diagnostic code.
	ByCode []CodeAnalysis `json:"byCode,omitempty"`

	// Errors lists files that could not be read or parsed.
	Errors []FileError `json:"errors,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticEntry represents a single located diagnostic.
// Lines and columns are 1-based; columns count bytes.
type DiagnosticEntry struct {
	FilePath    string `json:"filePath"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
}

// FileError records a file that produced no parse result.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files           int `json:"filesChecked"`
	FilesWithIssues int `json:"filesWithIssues"`
	FilesErrored    int `json:"filesErrored"`
	FilesAborted    int `json:"filesAborted"`
	Issues          int `json:"totalIssues"`
	Fatal           int `json:"fatal"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
}

// HasIssues returns true if there are any issues.
func (t Totals) HasIssues() bool {
	return t.Issues > 0
}

// HasErrors returns true if there are any errors, counting fatal diagnostics.
func (t Totals) HasErrors() bool {
	return t.Errors > 0 || t.Fatal > 0
}

// FileAnalysis contains aggregated data for a single file.
type FileAnalysis struct {
	Path     string   `json:"path"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`
	Aborted  bool     `json:"aborted,omitempty"`
	Codes    []string `json:"codes,omitempty"`
}

// CodeAnalysis contains aggregated data for a single diagnostic code.
type CodeAnalysis struct {
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Display  string   `json:"display"`
	Issues   int      `json:"issues"`
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`
	Files    []string `json:"files,omitempty"`
}
