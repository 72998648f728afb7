package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gorazor/pkg/analysis"
)

// JSONOutput is the document written by the json format.
type JSONOutput struct {
	Version string                  `json:"version"`
	Files   []JSONFileResult        `json:"files"`
	Errors  []analysis.FileError    `json:"errors,omitempty"`
	ByCode  []analysis.CodeAnalysis `json:"byCode,omitempty"`
	Summary analysis.Totals         `json:"summary"`
}

// JSONFileResult holds the diagnostics of one file in report order.
type JSONFileResult struct {
	Path        string                     `json:"path"`
	Aborted     bool                       `json:"aborted,omitempty"`
	Diagnostics []analysis.DiagnosticEntry `json:"diagnostics"`
}

// JSONRenderer renders a report as one JSON document, indented unless
// Options.Compact is set.
type JSONRenderer struct {
	opts Options
}

// NewJSONRenderer creates a JSON renderer.
func NewJSONRenderer(opts Options) *JSONRenderer {
	return &JSONRenderer{opts: opts}
}

// Render implements Renderer.
func (r *JSONRenderer) Render(_ context.Context, report *analysis.Report) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if !r.opts.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(newJSONOutput(report)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if _, err := buf.WriteTo(r.opts.Writer); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// newJSONOutput regroups the flat diagnostic list by file. Files appear in
// the order of their first diagnostic.
func newJSONOutput(report *analysis.Report) *JSONOutput {
	aborted := make(map[string]bool, len(report.ByFile))
	for _, file := range report.ByFile {
		aborted[file.Path] = file.Aborted
	}

	files := []JSONFileResult{}
	position := make(map[string]int)
	for _, entry := range report.Diagnostics {
		i, seen := position[entry.FilePath]
		if !seen {
			i = len(files)
			position[entry.FilePath] = i
			files = append(files, JSONFileResult{Path: entry.FilePath, Aborted: aborted[entry.FilePath]})
		}
		files[i].Diagnostics = append(files[i].Diagnostics, entry)
	}

	return &JSONOutput{
		Version: report.Version,
		Files:   files,
		Errors:  report.Errors,
		ByCode:  report.ByCode,
		Summary: report.Totals,
	}
}
