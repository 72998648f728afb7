package reporter_test

import (
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/runner"
	"github.com/yaklabco/gorazor/pkg/source"
)

func outcome(path, text string, diags ...diag.Diagnostic) runner.FileOutcome {
	return runner.FileOutcome{
		Path: path,
		Result: &parser.Result{
			Document:    source.NewDocumentFromString(path, text),
			Diagnostics: diags,
		},
	}
}

// newResult assembles a runner result and its statistics from outcomes.
func newResult(files ...runner.FileOutcome) *runner.Result {
	result := &runner.Result{
		Files: files,
		Stats: runner.Stats{
			DiagnosticsBySeverity: make(map[diag.Severity]int),
			DiagnosticsByCode:     make(map[diag.Code]int),
		},
	}
	for _, file := range files {
		result.Stats.FilesDiscovered++
		if file.Error != nil {
			result.Stats.FilesErrored++
			continue
		}
		result.Stats.FilesProcessed++
		diags := file.Diagnostics()
		if len(diags) > 0 {
			result.Stats.FilesWithIssues++
		}
		for _, d := range diags {
			result.Stats.DiagnosticsTotal++
			result.Stats.DiagnosticsBySeverity[d.Severity]++
			result.Stats.DiagnosticsByCode[d.Code]++
		}
	}
	return result
}

// createTestResult returns two diagnostics in one file and a clean file.
//
//	views/index.cshtml:1:1  error    RZ1004
//	views/index.cshtml:2:3  warning  RZ1008
func createTestResult() *runner.Result {
	return newResult(
		outcome("views/index.cshtml", "@{ x\n  </p>",
			diag.New(diag.CodeMissingCloseBrace, source.Span{Start: 0, Length: 2}, "code block is missing a closing brace"),
			diag.New(diag.CodeUnexpectedEndTag, source.Span{Start: 7, Length: 3}, "end tag </p> has no matching start tag"),
		),
		outcome("views/clean.cshtml", "<p>ok</p>"),
	)
}
