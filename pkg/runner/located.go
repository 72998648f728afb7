package runner

import (
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/position"
)

// Located is a diagnostic resolved to line positions in its document.
type Located struct {
	diag.Diagnostic

	// Range is the 0-based line position span of the diagnostic.
	Range position.LinePositionSpan
}

// Line returns the 1-based start line.
func (l Located) Line() int {
	return l.Range.Start.Line + 1
}

// Column returns the 1-based start column in bytes.
func (l Located) Column() int {
	return l.Range.Start.Character + 1
}

// EndLine returns the 1-based end line.
func (l Located) EndLine() int {
	return l.Range.End.Line + 1
}

// EndColumn returns the 1-based exclusive end column in bytes.
func (l Located) EndColumn() int {
	return l.Range.End.Character + 1
}

// Located resolves the outcome's diagnostics to line positions, in report order.
func (o FileOutcome) Located() []Located {
	diags := o.Diagnostics()
	if len(diags) == 0 || o.Result.Document == nil {
		return nil
	}

	mapper := position.NewMapper(o.Result.Document)
	located := make([]Located, 0, len(diags))
	for _, d := range diags {
		located = append(located, Located{Diagnostic: d, Range: mapper.MapSpan(d.Span)})
	}
	return located
}

// SourceLine returns the text of the 1-based line without its line break, or "" when the
// outcome holds no document or the line does not exist.
func (o FileOutcome) SourceLine(line int) string {
	if o.Result == nil || o.Result.Document == nil || line < 1 {
		return ""
	}
	return o.Result.Document.LineContent(line - 1)
}
