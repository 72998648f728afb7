package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gorazor/pkg/analysis"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// Renderer writes an analysis.Report. The JSON and summary formats are renderers;
// text, table and SARIF walk the runner result directly.
type Renderer interface {
	Render(ctx context.Context, report *analysis.Report) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, report *analysis.Report) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, report *analysis.Report) error {
	return f(ctx, report)
}

var _ Reporter = (*analyzingReporter)(nil)

// analyzingReporter analyzes a run once and hands the report to a Renderer.
type analyzingReporter struct {
	renderer Renderer
	opts     analysis.Options
}

// NewAnalyzingReporter returns a Reporter that renders analysis.Analyze output with renderer.
func NewAnalyzingReporter(renderer Renderer, opts Options) Reporter {
	return &analyzingReporter{renderer: renderer, opts: opts.analysisOptions()}
}

// Report analyzes result and renders the report, returning the number of issues.
func (r *analyzingReporter) Report(ctx context.Context, result *runner.Result) (int, error) {
	report := analysis.Analyze(result, r.opts)
	if err := r.renderer.Render(ctx, report); err != nil {
		return 0, fmt.Errorf("render report: %w", err)
	}
	return report.Totals.Issues, nil
}
