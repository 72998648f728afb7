// Package reporter formats parse results for terminals and machines.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/gorazor/pkg/runner"
)

// Reporter formats and writes parse results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of issues reported and any write errors.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for opts.Format. Unset fields take their DefaultOptions values.
func New(opts Options) (Reporter, error) {
	opts = opts.withDefaults()

	switch opts.Format {
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatSARIF:
		return NewSARIFReporter(opts), nil
	case FormatJSON:
		return NewAnalyzingReporter(NewJSONRenderer(opts), opts), nil
	case FormatSummary:
		return NewAnalyzingReporter(NewSummaryRenderer(opts), opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}
