package reporter

import (
	"io"
	"os"
	"path/filepath"

	"github.com/yaklabco/gorazor/pkg/analysis"
	"github.com/yaklabco/gorazor/pkg/config"
)

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	Color config.ColorMode

	// ShowContext includes the source line under each diagnostic.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// GroupByFile groups diagnostics by file (default: true for text format).
	GroupByFile bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// PerFile outputs a separate report for each file (table format only).
	PerFile bool

	// CodeFormat controls how diagnostic codes appear in output.
	CodeFormat config.CodeFormat

	// SummaryOrder controls the order of tables in summary output.
	SummaryOrder config.SummaryOrder

	// SortBy orders the per-file and per-code views of the JSON and summary formats.
	SortBy analysis.SortField

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is.
	WorkingDir string

	// ToolVersion is reported as the driver version in SARIF output.
	ToolVersion string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatText,
		Color:        config.ColorAuto,
		ShowContext:  true,
		ShowSummary:  true,
		GroupByFile:  true,
		Compact:      false,
		CodeFormat:   config.CodeFormatCode,
		SummaryOrder: config.SummaryOrderCodes,
		SortBy:       analysis.SortByCount,
		ToolVersion:  "dev",
	}
}

// withDefaults fills the unset output fields from DefaultOptions.
func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Writer == nil {
		o.Writer = defaults.Writer
	}
	if o.ErrorWriter == nil {
		o.ErrorWriter = defaults.ErrorWriter
	}
	if o.Format == "" {
		o.Format = defaults.Format
	}
	if o.CodeFormat == "" {
		o.CodeFormat = defaults.CodeFormat
	}
	if o.SortBy == "" {
		o.SortBy = defaults.SortBy
	}
	if o.ToolVersion == "" {
		o.ToolVersion = defaults.ToolVersion
	}
	return o
}

// analysisOptions builds the analysis configuration shared by the report-based formats.
func (o Options) analysisOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.SortBy = o.SortBy
	opts.CodeFormat = o.CodeFormat
	opts.WorkingDir = o.WorkingDir
	return opts
}

// displayPath makes path relative to the working directory when possible.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" {
		return path
	}
	rel, err := filepath.Rel(o.WorkingDir, path)
	if err != nil {
		return path
	}
	return rel
}
