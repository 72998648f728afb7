package logging

// Structured field keys shared by every log call site.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldName       = "name"

	// Settings resolved from configuration.
	FieldFormat     = "format"
	FieldDesignTime = "design_time"
	FieldJobs       = "jobs"
	FieldDebounce   = "debounce"

	FieldDiagnosticsTotal = "diagnostics_total"
	FieldDuration         = "duration"

	// Background reparsing and file watching.
	FieldRevision = "revision"
	FieldPass     = "pass"
	FieldEvent    = "event"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Language server traffic.
	FieldMethod = "method"
	FieldURI    = "uri"
)
