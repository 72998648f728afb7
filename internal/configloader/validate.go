package configloader

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/directive"
)

// ValidationError is one problem with a configuration value.
type ValidationError struct {
	// Field is the dotted path of the value, e.g. "directives[0].kind".
	Field   string
	Value   any
	Message string

	// FilePath and Line locate the value when it came from a file.
	FilePath string
	Line     int
}

// Error renders "file:line: field: message", omitting the parts that are unknown.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.FilePath != "" {
		b.WriteString(e.FilePath)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// ValidationResult collects the errors that reject a configuration and the
// warnings that merely get reported.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether no errors were found.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

func (r *ValidationResult) errorf(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	outputFormats = []config.OutputFormat{
		config.FormatText, config.FormatTable, config.FormatJSON, config.FormatSARIF, config.FormatSummary,
	}
	colorModes = []config.ColorMode{config.ColorAuto, config.ColorAlways, config.ColorNever}
)

// Validate checks every field of cfg. A nil config is valid.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Format != "" && !slices.Contains(outputFormats, cfg.Format) {
		result.errorf("format", cfg.Format, "invalid format %q; must be one of: text, table, json, sarif, summary", cfg.Format)
	}
	if cfg.Color != "" && !slices.Contains(colorModes, cfg.Color) {
		result.errorf("color", cfg.Color, "invalid color mode %q; must be one of: auto, always, never", cfg.Color)
	}
	if cfg.Jobs < 0 {
		result.errorf("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Debounce != "" {
		if _, err := cfg.DebounceDuration(); err != nil {
			result.errorf("debounce", cfg.Debounce, "invalid duration %q; expected a value such as 50ms", cfg.Debounce)
		}
	}

	for i, ext := range cfg.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			result.errorf(fmt.Sprintf("extensions[%d]", i), ext, "invalid extension %q; must start with a dot, e.g. .cshtml", ext)
		}
	}
	for i, pattern := range cfg.Ignore {
		// Match reports only malformed patterns as errors.
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.errorf(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}

	validateDirectives(cfg.Directives, result)
	return result
}

// validateDirectives rejects malformed descriptors, redefined built-ins and
// duplicates, and warns about descriptors without a description.
func validateDirectives(descs []directive.Descriptor, result *ValidationResult) {
	firstIndex := make(map[string]int, len(descs))

	for i := range descs {
		desc := &descs[i]
		field := fmt.Sprintf("directives[%d]", i)

		if err := desc.Validate(); err != nil {
			result.errorf(field, desc.Name, "%s", err)
			continue
		}
		if _, builtin := directive.DefaultRegistry.Get(desc.Name); builtin {
			result.errorf(field+".name", desc.Name, "directive %q is built in and cannot be redefined", desc.Name)
			continue
		}
		if first, dup := firstIndex[desc.Name]; dup {
			result.errorf(field+".name", desc.Name, "directive %q is already defined by directives[%d]", desc.Name, first)
			continue
		}
		firstIndex[desc.Name] = i

		if desc.Description == "" {
			result.warnf(field+".description", desc.Name, "directive %q has no description; hovers and listings will be empty", desc.Name)
		}
	}
}

// ValidateWithFile validates cfg and stamps every finding with filePath.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for _, findings := range [][]ValidationError{result.Errors, result.Warnings} {
		for i := range findings {
			findings[i].FilePath = filePath
		}
	}
	return result
}
