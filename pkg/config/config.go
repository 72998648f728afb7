// Package config defines core configuration types for gorazor.
// These types are pure data structures; discovery, precedence and validation live in the
// configloader package.
package config

import (
	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/langdetect"
)

// OutputFormat specifies the output format for diagnostics.
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatSARIF   OutputFormat = "sarif"
	FormatSummary OutputFormat = "summary"
)

// CodeFormat controls how diagnostic codes appear in output.
type CodeFormat string

const (
	CodeFormatCode     CodeFormat = "code"     // "RZ1004"
	CodeFormatName     CodeFormat = "name"     // "missing-close-brace"
	CodeFormatCombined CodeFormat = "combined" // "RZ1004/missing-close-brace"
)

// SummaryOrder controls the order of tables in summary output.
type SummaryOrder string

const (
	// SummaryOrderCodes shows the diagnostic codes table first (default).
	SummaryOrderCodes SummaryOrder = "codes"
	// SummaryOrderFiles shows the files table first.
	SummaryOrderFiles SummaryOrder = "files"
)

// IsValid returns true if the summary order is valid.
func (s SummaryOrder) IsValid() bool {
	switch s {
	case SummaryOrderCodes, SummaryOrderFiles:
		return true
	default:
		return false
	}
}

// ColorMode controls styled terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// DefaultDebounce is the default quiet period before a changed document is reparsed.
const DefaultDebounce = "50ms"

// FeaturesConfig toggles optional grammar. Unset fields keep the parser default (enabled).
type FeaturesConfig struct {
	MarkupInCode         *bool `mapstructure:"markup_in_code" yaml:"markup_in_code,omitempty"`
	CodeInAttributeNames *bool `mapstructure:"code_in_attribute_names" yaml:"code_in_attribute_names,omitempty"`
	HTMLComments         *bool `mapstructure:"html_comments" yaml:"html_comments,omitempty"`
}

// Config is the root configuration structure for gorazor.
type Config struct {
	// DesignTime inserts markers for every missing directive token instead of stopping at the
	// first one.
	DesignTime bool `mapstructure:"design_time" yaml:"design_time"`

	// ParseLeadingDirectives stops parsing after the leading directive block.
	ParseLeadingDirectives bool `mapstructure:"parse_leading_directives" yaml:"parse_leading_directives"`

	// Features toggles optional grammar.
	Features FeaturesConfig `mapstructure:"features" yaml:"features,omitempty"`

	// Directives are custom directives registered in addition to the built-in ones.
	Directives []directive.Descriptor `mapstructure:"directives" yaml:"directives,omitempty"`

	// Extensions are the file extensions parsed as templates.
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for files to ignore.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"format" yaml:"format,omitempty"`

	// Jobs specifies the number of parallel workers. 0 means one per CPU.
	Jobs int `mapstructure:"jobs" yaml:"jobs,omitempty"`

	// Color controls styled output: auto, always or never.
	Color ColorMode `mapstructure:"color" yaml:"color,omitempty"`

	// Debounce is the quiet period, as a Go duration, before edited documents are reparsed.
	Debounce string `mapstructure:"debounce" yaml:"debounce,omitempty"`

	// CLI-level options (not persisted to config files).

	// CodeFormat controls how diagnostic codes appear in output.
	CodeFormat CodeFormat `mapstructure:"-" yaml:"-"`

	// SummaryOrder controls the table order of summary output.
	SummaryOrder SummaryOrder `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Extensions:   langdetect.DefaultExtensions(),
		Format:       FormatText,
		Color:        ColorAuto,
		Debounce:     DefaultDebounce,
		CodeFormat:   CodeFormatCode,
		SummaryOrder: SummaryOrderCodes,
		Jobs:         0, // 0 means use GOMAXPROCS
	}
}
