package analysis

import (
	"fmt"
	"strings"

	"github.com/yaklabco/gorazor/pkg/config"
)

// SortField orders the per-file and per-code views.
type SortField string

// Sort orders.
const (
	SortByCount    SortField = "count"    // most issues first, ties by name
	SortByAlpha    SortField = "alpha"    // by path or code, always ascending
	SortBySeverity SortField = "severity" // most errors, then most warnings
)

// IsValid reports whether s is a known sort order.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortBySeverity:
		return true
	default:
		return false
	}
}

// ParseSortField converts a flag value to a SortField. Empty means SortByCount.
func ParseSortField(value string) (SortField, error) {
	if value == "" {
		return SortByCount, nil
	}
	field := SortField(strings.ToLower(value))
	if !field.IsValid() {
		return "", fmt.Errorf("unknown sort order %q; valid values: count, alpha, severity", value)
	}
	return field, nil
}

// Options selects the views Analyze builds and how they are ordered.
type Options struct {
	IncludeDiagnostics bool
	IncludeByFile      bool
	IncludeByCode      bool

	SortBy SortField

	// SortDesc reverses SortByCount so the largest counts come first.
	SortDesc bool

	// CodeFormat controls CodeAnalysis.Display.
	CodeFormat config.CodeFormat

	// WorkingDir, when set, makes reported paths relative to it.
	WorkingDir string
}

// DefaultOptions builds every view, largest counts first, with bare codes.
func DefaultOptions() Options {
	return Options{
		IncludeDiagnostics: true,
		IncludeByFile:      true,
		IncludeByCode:      true,
		SortBy:             SortByCount,
		SortDesc:           true,
		CodeFormat:         config.CodeFormatCode,
	}
}
