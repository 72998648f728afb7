package reporter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/gorazor/pkg/config"
)

// Format names an output format. The values match config.OutputFormat.
type Format string

const (
	FormatText    = Format(config.FormatText)
	FormatTable   = Format(config.FormatTable)
	FormatJSON    = Format(config.FormatJSON)
	FormatSARIF   = Format(config.FormatSARIF)
	FormatSummary = Format(config.FormatSummary)
)

// Formats lists every supported format in help order.
func Formats() []Format {
	return []Format{FormatText, FormatTable, FormatJSON, FormatSARIF, FormatSummary}
}

// ParseFormat validates a format name. Empty means FormatText.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatText, nil
	}
	if format := Format(name); format.IsValid() {
		return format, nil
	}

	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, f.String())
	}
	return "", fmt.Errorf("unknown format %q; valid formats: %s", name, strings.Join(names, ", "))
}

func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is one of Formats.
func (f Format) IsValid() bool {
	return slices.Contains(Formats(), f)
}
