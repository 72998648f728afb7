// Package diag defines parse diagnostics and the append-only sink that collects them.
package diag

import (
	"fmt"

	"github.com/yaklabco/gorazor/pkg/source"
)

// Severity indicates how serious a diagnostic is.
type Severity string

// Severity levels.
const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"

	// SeverityFatal marks an unrecoverable condition that aborted the parse pass.
	SeverityFatal Severity = "fatal"
)

// ParseSeverity converts a string to a Severity.
// The second result is false for unknown values.
func ParseSeverity(value string) (Severity, bool) {
	switch Severity(value) {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityFatal:
		return Severity(value), true
	default:
		return "", false
	}
}

// Rank orders severities from least (0) to most severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityFatal:
		return 3
	default:
		return -1
	}
}

// Diagnostic is a single parse finding.
type Diagnostic struct {
	// Code identifies the kind of problem, for example "RZ1004".
	Code Code `json:"code"`

	// Severity indicates the importance of the diagnostic.
	Severity Severity `json:"severity"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Span is the affected byte range in the document.
	Span source.Span `json:"span"`
}

// New creates a diagnostic with the default severity of code.
func New(code Code, span source.Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: code.DefaultSeverity(),
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// IsFatal reports whether the diagnostic aborted the parse.
func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityFatal
}

// String formats the diagnostic as "offset: severity code: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d: %s %s: %s", d.Span.Start, d.Severity, d.Code, d.Message)
}
