package diag

import (
	"slices"

	"github.com/yaklabco/gorazor/pkg/source"
)

// Sink is an ordered, append-only collection of diagnostics.
// It is owned by a single parse pass and is not safe for concurrent use.
type Sink struct {
	items []Diagnostic
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.items = append(s.items, d)
}

// Addf builds a diagnostic with the default severity of code and appends it.
func (s *Sink) Addf(code Code, span source.Span, format string, args ...any) Diagnostic {
	d := New(code, span, format, args...)
	s.Add(d)
	return d
}

// Diagnostics returns a copy of the collected diagnostics in insertion order.
func (s *Sink) Diagnostics() []Diagnostic {
	return slices.Clone(s.items)
}

// Len returns the number of diagnostics.
func (s *Sink) Len() int {
	return len(s.items)
}

// HasErrors reports whether any diagnostic is an error or fatal.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity.Rank() >= SeverityError.Rank() {
			return true
		}
	}
	return false
}

// Fatal returns the first fatal diagnostic, if any.
func (s *Sink) Fatal() (Diagnostic, bool) {
	for _, d := range s.items {
		if d.IsFatal() {
			return d, true
		}
	}
	return Diagnostic{}, false
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
