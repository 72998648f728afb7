// Package position maps syntax tree positions to line and column coordinates.
package position

import (
	"fmt"
)

// LinePosition is a 0-based line and character. Character counts bytes unless a method
// states otherwise.
type LinePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// String formats the position 1-based as "line:column".
func (p LinePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// Before reports whether p comes before other.
func (p LinePosition) Before(other LinePosition) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Character < other.Character
}

// LinePositionSpan is a half-open range of line positions.
type LinePositionSpan struct {
	Start LinePosition `json:"start"`
	End   LinePosition `json:"end"`
}

// IsEmpty reports whether the span is degenerate.
func (s LinePositionSpan) IsEmpty() bool {
	return s.Start == s.End
}

// SingleLine reports whether the span starts and ends on the same line.
func (s LinePositionSpan) SingleLine() bool {
	return s.Start.Line == s.End.Line
}

// String formats the span as "start-end".
func (s LinePositionSpan) String() string {
	return s.Start.String() + "-" + s.End.String()
}
