package source

// Span is a half-open byte range [Start, Start+Length).
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// NewSpan creates a span from start and end offsets.
func NewSpan(start, end int) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, Length: end - start}
}

// End returns the exclusive end offset.
func (s Span) End() int {
	return s.Start + s.Length
}

// IsEmpty reports whether the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Length == 0
}

// Contains reports whether offset falls inside the span.
// An empty span contains only its start.
func (s Span) Contains(offset int) bool {
	if s.Length == 0 {
		return offset == s.Start
	}
	return offset >= s.Start && offset < s.End()
}
