package position

import (
	"unicode/utf16"

	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// Mapper converts offsets of one document to line positions. It caches the last line it
// resolved, so sequential lookups in document order avoid the binary search.
// A Mapper is not safe for concurrent use.
type Mapper struct {
	doc      *source.Document
	lastLine int
}

// NewMapper creates a Mapper for doc.
func NewMapper(doc *source.Document) *Mapper {
	return &Mapper{doc: doc}
}

// Document returns the mapped document.
func (m *Mapper) Document() *source.Document {
	return m.doc
}

// LinePosition maps offset to a line position. Offsets outside the document are clamped, so the
// end of the document maps to the position after its last character.
func (m *Mapper) LinePosition(offset int) LinePosition {
	offset = min(max(offset, 0), m.doc.Len())
	line := m.line(offset)
	info, _ := m.doc.Line(line)
	return LinePosition{Line: line, Character: offset - info.StartOffset}
}

// Offset maps a line position back to an offset.
func (m *Mapper) Offset(pos LinePosition) (int, bool) {
	return m.doc.Offset(pos.Line, pos.Character)
}

// MapSpan maps an offset span to a line position span.
func (m *Mapper) MapSpan(span source.Span) LinePositionSpan {
	start := m.LinePosition(span.Start)
	if span.IsEmpty() {
		return LinePositionSpan{Start: start, End: start}
	}
	return LinePositionSpan{Start: start, End: m.LinePosition(span.End())}
}

// Range maps the full extent of the node at the end of path.
func (m *Mapper) Range(path syntax.Path) LinePositionSpan {
	return m.MapSpan(path.Span())
}

// TrimmedRange maps the extent of the node at the end of path without its leading and trailing
// whitespace. It returns false when the node holds only whitespace, in which case the trimmed
// range is undefined.
func (m *Mapper) TrimmedRange(path syntax.Path) (LinePositionSpan, bool) {
	span, ok := TrimmedSpan(path)
	if !ok {
		return LinePositionSpan{}, false
	}
	return m.MapSpan(span), true
}

// UTF16Position maps offset to a line position whose character counts UTF-16 code units, as
// editors speaking LSP expect.
func (m *Mapper) UTF16Position(offset int) LinePosition {
	pos := m.LinePosition(offset)
	info, _ := m.doc.Line(pos.Line)
	prefix := m.doc.Slice(info.StartOffset, info.StartOffset+pos.Character)
	return LinePosition{Line: pos.Line, Character: utf16Len(prefix)}
}

// UTF16Span maps span to a line position span in UTF-16 code units.
func (m *Mapper) UTF16Span(span source.Span) LinePositionSpan {
	return LinePositionSpan{Start: m.UTF16Position(span.Start), End: m.UTF16Position(span.End())}
}

// OffsetFromUTF16 maps a position whose character counts UTF-16 code units back to an offset.
// A character past the end of the line is clamped to the line end.
func (m *Mapper) OffsetFromUTF16(pos LinePosition) (int, bool) {
	info, ok := m.doc.Line(pos.Line)
	if !ok || pos.Character < 0 {
		return 0, false
	}

	units := 0
	line := m.doc.Slice(info.StartOffset, info.NewlineStart)
	for idx, r := range line {
		if units >= pos.Character {
			return info.StartOffset + idx, true
		}
		units += max(utf16.RuneLen(r), 1)
	}
	return info.NewlineStart, true
}

// line returns the line containing offset, consulting the cached line first.
func (m *Mapper) line(offset int) int {
	if info, ok := m.doc.Line(m.lastLine); ok && offset >= info.StartOffset {
		next, hasNext := m.doc.Line(m.lastLine + 1)
		if !hasNext || offset < next.StartOffset {
			return m.lastLine
		}
	}

	m.lastLine = m.doc.LineIndex(offset)
	return m.lastLine
}

func utf16Len(text string) int {
	n := 0
	for _, r := range text {
		n += max(utf16.RuneLen(r), 1)
	}
	return n
}
