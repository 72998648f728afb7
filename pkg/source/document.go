// Package source provides the immutable template document and a seekable reader over it.
//
// Offsets are byte offsets into the UTF-8 text. Lines and columns are 0-based; columns count
// bytes from the start of the line.
package source

import "sort"

// Document is an immutable template text plus its line-start index.
type Document struct {
	// path identifies the document for reporting. It may be empty.
	path string

	// text is the full document content.
	text string

	// lines holds one entry per line; the first line always starts at offset 0.
	lines []LineInfo
}

// Location is a position inside a Document.
type Location struct {
	Offset int
	Line   int
	Column int
}

// NewDocument creates a Document from content. The content is copied.
func NewDocument(path string, content []byte) *Document {
	return NewDocumentFromString(path, string(content))
}

// NewDocumentFromString creates a Document from a string.
func NewDocumentFromString(path, text string) *Document {
	return &Document{
		path:  path,
		text:  text,
		lines: BuildLines(text),
	}
}

// Path returns the document path.
func (d *Document) Path() string {
	return d.path
}

// Text returns the full document text.
func (d *Document) Text() string {
	return d.text
}

// Len returns the document length in bytes.
func (d *Document) Len() int {
	return len(d.text)
}

// Slice returns the text in [start, end), clamped to the document bounds.
func (d *Document) Slice(start, end int) string {
	start = d.clamp(start)
	end = d.clamp(end)
	if end < start {
		return ""
	}
	return d.text[start:end]
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns metadata for the 0-based line index.
// The second result is false when the index is out of range.
func (d *Document) Line(index int) (LineInfo, bool) {
	if index < 0 || index >= len(d.lines) {
		return LineInfo{}, false
	}
	return d.lines[index], true
}

// LineStarts returns a copy of the line-start index.
func (d *Document) LineStarts() []int {
	starts := make([]int, len(d.lines))
	for i, line := range d.lines {
		starts[i] = line.StartOffset
	}
	return starts
}

// LineIndex returns the 0-based line containing offset.
// Offsets outside the document are clamped.
func (d *Document) LineIndex(offset int) int {
	offset = d.clamp(offset)

	// The first line whose start is past offset, minus one.
	idx := sort.Search(len(d.lines), func(i int) bool {
		return d.lines[i].StartOffset > offset
	})
	return idx - 1
}

// Location converts an offset into a Location. Offsets outside the document are clamped.
func (d *Document) Location(offset int) Location {
	offset = d.clamp(offset)
	line := d.LineIndex(offset)
	return Location{
		Offset: offset,
		Line:   line,
		Column: offset - d.lines[line].StartOffset,
	}
}

// Offset converts a 0-based line and column to an offset.
// The column may point at the line terminator or the end of the line.
// Returns (0, false) if the position does not exist.
func (d *Document) Offset(line, column int) (int, bool) {
	if line < 0 || line >= len(d.lines) || column < 0 {
		return 0, false
	}

	info := d.lines[line]
	offset := info.StartOffset + column
	if offset > info.NewlineStart {
		return 0, false
	}
	return offset, true
}

// LineContent returns the text of a 0-based line without its terminator.
func (d *Document) LineContent(line int) string {
	info, ok := d.Line(line)
	if !ok {
		return ""
	}
	return d.text[info.StartOffset:info.NewlineStart]
}

func (d *Document) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}
