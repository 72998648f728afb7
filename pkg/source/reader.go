package source

import "unicode/utf8"

// EOF is the sentinel returned when reading at or past the end of a document.
const EOF rune = -1

// Reader is a seekable cursor over a Document that tracks line and column.
// Reading past the end is legal and keeps returning EOF.
type Reader struct {
	doc    *Document
	offset int
	line   int
}

// NewReader creates a Reader positioned at offset 0.
func NewReader(doc *Document) *Reader {
	return &Reader{doc: doc}
}

// Document returns the underlying document.
func (r *Reader) Document() *Document {
	return r.doc
}

// Offset returns the current offset.
func (r *Reader) Offset() int {
	return r.offset
}

// Location returns the current offset, line and column.
func (r *Reader) Location() Location {
	return Location{
		Offset: r.offset,
		Line:   r.line,
		Column: r.offset - r.doc.lines[r.line].StartOffset,
	}
}

// EOF reports whether the reader is at the end of the document.
func (r *Reader) EOF() bool {
	return r.offset >= len(r.doc.text)
}

// Peek returns the rune at the current position without consuming it.
func (r *Reader) Peek() rune {
	ch, _ := r.decode(r.offset)
	return ch
}

// PeekAt returns the rune n runes ahead of the current position without consuming anything.
// PeekAt(0) is Peek.
func (r *Reader) PeekAt(n int) rune {
	offset := r.offset
	for range n {
		_, size := r.decode(offset)
		if size == 0 {
			return EOF
		}
		offset += size
	}
	ch, _ := r.decode(offset)
	return ch
}

// HasPrefix reports whether the text at the current position starts with prefix.
func (r *Reader) HasPrefix(prefix string) bool {
	end := r.offset + len(prefix)
	return end <= len(r.doc.text) && r.doc.text[r.offset:end] == prefix
}

// Read consumes and returns the rune at the current position.
func (r *Reader) Read() rune {
	ch, size := r.decode(r.offset)
	if size == 0 {
		return EOF
	}
	r.offset += size

	// Advance the line once the offset reaches the next line start.
	for r.line+1 < len(r.doc.lines) && r.doc.lines[r.line+1].StartOffset <= r.offset {
		r.line++
	}
	return ch
}

// Seek moves the reader to an absolute offset, clamped to [0, Len].
func (r *Reader) Seek(offset int) {
	r.offset = r.doc.clamp(offset)
	r.line = r.doc.LineIndex(r.offset)
}

func (r *Reader) decode(offset int) (rune, int) {
	if offset >= len(r.doc.text) {
		return EOF, 0
	}
	ch, size := utf8.DecodeRuneInString(r.doc.text[offset:])
	return ch, size
}
