package source

// LineInfo describes one line of a document.
type LineInfo struct {
	// StartOffset is the offset of the first byte of the line.
	StartOffset int

	// NewlineStart is the offset of the line terminator, or the line end if there is none.
	NewlineStart int

	// EndOffset is the offset just past the line terminator.
	EndOffset int
}

// BuildLines constructs line metadata from text.
// It recognizes LF, CRLF and lone CR terminators. The result always contains at least one line,
// and the line after a trailing terminator is present with zero length.
func BuildLines(text string) []LineInfo {
	lines := make([]LineInfo, 0, 1)
	lineStart := 0

	for idx := 0; idx < len(text); idx++ {
		var end int

		switch text[idx] {
		case '\n':
			end = idx + 1
		case '\r':
			end = idx + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
		default:
			continue
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: idx,
			EndOffset:    end,
		})
		lineStart = end
		idx = end - 1
	}

	// Last line, possibly empty.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return lines
}

// IsNewline reports whether r starts a line terminator.
func IsNewline(r rune) bool {
	return r == '\n' || r == '\r'
}

// IsWhitespace reports whether r is non-newline whitespace.
func IsWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\f', '\v', '\u00a0', '\ufeff':
		return true
	default:
		return false
	}
}
