package position

import (
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// TrimmedSpan returns the span of the node at the end of path from its first to its last
// non-whitespace token. It returns false when the node has no such token.
func TrimmedSpan(path syntax.Path) (source.Span, bool) {
	node := path.Node()
	if node == nil {
		return source.Span{}, false
	}

	offset := path.Start()
	first, last := -1, -1
	for _, leaf := range node.Leaves() {
		start := offset
		offset += leaf.Width()
		if leaf.IsMarker() || isWhitespaceText(leaf.Text()) {
			continue
		}
		if first < 0 {
			first = start + leadingWhitespace(leaf.Text())
		}
		last = offset - trailingWhitespace(leaf.Text())
	}

	if first < 0 {
		return source.Span{}, false
	}
	return source.NewSpan(first, last), true
}

// ContainsOnlyWhitespace reports whether every token under node is whitespace or a newline.
// A node with no tokens counts as whitespace.
func ContainsOnlyWhitespace(node *syntax.Node) bool {
	return isWhitespaceText(node.Content())
}

// LeadingWhitespaceLength returns the number of bytes of whitespace and newlines at the start
// of node.
func LeadingWhitespaceLength(node *syntax.Node) int {
	return leadingWhitespace(node.Content())
}

// TrailingWhitespaceLength returns the number of bytes of whitespace and newlines at the end
// of node.
func TrailingWhitespaceLength(node *syntax.Node) int {
	return trailingWhitespace(node.Content())
}

func isSpace(r rune) bool {
	return source.IsWhitespace(r) || source.IsNewline(r)
}

func isWhitespaceText(text string) bool {
	return leadingWhitespace(text) == len(text)
}

func leadingWhitespace(text string) int {
	for idx, r := range text {
		if !isSpace(r) {
			return idx
		}
	}
	return len(text)
}

func trailingWhitespace(text string) int {
	end := len(text)
	for end > 0 {
		r, size := lastRune(text[:end])
		if !isSpace(r) {
			break
		}
		end -= size
	}
	return len(text) - end
}
