package parser

import (
	"unicode"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// Mode selects the lexical grammar used for the next token.
type Mode uint8

// Tokenizer modes.
const (
	// ModeMarkup lexes markup text. Quotes, '=' and '/' fold into text.
	ModeMarkup Mode = iota

	// ModeTag lexes the inside of a start or end tag.
	ModeTag

	// ModeCode lexes embedded Go code.
	ModeCode
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeMarkup:
		return "markup"
	case ModeTag:
		return "tag"
	case ModeCode:
		return "code"
	default:
		return "unknown"
	}
}

// lexeme is a scanned token together with the diagnostics its scan produced.
// Diagnostics reach the sink only when the lexeme is consumed.
type lexeme struct {
	mode  Mode
	token syntax.Token
	diags []diag.Diagnostic
}

// Tokenizer turns the characters at the reader position into tokens.
// It never fails: malformed input is folded into text or reported as a diagnostic.
type Tokenizer struct {
	reader *source.Reader
	sink   *diag.Sink
	code   *codeScanner
	peeked *lexeme
}

// NewTokenizer creates a tokenizer reading from reader and reporting to sink.
func NewTokenizer(reader *source.Reader, sink *diag.Sink) *Tokenizer {
	return &Tokenizer{
		reader: reader,
		sink:   sink,
		code:   newCodeScanner(reader.Document()),
	}
}

// Offset returns the current reader offset.
func (t *Tokenizer) Offset() int {
	return t.reader.Offset()
}

// Peek returns the next token in mode without consuming it.
// At the end of input it returns a zero-width token of kind TokenUnknown.
func (t *Tokenizer) Peek(mode Mode) syntax.Token {
	return t.lookahead(mode).token
}

// Next consumes and returns the next token in mode.
func (t *Tokenizer) Next(mode Mode) syntax.Token {
	lx := t.lookahead(mode)
	t.peeked = nil
	t.reader.Seek(lx.token.End())
	for _, d := range lx.diags {
		t.sink.Add(d)
	}
	return lx.token
}

// Take consumes exactly length bytes as a single token of kind.
func (t *Tokenizer) Take(kind syntax.TokenKind, length int) syntax.Token {
	start := t.reader.Offset()
	doc := t.reader.Document()
	end := min(start+length, doc.Len())

	t.peeked = nil
	t.reader.Seek(end)
	return syntax.Token{Kind: kind, Start: start, Content: doc.Slice(start, end)}
}

// ReadUntil consumes text up to, but not including, terminator as one token of kind.
// If terminator is absent the token runs to the end of input and found is false.
// An empty match yields a zero-width token.
func (t *Tokenizer) ReadUntil(kind syntax.TokenKind, terminator string) (syntax.Token, bool) {
	start := t.reader.Offset()
	doc := t.reader.Document()
	text := doc.Text()

	end := doc.Len()
	found := false
	for idx := start; idx+len(terminator) <= len(text); idx++ {
		if text[idx:idx+len(terminator)] == terminator {
			end, found = idx, true
			break
		}
	}
	return t.Take(kind, end-start), found
}

// PeekRune returns the rune n runes ahead of the reader without consuming it.
func (t *Tokenizer) PeekRune(n int) rune {
	return t.reader.PeekAt(n)
}

// HasPrefix reports whether the text at the reader starts with prefix.
func (t *Tokenizer) HasPrefix(prefix string) bool {
	return t.reader.HasPrefix(prefix)
}

// Seek repositions the tokenizer and drops any buffered lookahead.
func (t *Tokenizer) Seek(offset int) {
	t.peeked = nil
	t.reader.Seek(offset)
}

func (t *Tokenizer) lookahead(mode Mode) *lexeme {
	offset := t.reader.Offset()
	if t.peeked != nil && t.peeked.mode == mode && t.peeked.token.Start == offset {
		return t.peeked
	}

	lx := t.scan(mode)
	t.reader.Seek(offset)
	t.peeked = &lx
	return t.peeked
}

// scan lexes one token at the reader position and leaves the reader after it.
func (t *Tokenizer) scan(mode Mode) lexeme {
	start := t.reader.Offset()
	ch := t.reader.Peek()

	switch {
	case ch == source.EOF:
		return lexeme{mode: mode, token: syntax.Token{Kind: syntax.TokenUnknown, Start: start}}
	case source.IsNewline(ch):
		return t.emit(mode, syntax.TokenNewLine, start, t.scanNewline())
	case source.IsWhitespace(ch):
		for source.IsWhitespace(t.reader.Peek()) {
			t.reader.Read()
		}
		return t.emit(mode, syntax.TokenWhitespace, start, t.reader.Offset())
	case ch == '@':
		t.reader.Read()
		return t.emit(mode, syntax.TokenTransition, start, t.reader.Offset())
	}

	if mode == ModeCode {
		tok, diags := t.code.scan(start)
		t.reader.Seek(tok.End())
		return lexeme{mode: mode, token: tok, diags: diags}
	}

	if kind, ok := markupPunctuation(mode, ch); ok {
		t.reader.Read()
		return t.emit(mode, kind, start, t.reader.Offset())
	}

	if mode == ModeTag && t.reader.HasPrefix("--") {
		t.reader.Seek(start + 2)
		return t.emit(mode, syntax.TokenDoubleHyphen, start, start+2)
	}

	// Text runs until the next character with meaning in this mode.
	for {
		t.reader.Read()
		next := t.reader.Peek()
		if next == source.EOF || next == '@' || source.IsNewline(next) || source.IsWhitespace(next) {
			break
		}
		if _, ok := markupPunctuation(mode, next); ok {
			break
		}
		if mode == ModeTag && t.reader.HasPrefix("--") {
			break
		}
	}
	return t.emit(mode, syntax.TokenText, start, t.reader.Offset())
}

func (t *Tokenizer) scanNewline() int {
	if t.reader.Read() == '\r' && t.reader.Peek() == '\n' {
		t.reader.Read()
	}
	return t.reader.Offset()
}

func (t *Tokenizer) emit(mode Mode, kind syntax.TokenKind, start, end int) lexeme {
	return lexeme{
		mode: mode,
		token: syntax.Token{
			Kind:    kind,
			Start:   start,
			Content: t.reader.Document().Slice(start, end),
		},
	}
}

// markupPunctuation classifies single-character tokens of the markup and tag modes.
func markupPunctuation(mode Mode, ch rune) (syntax.TokenKind, bool) {
	switch ch {
	case '<':
		return syntax.TokenOpenAngle, true
	case '>':
		return syntax.TokenCloseAngle, true
	case '{':
		return syntax.TokenLeftBrace, mode == ModeMarkup
	case '}':
		return syntax.TokenRightBrace, mode == ModeMarkup
	}

	if mode != ModeTag {
		return syntax.TokenUnknown, false
	}

	switch ch {
	case '/':
		return syntax.TokenForwardSlash, true
	case '!':
		return syntax.TokenBang, true
	case '?':
		return syntax.TokenQuestionMark, true
	case '=':
		return syntax.TokenEquals, true
	case '"':
		return syntax.TokenDoubleQuote, true
	case '\'':
		return syntax.TokenSingleQuote, true
	default:
		return syntax.TokenUnknown, false
	}
}

// isIdentStart reports whether r can begin a Go identifier.
func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isIdentPart reports whether r can continue a Go identifier.
func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
