// Package parser builds a syntax tree from a document mixing markup and embedded Go code.
//
// The parser is a recursive-descent tree builder. It never fails on malformed input: problems
// become diagnostics and, where something expected is absent, zero-width markers. The only
// abort is the loop guard, which stops a parse that no longer makes progress.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// Result is the outcome of parsing one document.
type Result struct {
	// Document is the parsed document.
	Document *source.Document

	// Root is the Document node. Its content equals the document text.
	Root *syntax.Node

	// Diagnostics are all diagnostics reported during the parse, in report order.
	Diagnostics []diag.Diagnostic

	// SeenDirectives lists directive names in order of first occurrence.
	SeenDirectives []string

	// Options is the snapshot the parse ran with.
	Options Options
}

// Fatal reports whether the parse was aborted.
func (r *Result) Fatal() bool {
	for _, d := range r.Diagnostics {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// HasErrors reports whether any diagnostic is an error or worse.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity.Rank() >= diag.SeverityError.Rank() {
			return true
		}
	}
	return false
}

// Directives returns the paths of every directive node in document order.
func (r *Result) Directives() []syntax.Path {
	return syntax.FindByKind(r.Root, syntax.NodeDirective)
}

// Parse parses doc with a snapshot of opts.
//
// Parse returns an error only for invalid arguments or a cancelled context. Syntax problems,
// including a stalled parse, are reported through Result.Diagnostics.
func Parse(ctx context.Context, doc *source.Document, opts *Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	session, err := NewSession(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	p := &parser{Session: session}
	root := p.run(p.parseDocument)

	return &Result{
		Document:       doc,
		Root:           root,
		Diagnostics:    session.sink.Diagnostics(),
		SeenDirectives: session.SeenDirectives(),
		Options:        session.options,
	}, nil
}

// ParseString is a convenience wrapper parsing text with the default options.
func ParseString(ctx context.Context, path, text string) (*Result, error) {
	return Parse(ctx, source.NewDocumentFromString(path, text), DefaultOptions())
}

// bailout unwinds the parser after a fatal diagnostic.
type bailout struct{}

type parser struct {
	*Session

	// completed holds finished top-level nodes so an aborted parse can still return them.
	completed []*syntax.Node
}

// run invokes parse and converts a bailout into a partial document.
func (p *parser) run(parse func() *syntax.Node) (root *syntax.Node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			root = p.abandon()
		}
	}()

	return parse()
}

// abandon assembles the document from the completed top-level nodes plus one literal holding
// everything not yet accepted.
func (p *parser) abandon() *syntax.Node {
	children := p.completed

	consumed := 0
	for _, child := range children {
		consumed += child.Width()
	}

	if rest := p.doc.Slice(consumed, p.doc.Len()); rest != "" {
		children = append(children, syntax.NewNode(syntax.NodeMarkupTextLiteral, []*syntax.Node{
			syntax.NewToken(syntax.TokenText, rest),
		}))
	}
	if len(children) == 0 {
		children = append(children, syntax.NewMarker())
	}
	return syntax.NewNode(syntax.NodeDocument, children)
}

// guard checks the guard of the calling loop and aborts the parse when it trips.
func (p *parser) guard(progress *loopGuard) {
	err := progress.check(p.reader.Location())
	if err == nil {
		return
	}

	offset := p.reader.Offset()
	p.sink.Addf(diag.CodeParserStalled, source.NewSpan(offset, offset), "%v", err)
	panic(bailout{})
}

// report adds a diagnostic to the sink and returns it for attaching to a node.
func (p *parser) report(code diag.Code, span source.Span, format string, args ...any) diag.Diagnostic {
	return p.sink.Addf(code, span, format, args...)
}

func (p *parser) offset() int {
	return p.reader.Offset()
}

func (p *parser) peek(mode Mode) syntax.Token {
	return p.tokens.Peek(mode)
}

// accept consumes the next token in mode as a leaf node.
func (p *parser) accept(mode Mode) *syntax.Node {
	return syntax.NewTokenFrom(p.tokens.Next(mode))
}

// take consumes length bytes as a single leaf of kind.
func (p *parser) take(kind syntax.TokenKind, length int) *syntax.Node {
	return syntax.NewTokenFrom(p.tokens.Take(kind, length))
}

// metaCode wraps a single consumed token as a MetaCode node.
func (p *parser) metaCode(mode Mode) *syntax.Node {
	return syntax.NewNode(syntax.NodeMetaCode, []*syntax.Node{p.accept(mode)})
}

// acceptWhitespace consumes whitespace and, when newlines is set, newline tokens.
func (p *parser) acceptWhitespace(mode Mode, newlines bool) []*syntax.Node {
	var nodes []*syntax.Node
	for {
		tok := p.peek(mode)
		if tok.Kind != syntax.TokenWhitespace && (!newlines || tok.Kind != syntax.TokenNewLine) {
			return nodes
		}
		nodes = append(nodes, p.accept(mode))
	}
}

// skipWhitespaceAt returns the offset of the first character at or after offset that is not
// whitespace (and not a newline when newlines is set).
func (p *parser) skipWhitespaceAt(offset int, newlines bool) int {
	text := p.doc.Text()
	for idx, ch := range text[offset:] {
		if source.IsWhitespace(ch) || (newlines && source.IsNewline(ch)) {
			continue
		}
		return offset + idx
	}
	return len(text)
}

// identifierAt returns the Go identifier starting at offset, or "".
func (p *parser) identifierAt(offset int) string {
	text := p.doc.Text()
	end := offset
	for idx, ch := range text[offset:] {
		if idx == 0 && !isIdentStart(ch) {
			return ""
		}
		if !isIdentPart(ch) {
			break
		}
		end = offset + idx + len(string(ch))
	}
	return text[offset:end]
}

// restOfLineIsBlank reports whether only whitespace follows the reader up to the next newline
// or the end of input.
func (p *parser) restOfLineIsBlank() bool {
	text := p.doc.Text()
	idx := p.skipWhitespaceAt(p.offset(), false)
	if idx >= len(text) {
		return true
	}
	return strings.ContainsRune("\r\n", rune(text[idx]))
}
