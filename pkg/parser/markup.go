package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// contentEnd says what terminates a run of markup content.
type contentEnd uint8

const (
	// endOfInput runs to the end of the document or an enclosing end tag.
	endOfInput contentEnd = iota

	// endBrace also stops before an unbalanced '}'.
	endBrace

	// endLine also stops before the next newline.
	endLine
)

func (p *parser) parseDocument() *syntax.Node {
	p.parseMarkupContent(documentScope(), endOfInput, &p.completed)

	children := p.completed
	if len(children) == 0 {
		children = []*syntax.Node{syntax.NewMarker()}
	}
	return syntax.NewNode(syntax.NodeDocument, children)
}

// parseMarkupContent parses markup items and appends them to out. It returns without
// consuming the terminator: end of input, the end tag of an open element, or what end names.
func (p *parser) parseMarkupContent(s scope, end contentEnd, out *[]*syntax.Node) {
	var text []*syntax.Node
	flush := func() {
		if len(text) > 0 {
			*out = append(*out, syntax.NewNode(syntax.NodeMarkupTextLiteral, text))
			text = nil
		}
	}
	defer flush()

	depth := 0
	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeMarkup)
		if s.topLevel && p.options.ParseLeadingDirectives && !p.continuesLeading(tok) {
			flush()
			p.emitRest(out)
			return
		}

		switch {
		case tok.IsEOF():
			return

		case tok.Kind == syntax.TokenNewLine:
			if end == endLine {
				return
			}
			text = append(text, p.accept(ModeMarkup))

		case tok.Kind == syntax.TokenLeftBrace:
			depth++
			text = append(text, p.accept(ModeMarkup))

		case tok.Kind == syntax.TokenRightBrace:
			if end == endBrace && depth == 0 {
				return
			}
			depth = max(depth-1, 0)
			text = append(text, p.accept(ModeMarkup))

		case tok.Kind == syntax.TokenWhitespace && p.codeOwnsWhitespace(s, tok):
			flush()
			leading := []*syntax.Node{p.accept(ModeMarkup)}
			*out = append(*out, p.parseTransition(s, leading))

		case tok.Kind == syntax.TokenTransition && !p.isEmailTransition():
			flush()
			*out = append(*out, p.parseTransition(s, nil))

		case tok.Kind == syntax.TokenOpenAngle:
			node, stop := p.parseAngle(s, end)
			if stop {
				return
			}
			if node == nil {
				text = append(text, p.accept(ModeMarkup))
				continue
			}
			flush()
			*out = append(*out, node)

		default:
			text = append(text, p.accept(ModeMarkup))
		}
	}
}

// continuesLeading reports whether tok may still belong to the leading directive section:
// whitespace, a razor comment or a registered directive.
func (p *parser) continuesLeading(tok syntax.Token) bool {
	switch tok.Kind { //nolint:exhaustive // Everything else ends the section.
	case syntax.TokenUnknown, syntax.TokenWhitespace, syntax.TokenNewLine:
		return true
	case syntax.TokenTransition:
		if p.tokens.PeekRune(1) == '*' {
			return true
		}
		_, ok := p.directives.Lookup(p.identifierAt(tok.Start + 1))
		return ok
	default:
		return false
	}
}

// emitRest appends the unparsed remainder of the document as a single literal.
func (p *parser) emitRest(out *[]*syntax.Node) {
	rest := p.doc.Len() - p.offset()
	if rest <= 0 {
		return
	}
	*out = append(*out, syntax.NewNode(syntax.NodeMarkupTextLiteral, []*syntax.Node{
		p.take(syntax.TokenText, rest),
	}))
}

// parseAngle handles '<' in markup content. It returns stop when the '<' starts the end tag of
// an enclosing element, and a nil node when the '<' is plain text.
func (p *parser) parseAngle(s scope, end contentEnd) (*syntax.Node, bool) {
	endName := p.endTagNameAt(p.offset())

	if s.rawText != "" {
		return nil, strings.EqualFold(endName, s.rawText)
	}

	switch {
	case endName != "" && s.isOpen(endName):
		return nil, true
	case endName != "":
		start := p.offset()
		d := p.report(diag.CodeUnexpectedEndTag, source.NewSpan(start, start+len("</")+len(endName)),
			"end tag </%s> has no matching start tag", endName)
		return p.parseEndTag(d), false
	case p.options.Features.AllowHTMLComments && p.tokens.HasPrefix("<!--"):
		return p.parseMarkupComment(), false
	case isTagNameStart(p.tokens.PeekRune(1)):
		return p.parseElement(s, end), false
	default:
		return nil, false
	}
}

// parseMarkupComment parses '<!-- ... -->'.
func (p *parser) parseMarkupComment() *syntax.Node {
	start := p.offset()
	children := []*syntax.Node{
		p.take(syntax.TokenOpenAngle, len("<")),
		p.take(syntax.TokenBang, len("!")),
		p.take(syntax.TokenDoubleHyphen, len("--")),
	}

	body, found := p.tokens.ReadUntil(syntax.TokenText, "-->")
	if body.Width() > 0 {
		children = append(children, syntax.NewTokenFrom(body))
	}
	if !found {
		d := p.report(diag.CodeUnterminatedMarkupComment, source.NewSpan(start, start+len("<!--")),
			"markup comment is not terminated")
		return syntax.NewNode(syntax.NodeMarkupComment, children, syntax.WithDiagnostics(d))
	}

	children = append(children,
		p.take(syntax.TokenDoubleHyphen, len("--")),
		p.take(syntax.TokenCloseAngle, len(">")),
	)
	return syntax.NewNode(syntax.NodeMarkupComment, children)
}

// codeOwnsWhitespace reports whether the whitespace token tok, which opens a line, belongs to
// the block construct right after it rather than to the surrounding markup.
func (p *parser) codeOwnsWhitespace(s scope, tok syntax.Token) bool {
	if s.whitespaceSignificant || s.rawText != "" {
		return false
	}
	if p.doc.Location(tok.Start).Column != 0 {
		return false
	}
	return p.blockTransitionAt(tok.End())
}

// blockTransitionAt reports whether a code block, a statement or a directive starts at offset.
func (p *parser) blockTransitionAt(offset int) bool {
	text := p.doc.Text()
	if offset+1 >= len(text) || text[offset] != '@' {
		return false
	}
	if text[offset+1] == '{' {
		return true
	}

	name := p.identifierAt(offset + 1)
	if _, ok := p.directives.Lookup(name); ok {
		return true
	}
	return isStatementKeyword(name)
}

// isEmailTransition reports whether the '@' at the reader sits inside a word, as in an
// e-mail address, and is therefore text.
func (p *parser) isEmailTransition() bool {
	if p.LastAccepted() != DispositionAny {
		return false
	}

	last, _ := utf8.DecodeLastRuneInString(p.doc.Slice(0, p.offset()))
	next := p.tokens.PeekRune(1)
	return isWordRune(last) && isWordRune(next)
}

// trailingWhitespace consumes the rest of a blank line after a block construct that started
// a line, when the scope gives that whitespace to the construct.
func (p *parser) trailingWhitespace(s scope, lineStart bool) []*syntax.Node {
	if !lineStart || s.whitespaceSignificant || !s.nullGeneratesWhitespaceAndNewLine || !p.restOfLineIsBlank() {
		return nil
	}

	nodes := p.acceptWhitespace(ModeMarkup, false)
	if p.peek(ModeMarkup).Kind == syntax.TokenNewLine {
		nodes = append(nodes, p.accept(ModeMarkup))
	}
	return nodes
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
