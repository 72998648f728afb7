package parser

import (
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// tagState is how a start tag ended.
type tagState uint8

const (
	tagOpen tagState = iota
	tagSelfClosing
	tagUnterminated
)

// parseElement parses an element starting at '<' followed by a tag name.
func (p *parser) parseElement(s scope, end contentEnd) *syntax.Node {
	startTag, name, state := p.parseStartTag(s)
	if state != tagOpen || isVoidElement(name) {
		return syntax.NewNode(syntax.NodeMarkupElement, []*syntax.Node{startTag}, syntax.WithName(name))
	}

	children := []*syntax.Node{startTag}
	p.parseMarkupContent(s.withElement(name), end, &children)

	if strings.EqualFold(p.endTagNameAt(p.offset()), name) {
		children = append(children, p.parseEndTag())
		return syntax.NewNode(syntax.NodeMarkupElement, children, syntax.WithName(name))
	}

	start := p.offset() - sumWidths(children)
	d := p.report(diag.CodeUnclosedElement, source.NewSpan(start, start+startTag.Width()),
		"element <%s> is not closed", name)
	return syntax.NewNode(syntax.NodeMarkupElement, children, syntax.WithName(name), syntax.WithDiagnostics(d))
}

// parseStartTag parses '<name attributes... >' and reports how the tag ended.
func (p *parser) parseStartTag(s scope) (*syntax.Node, string, tagState) {
	start := p.offset()
	children := []*syntax.Node{p.accept(ModeTag)}

	nameTok := p.accept(ModeTag)
	name := nameTok.Text()
	children = append(children, nameTok)

	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeTag)
		switch {
		case tok.IsEOF(), tok.Kind == syntax.TokenOpenAngle:
			d := p.report(diag.CodeUnterminatedTag, source.NewSpan(start, start+len("<")+len(name)),
				"start tag <%s> is missing '>'", name)
			node := syntax.NewNode(syntax.NodeMarkupStartTag, children, syntax.WithName(name), syntax.WithDiagnostics(d))
			return node, name, tagUnterminated

		case tok.Kind == syntax.TokenCloseAngle:
			children = append(children, p.accept(ModeTag))
			return syntax.NewNode(syntax.NodeMarkupStartTag, children, syntax.WithName(name)), name, tagOpen

		case tok.Kind == syntax.TokenForwardSlash && p.tokens.PeekRune(1) == '>':
			children = append(children, p.accept(ModeTag), p.accept(ModeTag))
			return syntax.NewNode(syntax.NodeMarkupStartTag, children, syntax.WithName(name)), name, tagSelfClosing

		case tok.Kind == syntax.TokenWhitespace, tok.Kind == syntax.TokenNewLine:
			children = append(children, p.accept(ModeTag))

		case tok.Kind == syntax.TokenTransition:
			children = append(children, p.parseTagTransition(s))

		case tok.Kind == syntax.TokenText:
			children = append(children, p.parseAttribute(s, nil))

		default:
			children = append(children, p.accept(ModeTag))
		}
	}
}

// parseTagTransition handles '@' between attributes.
func (p *parser) parseTagTransition(s scope) *syntax.Node {
	start := p.offset()
	next := p.tokens.PeekRune(1)

	if !p.options.Features.AllowCodeInAttributeNames {
		d := p.report(diag.CodeTransitionInTag, source.NewSpan(start, start+1),
			"code is not allowed inside a tag outside attribute values")
		return syntax.NewNode(syntax.NodeMarkupTextLiteral,
			[]*syntax.Node{p.take(syntax.TokenText, len("@"))}, syntax.WithDiagnostics(d))
	}

	if isIdentStart(next) {
		transition := p.take(syntax.TokenTransition, len("@"))
		return p.parseAttribute(s, transition)
	}
	return p.parseTransition(s.nested(), nil)
}

// parseAttribute parses 'name', 'name=value' or, with a transition, '@name=value'.
func (p *parser) parseAttribute(s scope, transition *syntax.Node) *syntax.Node {
	var children []*syntax.Node
	name := ""
	if transition != nil {
		children = append(children, transition)
		name = "@"
	}

	nameTok := p.accept(ModeTag)
	name += nameTok.Text()
	children = append(children, nameTok)

	eq := p.skipWhitespaceAt(p.offset(), true)
	if eq >= p.doc.Len() || p.doc.Text()[eq] != '=' {
		return syntax.NewNode(syntax.NodeMarkupAttribute, children, syntax.WithName(name))
	}

	children = append(children, p.acceptWhitespace(ModeTag, true)...)
	children = append(children, p.accept(ModeTag))
	children = append(children, p.acceptWhitespace(ModeTag, true)...)
	children = append(children, p.parseAttributeValue(s))

	return syntax.NewNode(syntax.NodeMarkupAttribute, children, syntax.WithName(name))
}

// parseAttributeValue parses a quoted or unquoted value. Transitions inside it become code.
func (p *parser) parseAttributeValue(s scope) *syntax.Node {
	start := p.offset()
	inner := s.nested()

	var children []*syntax.Node
	var text []*syntax.Node
	flush := func() {
		if len(text) > 0 {
			children = append(children, syntax.NewNode(syntax.NodeMarkupTextLiteral, text))
			text = nil
		}
	}

	quote := p.peek(ModeTag).Kind
	quoted := quote == syntax.TokenDoubleQuote || quote == syntax.TokenSingleQuote
	if quoted {
		children = append(children, p.accept(ModeTag))
	}

	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeTag)
		switch {
		case tok.IsEOF():
			flush()
			if !quoted {
				return syntax.NewNode(syntax.NodeMarkupAttributeValue, children)
			}
			d := p.report(diag.CodeUnterminatedTag, source.NewSpan(start, start+1), "attribute value is not terminated")
			return syntax.NewNode(syntax.NodeMarkupAttributeValue, children, syntax.WithDiagnostics(d))

		case quoted && tok.Kind == quote:
			flush()
			children = append(children, p.accept(ModeTag))
			return syntax.NewNode(syntax.NodeMarkupAttributeValue, children)

		case !quoted && endsUnquotedValue(tok, p.tokens.PeekRune(1)):
			flush()
			return syntax.NewNode(syntax.NodeMarkupAttributeValue, children)

		case tok.Kind == syntax.TokenTransition && !p.isEmailTransition():
			flush()
			children = append(children, p.parseTransition(inner, nil))

		default:
			text = append(text, p.accept(ModeTag))
		}
	}
}

func endsUnquotedValue(tok syntax.Token, next rune) bool {
	switch tok.Kind { //nolint:exhaustive // Everything else continues the value.
	case syntax.TokenWhitespace, syntax.TokenNewLine, syntax.TokenCloseAngle, syntax.TokenOpenAngle:
		return true
	case syntax.TokenForwardSlash:
		return next == '>'
	default:
		return false
	}
}

// parseEndTag parses '</name>'. Diagnostics are attached to the node.
func (p *parser) parseEndTag(diags ...diag.Diagnostic) *syntax.Node {
	start := p.offset()
	children := []*syntax.Node{p.accept(ModeTag), p.accept(ModeTag)}

	name := ""
	if p.peek(ModeTag).Kind == syntax.TokenText {
		nameTok := p.accept(ModeTag)
		name = nameTok.Text()
		children = append(children, nameTok)
	}
	children = append(children, p.acceptWhitespace(ModeTag, true)...)

	if p.peek(ModeTag).Kind == syntax.TokenCloseAngle {
		children = append(children, p.accept(ModeTag))
	} else {
		diags = append(diags, p.report(diag.CodeUnterminatedTag, source.NewSpan(start, p.offset()),
			"end tag </%s> is missing '>'", name))
	}
	return syntax.NewNode(syntax.NodeMarkupEndTag, children, syntax.WithName(name), syntax.WithDiagnostics(diags...))
}

// endTagNameAt returns the tag name of an end tag starting at offset, or "".
func (p *parser) endTagNameAt(offset int) string {
	text := p.doc.Text()
	if !strings.HasPrefix(text[offset:], "</") {
		return ""
	}

	start := offset + len("</")
	end := start
	for end < len(text) && isTagNameByte(text[end]) {
		end++
	}
	if end == start || !isTagNameStart(rune(text[start])) {
		return ""
	}
	return text[start:end]
}

func isTagNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isTagNameByte(b byte) bool {
	return isTagNameStart(rune(b)) || (b >= '0' && b <= '9') || b == '-' || b == ':' || b == '.' || b == '_'
}

// isVoidElement reports whether name never has content or an end tag.
func isVoidElement(name string) bool {
	switch atom.Lookup([]byte(strings.ToLower(name))) { //nolint:exhaustive // Only void elements matter.
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img, atom.Input,
		atom.Keygen, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track, atom.Wbr:
		return true
	default:
		return false
	}
}

// isRawTextElement reports whether the content of name is text until its end tag.
func isRawTextElement(name string) bool {
	switch atom.Lookup([]byte(strings.ToLower(name))) { //nolint:exhaustive // Only raw text elements matter.
	case atom.Script, atom.Style, atom.Textarea, atom.Title:
		return true
	default:
		return false
	}
}

// preservesWhitespace reports whether whitespace inside name is part of its content.
func preservesWhitespace(name string) bool {
	switch atom.Lookup([]byte(strings.ToLower(name))) { //nolint:exhaustive // Only preformatted elements matter.
	case atom.Pre, atom.Textarea, atom.Listing:
		return true
	default:
		return false
	}
}

func sumWidths(nodes []*syntax.Node) int {
	total := 0
	for _, n := range nodes {
		total += n.Width()
	}
	return total
}
