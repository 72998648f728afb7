package parser

import (
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// statementKeywords are the Go keywords that start a statement after a transition.
//
//nolint:gochecknoglobals // Read-only lookup table.
var statementKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"switch": true,
	"select": true,
}

func isStatementKeyword(name string) bool {
	return statementKeywords[name]
}

// transition wraps the '@' at the reader in a Transition node.
func (p *parser) transition() *syntax.Node {
	return syntax.NewNode(syntax.NodeTransition, []*syntax.Node{p.take(syntax.TokenTransition, len("@"))})
}

// parseTransition parses the construct introduced by the '@' at the reader in markup.
// leading holds whitespace already consumed that belongs to the construct.
func (p *parser) parseTransition(s scope, leading []*syntax.Node) *syntax.Node {
	lineStart := p.StartOfLine()
	start := p.offset()
	next := p.tokens.PeekRune(1)

	switch {
	case next == '@':
		children := append(leading,
			p.take(syntax.TokenTransition, len("@")),
			p.take(syntax.TokenText, len("@")),
		)
		return syntax.NewNode(syntax.NodeEscapedTransition, children)

	case next == '*':
		return p.parseRazorComment(leading)

	case next == '{':
		return p.parseCodeBlock(s, leading, lineStart)

	case next == '(':
		return p.parseExplicitExpression(s, leading)

	case isIdentStart(next):
		name := p.identifierAt(start + 1)
		if desc, ok := p.directives.Lookup(name); ok {
			return p.parseDirective(s, desc, leading, lineStart)
		}
		if isStatementKeyword(name) {
			return p.parseStatement(s, leading, lineStart)
		}
		return p.parseImplicitExpression(s, leading)

	default:
		d := p.report(diag.CodeInvalidTransition, source.NewSpan(start, start+1),
			"%s is not valid after '@'; expected an identifier, '(' or '{'", describeRune(next))
		children := append(leading, p.transition(), syntax.NewMarker(syntax.WithDiagnostics(d)))
		return syntax.NewNode(syntax.NodeImplicitExpression, children)
	}
}

// parseCodeTransition parses the construct introduced by '@' inside code. It also reports
// whether a new Go statement may start after the construct.
func (p *parser) parseCodeTransition(s scope, stmtStart bool) (*syntax.Node, bool) {
	start := p.offset()
	next := p.tokens.PeekRune(1)
	markup := p.options.Features.AllowMarkupInCode

	switch {
	case next == '*':
		return p.parseRazorComment(nil), stmtStart
	case next == ':' && markup:
		return p.parseMarkupLine(s), true
	case next == '<' && markup:
		return p.parseTemplate(s), false
	}

	d := p.report(diag.CodeUnexpectedTransition, source.NewSpan(start, start+1),
		"'@' is not valid here; inside code only '@:', '@<tag>' and '@* *@' are recognised")
	node := syntax.NewNode(syntax.NodeTransition, []*syntax.Node{p.take(syntax.TokenTransition, len("@"))},
		syntax.WithDiagnostics(d))
	return node, stmtStart
}

// parseRazorComment parses '@* ... *@'.
func (p *parser) parseRazorComment(leading []*syntax.Node) *syntax.Node {
	start := p.offset()
	children := append(leading,
		p.take(syntax.TokenRazorCommentTransition, len("@")),
		p.take(syntax.TokenRazorCommentStar, len("*")),
	)

	body, found := p.tokens.ReadUntil(syntax.TokenRazorComment, "*@")
	if body.Width() > 0 {
		children = append(children, syntax.NewTokenFrom(body))
	}
	if !found {
		d := p.report(diag.CodeUnterminatedRazorComment, source.NewSpan(start, start+len("@*")),
			"razor comment is not terminated")
		return syntax.NewNode(syntax.NodeRazorComment, children, syntax.WithDiagnostics(d))
	}

	children = append(children,
		p.take(syntax.TokenRazorCommentStar, len("*")),
		p.take(syntax.TokenRazorCommentTransition, len("@")),
	)
	return syntax.NewNode(syntax.NodeRazorComment, children)
}

// parseMarkupLine parses '@:' and the markup up to and including the end of the line.
func (p *parser) parseMarkupLine(s scope) *syntax.Node {
	children := []*syntax.Node{
		p.transition(),
		syntax.NewNode(syntax.NodeMetaCode, []*syntax.Node{p.take(syntax.TokenColon, len(":"))}),
	}

	p.parseMarkupContent(s.markupLine(), endLine, &children)
	if p.peek(ModeMarkup).Kind == syntax.TokenNewLine {
		children = append(children, p.accept(ModeMarkup))
	}
	return syntax.NewNode(syntax.NodeMarkupBlock, children)
}

// parseTemplate parses '@<tag>...</tag>' inside code.
func (p *parser) parseTemplate(s scope) *syntax.Node {
	start := p.offset()

	var diags []diag.Diagnostic
	if s.inTemplate {
		diags = append(diags, p.report(diag.CodeNestedTemplate, source.NewSpan(start, start+len("@<")),
			"templates cannot be nested"))
	}

	children := []*syntax.Node{p.transition()}
	if isTagNameStart(p.tokens.PeekRune(1)) {
		children = append(children, p.parseElement(s.template(), endBrace))
	} else {
		d := p.report(diag.CodeInvalidTransition, source.NewSpan(start, start+len("@<")),
			"a template must start with an element")
		children = append(children, syntax.NewMarker(syntax.WithDiagnostics(d)))
	}
	return syntax.NewNode(syntax.NodeTemplate, children, syntax.WithDiagnostics(diags...))
}

// parseMarkupInCode parses an element that starts a statement inside code, together with
// the rest of its line when that is blank.
func (p *parser) parseMarkupInCode(s scope) *syntax.Node {
	children := []*syntax.Node{p.parseElement(s.nested(), endBrace)}
	if p.restOfLineIsBlank() {
		children = append(children, p.acceptWhitespace(ModeMarkup, false)...)
		if p.peek(ModeMarkup).Kind == syntax.TokenNewLine {
			children = append(children, p.accept(ModeMarkup))
		}
	}
	return syntax.NewNode(syntax.NodeMarkupBlock, children)
}

func describeRune(r rune) string {
	switch {
	case r == source.EOF:
		return "end of file"
	case source.IsNewline(r):
		return "a line break"
	case source.IsWhitespace(r):
		return "whitespace"
	default:
		return "'" + string(r) + "'"
	}
}
