package parser

import (
	"strings"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// tokenLabels describes directive token kinds in diagnostics.
//
//nolint:gochecknoglobals // Read-only lookup table.
var tokenLabels = map[directive.TokenKind]string{
	directive.TokenType:      "type name",
	directive.TokenMember:    "member name",
	directive.TokenNamespace: "package path",
	directive.TokenString:    "string literal",
	directive.TokenBoolean:   "'true' or 'false'",
	directive.TokenAttribute: "attribute list",
}

// parseDirective parses '@name' for a registered directive, its tokens and, for block kinds,
// its body.
func (p *parser) parseDirective(s scope, desc *directive.Descriptor, leading []*syntax.Node, lineStart bool) *syntax.Node {
	start := p.offset()
	keywordSpan := source.NewSpan(start, start+len("@")+len(desc.Name))

	var diags []diag.Diagnostic
	if desc.FileScoped() && !s.topLevel {
		diags = append(diags, p.report(diag.CodeDirectiveNotTopLevel, keywordSpan,
			"the '%s' directive may only appear at the top level of a document", desc.Name))
	}
	if first := p.MarkDirectiveSeen(desc.Name); !first && desc.SingleUse() {
		diags = append(diags, p.report(diag.CodeDuplicateDirective, keywordSpan,
			"the '%s' directive may only appear once per document", desc.Name))
	}

	children := append(leading, p.transition(), p.metaCode(ModeCode))

	args, complete := p.parseDirectiveTokens(desc)
	children = append(children, args...)

	if complete {
		switch desc.Kind {
		case directive.KindSingleLine:
			tail, d := p.parseDirectiveLineEnd(desc)
			children = append(children, tail...)
			diags = append(diags, d...)
		case directive.KindRazorBlock, directive.KindCodeBlock:
			body, d := p.parseDirectiveBlock(s, desc, lineStart)
			children = append(children, body...)
			diags = append(diags, d...)
		}
	}

	return syntax.NewNode(syntax.NodeDirective, children,
		syntax.WithName(desc.Name),
		syntax.WithDescriptor(desc),
		syntax.WithDiagnostics(diags...),
	)
}

// parseDirectiveTokens parses the arguments a directive declares. At design time a missing
// token becomes a marker and parsing continues; at runtime parsing stops at the first missing
// token and complete is false.
func (p *parser) parseDirectiveTokens(desc *directive.Descriptor) ([]*syntax.Node, bool) {
	var nodes []*syntax.Node

	var progress loopGuard
	for _, expected := range desc.Tokens {
		p.guard(&progress)

		ws := p.acceptWhitespace(ModeCode, false)
		if tokens := p.matchDirectiveToken(expected.Kind); len(tokens) > 0 {
			arg := syntax.NewNode(syntax.NodeDirectiveArgument, append(ws, tokens...), syntax.WithName(argumentName(expected)))
			nodes = append(nodes, arg)
			continue
		}
		nodes = append(nodes, ws...)

		// Optional tokens are only ever trailing, so the rest are optional too.
		if expected.Optional {
			return nodes, true
		}

		found := p.peek(ModeCode)
		span := source.NewSpan(found.Start, found.End())
		d := p.report(diag.CodeDirectiveTokenExpected, span,
			"the '%s' directive expects a %s, found %s", desc.Name, tokenLabels[expected.Kind], describeToken(found))

		if !p.options.DesignTime {
			return nodes, false
		}
		marker := syntax.NewMarker(syntax.WithDiagnostics(d))
		nodes = append(nodes, syntax.NewNode(syntax.NodeDirectiveArgument, []*syntax.Node{marker}, syntax.WithName(argumentName(expected))))
	}
	return nodes, true
}

// matchDirectiveToken consumes a token sequence of kind. It consumes nothing and returns nil
// when the input does not start with one.
func (p *parser) matchDirectiveToken(kind directive.TokenKind) []*syntax.Node {
	tok := p.peek(ModeCode)

	switch kind {
	case directive.TokenType:
		return p.acceptType()

	case directive.TokenMember:
		if tok.Kind == syntax.TokenIdentifier {
			return []*syntax.Node{p.accept(ModeCode)}
		}

	case directive.TokenNamespace:
		if tok.Kind != syntax.TokenIdentifier {
			return nil
		}
		nodes := []*syntax.Node{p.accept(ModeCode)}
		var dots loopGuard
		for p.peek(ModeCode).Kind == syntax.TokenDot && isIdentStart(p.tokens.PeekRune(1)) {
			p.guard(&dots)
			nodes = append(nodes, p.accept(ModeCode), p.accept(ModeCode))
		}
		return nodes

	case directive.TokenString:
		if tok.Kind == syntax.TokenLiteral && (strings.HasPrefix(tok.Content, `"`) || strings.HasPrefix(tok.Content, "`")) {
			return []*syntax.Node{p.accept(ModeCode)}
		}

	case directive.TokenBoolean:
		if tok.Kind == syntax.TokenIdentifier && (tok.Content == "true" || tok.Content == "false") {
			return []*syntax.Node{p.accept(ModeCode)}
		}

	case directive.TokenAttribute:
		if tok.Kind == syntax.TokenLeftBracket {
			return p.acceptBalanced()
		}
	}
	return nil
}

// acceptType consumes a Go type expression such as '*pkg.Name', '[]T', 'map[K]V' or 'List[T]'.
func (p *parser) acceptType() []*syntax.Node {
	var nodes []*syntax.Node

	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeCode)
		switch {
		case tok.Kind == syntax.TokenOperator && (tok.Content == "*" || tok.Content == "<-"):
			nodes = append(nodes, p.accept(ModeCode))

		case tok.Kind == syntax.TokenLeftBracket:
			nodes = append(nodes, p.acceptBalanced()...)

		case tok.Kind == syntax.TokenKeyword && tok.Content == "map":
			nodes = append(nodes, p.accept(ModeCode))

		case tok.Kind == syntax.TokenKeyword && tok.Content == "chan":
			nodes = append(nodes, p.accept(ModeCode))
			nodes = append(nodes, p.acceptWhitespace(ModeCode, false)...)

		case tok.Kind == syntax.TokenKeyword && tok.Content == "func":
			nodes = append(nodes, p.accept(ModeCode))
			if p.peek(ModeCode).Kind == syntax.TokenLeftParen {
				nodes = append(nodes, p.acceptBalanced()...)
			}
			return nodes

		case tok.Kind == syntax.TokenKeyword && (tok.Content == "interface" || tok.Content == "struct"):
			nodes = append(nodes, p.accept(ModeCode))
			if p.peek(ModeCode).Kind == syntax.TokenLeftBrace {
				nodes = append(nodes, p.acceptBalanced()...)
			}
			return nodes

		case tok.Kind == syntax.TokenIdentifier:
			nodes = append(nodes, p.accept(ModeCode))
			var dots loopGuard
			for p.peek(ModeCode).Kind == syntax.TokenDot && isIdentStart(p.tokens.PeekRune(1)) {
				p.guard(&dots)
				nodes = append(nodes, p.accept(ModeCode), p.accept(ModeCode))
			}
			if p.peek(ModeCode).Kind == syntax.TokenLeftBracket {
				nodes = append(nodes, p.acceptBalanced()...)
			}
			return nodes

		default:
			return nodes
		}
	}
}

// acceptBalanced consumes an opening delimiter through its matching closer, stopping early at
// the end of the line.
func (p *parser) acceptBalanced() []*syntax.Node {
	opener := p.peek(ModeCode).Kind
	closer := closers[opener]

	nodes := []*syntax.Node{p.accept(ModeCode)}
	depth := 1
	var progress loopGuard
	for depth > 0 {
		p.guard(&progress)

		tok := p.peek(ModeCode)
		if tok.IsEOF() || tok.Kind == syntax.TokenNewLine || tok.Kind == syntax.TokenTransition {
			break
		}
		switch tok.Kind { //nolint:exhaustive // Only the delimiter pair changes depth.
		case opener:
			depth++
		case closer:
			depth--
		}
		nodes = append(nodes, p.accept(ModeCode))
	}
	return nodes
}

// parseDirectiveLineEnd consumes the end of a single-line directive: whitespace, an optional
// ';' and the newline. Anything else on the line is left for the markup parser and reported.
func (p *parser) parseDirectiveLineEnd(desc *directive.Descriptor) ([]*syntax.Node, []diag.Diagnostic) {
	nodes := p.acceptWhitespace(ModeCode, false)
	if p.peek(ModeCode).Kind == syntax.TokenSemicolon {
		nodes = append(nodes, p.accept(ModeCode))
		nodes = append(nodes, p.acceptWhitespace(ModeCode, false)...)
	}

	tok := p.peek(ModeMarkup)
	switch {
	case tok.IsEOF():
		return nodes, nil
	case tok.Kind == syntax.TokenNewLine:
		return append(nodes, p.accept(ModeMarkup)), nil
	}

	start := p.offset()
	line := p.doc.LineIndex(start)
	info, _ := p.doc.Line(line)
	d := p.report(diag.CodeDirectiveTrailingContent, source.NewSpan(start, info.NewlineStart),
		"unexpected %q after the '%s' directive", p.doc.Slice(start, info.NewlineStart), desc.Name)
	return nodes, []diag.Diagnostic{d}
}

// parseDirectiveBlock parses the '{ ... }' body of a block directive.
func (p *parser) parseDirectiveBlock(s scope, desc *directive.Descriptor, lineStart bool) ([]*syntax.Node, []diag.Diagnostic) {
	start := p.offset()
	brace := p.skipWhitespaceAt(start, true)
	if brace >= p.doc.Len() || p.doc.Text()[brace] != '{' {
		d := p.report(diag.CodeDirectiveMissingBlock, source.NewSpan(start, start),
			"the '%s' directive expects a '{' block", desc.Name)
		if p.options.DesignTime {
			return []*syntax.Node{syntax.NewMarker(syntax.WithDiagnostics(d))}, nil
		}
		return nil, []diag.Diagnostic{d}
	}

	nodes := p.acceptWhitespace(ModeCode, true)
	nodes = append(nodes, p.metaCode(ModeCode))

	if desc.Kind == directive.KindRazorBlock {
		p.parseMarkupContent(s.block(), endBrace, &nodes)
	} else {
		nodes = append(nodes, p.parseCodeBody(s.code(), syntax.TokenRightBrace, true)...)
	}

	closer, ok := p.expectCloser(source.NewSpan(brace, brace+1), syntax.TokenRightBrace, "'"+desc.Name+"' block")
	nodes = append(nodes, closer)
	if ok {
		nodes = append(nodes, p.trailingWhitespace(s, lineStart)...)
	}
	return nodes, nil
}

func argumentName(expected directive.TokenDescriptor) string {
	if expected.Name != "" {
		return expected.Name
	}
	return string(expected.Kind)
}

func describeToken(tok syntax.Token) string {
	switch {
	case tok.IsEOF():
		return "end of file"
	case tok.Kind == syntax.TokenNewLine:
		return "end of line"
	default:
		return "'" + tok.Content + "'"
	}
}
