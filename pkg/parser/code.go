package parser

import (
	"strings"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// closers maps an opening delimiter to its closing delimiter.
//
//nolint:gochecknoglobals // Read-only lookup table.
var closers = map[syntax.TokenKind]syntax.TokenKind{
	syntax.TokenLeftBrace:   syntax.TokenRightBrace,
	syntax.TokenLeftParen:   syntax.TokenRightParen,
	syntax.TokenLeftBracket: syntax.TokenRightBracket,
}

//nolint:gochecknoglobals // Read-only lookup table.
var missingCloserCodes = map[syntax.TokenKind]diag.Code{
	syntax.TokenRightBrace:   diag.CodeMissingCloseBrace,
	syntax.TokenRightParen:   diag.CodeMissingCloseParen,
	syntax.TokenRightBracket: diag.CodeMissingCloseBracket,
}

// parseCodeBlock parses '@{ ... }'.
func (p *parser) parseCodeBlock(s scope, leading []*syntax.Node, lineStart bool) *syntax.Node {
	start := p.offset()
	children := append(leading, p.transition(), p.metaCode(ModeCode))
	children = append(children, p.parseCodeBody(s.code(), syntax.TokenRightBrace, true)...)

	closer, ok := p.expectCloser(source.NewSpan(start, start+len("@{")), syntax.TokenRightBrace, "code block")
	children = append(children, closer)
	if ok {
		children = append(children, p.trailingWhitespace(s, lineStart)...)
	}
	return syntax.NewNode(syntax.NodeCodeBlock, children)
}

// parseExplicitExpression parses '@( ... )'.
func (p *parser) parseExplicitExpression(s scope, leading []*syntax.Node) *syntax.Node {
	start := p.offset()
	children := append(leading, p.transition(), p.metaCode(ModeCode))
	children = append(children, p.parseCodeBody(s.code(), syntax.TokenRightParen, false)...)

	closer, _ := p.expectCloser(source.NewSpan(start, start+len("@(")), syntax.TokenRightParen, "explicit expression")
	children = append(children, closer)
	return syntax.NewNode(syntax.NodeExplicitExpression, children)
}

// expectCloser consumes the closing delimiter as MetaCode, or reports it missing and returns
// a marker carrying the diagnostic.
func (p *parser) expectCloser(open source.Span, closer syntax.TokenKind, what string) (*syntax.Node, bool) {
	if p.peek(ModeCode).Kind == closer {
		return p.metaCode(ModeCode), true
	}

	d := p.report(missingCloserCodes[closer], open,
		"%s is missing its closing %s", what, closerText(closer))
	return syntax.NewMarker(syntax.WithDiagnostics(d)), false
}

// parseImplicitExpression parses '@name', extended by member access, calls and indexing.
func (p *parser) parseImplicitExpression(s scope, leading []*syntax.Node) *syntax.Node {
	start := p.offset()
	children := append(leading, p.transition())

	var diags []diag.Diagnostic
	head := p.peek(ModeCode)
	if head.Kind == syntax.TokenKeyword {
		diags = append(diags, p.report(diag.CodeInvalidTransition, source.NewSpan(start, head.End()),
			"keyword %q cannot start an expression", head.Content))
	}

	code := []*syntax.Node{p.accept(ModeCode)}
	flush := func() {
		if len(code) > 0 {
			children = append(children, syntax.NewNode(syntax.NodeCodeLiteral, code))
			code = nil
		}
	}

	var progress loopGuard
loop:
	for {
		p.guard(&progress)

		tok := p.peek(ModeCode)
		switch {
		case tok.Kind == syntax.TokenDot && isIdentStart(p.tokens.PeekRune(1)):
			code = append(code, p.accept(ModeCode), p.accept(ModeCode))

		case tok.Kind == syntax.TokenLeftParen, tok.Kind == syntax.TokenLeftBracket:
			closer := closers[tok.Kind]
			openAt := tok.Start
			code = append(code, p.accept(ModeCode))
			flush()
			children = append(children, p.parseCodeBody(s.code(), closer, false)...)

			if p.peek(ModeCode).Kind != closer {
				d := p.report(missingCloserCodes[closer], source.NewSpan(openAt, openAt+1),
					"expression is missing its closing %s", closerText(closer))
				children = append(children, syntax.NewMarker(syntax.WithDiagnostics(d)))
				break loop
			}
			code = append(code, p.accept(ModeCode))

		default:
			break loop
		}
	}
	flush()

	return syntax.NewNode(syntax.NodeImplicitExpression, children, syntax.WithDiagnostics(diags...))
}

// parseStatement parses '@if', '@for', '@switch' and '@select' with their bodies. An 'if'
// continues through any 'else' and 'else if' clauses on the closing line.
func (p *parser) parseStatement(s scope, leading []*syntax.Node, lineStart bool) *syntax.Node {
	start := p.offset()
	keyword := p.identifierAt(start + 1)
	keywordSpan := source.NewSpan(start, start+len("@")+len(keyword))
	children := append(leading, p.transition())

	complete := false
	var progress loopGuard
	for {
		p.guard(&progress)

		header, ok := p.parseStatementHeader()
		children = append(children, header)
		if !ok {
			d := p.report(diag.CodeMissingStatementBody, keywordSpan,
				"%q statement is missing its '{' body", keyword)
			children = append(children, syntax.NewMarker(syntax.WithDiagnostics(d)))
			break
		}

		children = append(children, p.metaCode(ModeCode))
		children = append(children, p.parseCodeBody(s.code(), syntax.TokenRightBrace, true)...)

		closer, ok := p.expectCloser(keywordSpan, syntax.TokenRightBrace, keyword+" statement")
		children = append(children, closer)
		if !ok {
			break
		}
		if keyword != "if" || !p.elseFollows() {
			complete = true
			break
		}
	}

	if complete {
		children = append(children, p.trailingWhitespace(s, lineStart)...)
	}
	return syntax.NewNode(syntax.NodeStatement, children, syntax.WithName(keyword))
}

// parseStatementHeader consumes code up to the '{' that opens a statement body. It reports
// false when the line or the input ends first.
func (p *parser) parseStatementHeader() (*syntax.Node, bool) {
	var code []*syntax.Node
	depth := 0

	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeCode)
		switch {
		case tok.IsEOF(), tok.Kind == syntax.TokenNewLine, tok.Kind == syntax.TokenTransition:
			return syntax.NewNode(syntax.NodeCodeLiteral, code), false
		case tok.Kind == syntax.TokenLeftBrace && depth == 0:
			return syntax.NewNode(syntax.NodeCodeLiteral, code), true
		case tok.Kind == syntax.TokenLeftParen, tok.Kind == syntax.TokenLeftBracket:
			depth++
		case tok.Kind == syntax.TokenRightParen, tok.Kind == syntax.TokenRightBracket:
			depth = max(depth-1, 0)
		}
		code = append(code, p.accept(ModeCode))
	}
}

// elseFollows reports whether an 'else' keyword follows on the current line.
func (p *parser) elseFollows() bool {
	text := p.doc.Text()
	idx := p.skipWhitespaceAt(p.offset(), false)
	if !strings.HasPrefix(text[idx:], "else") {
		return false
	}
	return p.identifierAt(idx) == "else"
}

// parseCodeBody parses code up to, but not including, closer at nesting depth zero or the end
// of input. Markup islands and transitions inside the code become their own nodes.
// stmtStart says whether a Go statement may begin at the first token.
func (p *parser) parseCodeBody(s scope, closer syntax.TokenKind, stmtStart bool) []*syntax.Node {
	var nodes []*syntax.Node
	var code []*syntax.Node
	flush := func() {
		if len(code) > 0 {
			nodes = append(nodes, syntax.NewNode(syntax.NodeCodeLiteral, code))
			code = nil
		}
	}

	var opener syntax.TokenKind
	for open, closeKind := range closers {
		if closeKind == closer {
			opener = open
		}
	}

	depth := 0
	var last syntax.Token
	var progress loopGuard
	for {
		p.guard(&progress)

		tok := p.peek(ModeCode)
		switch {
		case tok.IsEOF(), tok.Kind == closer && depth == 0:
			flush()
			return nodes

		case tok.Kind == syntax.TokenTransition:
			flush()
			var node *syntax.Node
			node, stmtStart = p.parseCodeTransition(s, stmtStart)
			nodes = append(nodes, node)
			continue

		case stmtStart && p.startsMarkup(tok):
			flush()
			nodes = append(nodes, p.parseMarkupInCode(s))
			stmtStart = true
			continue
		}

		code = append(code, p.accept(ModeCode))
		switch tok.Kind { //nolint:exhaustive // Only delimiters change depth.
		case opener:
			depth++
		case closer:
			depth--
		}
		stmtStart = statementStartAfter(stmtStart, &last, tok)
	}
}

// startsMarkup reports whether the code token tok opens an element.
func (p *parser) startsMarkup(tok syntax.Token) bool {
	return p.options.Features.AllowMarkupInCode &&
		tok.Kind == syntax.TokenOperator && tok.Content == "<" &&
		isTagNameStart(p.tokens.PeekRune(1))
}

// statementStartAfter reports whether a Go statement may begin after tok. last tracks the
// previous significant token so that a newline can apply Go's semicolon insertion rule.
func statementStartAfter(prev bool, last *syntax.Token, tok syntax.Token) bool {
	switch tok.Kind { //nolint:exhaustive // Remaining kinds are ordinary expression tokens.
	case syntax.TokenWhitespace, syntax.TokenComment:
		return prev
	case syntax.TokenNewLine:
		return prev || insertsSemicolon(*last)
	case syntax.TokenLeftBrace, syntax.TokenRightBrace, syntax.TokenSemicolon, syntax.TokenColon:
		*last = tok
		return true
	default:
		*last = tok
		return false
	}
}

// insertsSemicolon reports whether a newline after tok ends a Go statement.
func insertsSemicolon(tok syntax.Token) bool {
	switch tok.Kind { //nolint:exhaustive // Remaining kinds never end a statement.
	case syntax.TokenIdentifier, syntax.TokenLiteral, syntax.TokenRightParen,
		syntax.TokenRightBracket, syntax.TokenRightBrace:
		return true
	case syntax.TokenKeyword:
		switch tok.Content {
		case "break", "continue", "fallthrough", "return":
			return true
		}
	case syntax.TokenOperator:
		return tok.Content == "++" || tok.Content == "--"
	}
	return false
}

func closerText(kind syntax.TokenKind) string {
	switch kind { //nolint:exhaustive // Only closing delimiters are described.
	case syntax.TokenRightBrace:
		return "'}'"
	case syntax.TokenRightParen:
		return "')'"
	case syntax.TokenRightBracket:
		return "']'"
	default:
		return kind.String()
	}
}
