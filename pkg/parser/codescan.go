package parser

import (
	"go/scanner"
	"go/token"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// codeScanner lexes embedded Go with go/scanner. The scanner is re-initialised whenever the
// requested offset is not where its previous token ended, so it can follow the parser across
// markup islands and whitespace the tokenizer handles itself.
type codeScanner struct {
	doc  *source.Document
	src  []byte
	fset *token.FileSet

	scanner scanner.Scanner
	file    *token.File
	base    int
	pos     int
	ready   bool
	errs    []diag.Diagnostic
}

func newCodeScanner(doc *source.Document) *codeScanner {
	return &codeScanner{
		doc:  doc,
		src:  []byte(doc.Text()),
		fset: token.NewFileSet(),
	}
}

func (c *codeScanner) reset(offset int) {
	c.base = offset
	c.file = c.fset.AddFile(c.doc.Path(), -1, len(c.src)-offset)
	c.scanner.Init(c.file, c.src[offset:], c.report, scanner.ScanComments)
	c.pos = offset
	c.ready = true
}

func (c *codeScanner) report(pos token.Position, msg string) {
	c.errs = append(c.errs, diag.New(diag.CodeEmbeddedCode, source.NewSpan(c.base+pos.Offset, c.base+pos.Offset), "%s", msg))
}

// scan returns the code token starting at offset along with any scanner errors.
// offset must not be at whitespace, a newline or a transition.
func (c *codeScanner) scan(offset int) (syntax.Token, []diag.Diagnostic) {
	if !c.ready || c.pos != offset {
		c.reset(offset)
	}
	c.errs = nil

	for {
		pos, tok, lit := c.scanner.Scan()
		start := c.base + c.file.Offset(pos)

		// Automatic semicolons have no source text.
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		if tok == token.EOF {
			c.pos = start
			return syntax.Token{Kind: syntax.TokenUnknown, Start: start}, c.takeErrors()
		}

		end := c.tokenEnd(start, tok, lit)
		c.pos = end

		return syntax.Token{
			Kind:    codeTokenKind(tok),
			Start:   start,
			Content: c.doc.Slice(start, end),
		}, c.takeErrors()
	}
}

func (c *codeScanner) takeErrors() []diag.Diagnostic {
	errs := c.errs
	c.errs = nil
	return errs
}

// tokenEnd finds the end offset of a token from the source itself. The scanner strips
// carriage returns from raw strings and comments, so their literals cannot be trusted for width.
func (c *codeScanner) tokenEnd(start int, tok token.Token, lit string) int {
	text := c.doc.Text()

	switch {
	case tok == token.COMMENT && strings.HasPrefix(text[start:], "/*"):
		if idx := strings.Index(text[start+2:], "*/"); idx >= 0 {
			return start + 2 + idx + 2
		}
		return len(text)
	case tok == token.COMMENT:
		if idx := strings.IndexAny(text[start:], "\r\n"); idx >= 0 {
			return start + idx
		}
		return len(text)
	case tok == token.STRING && strings.HasPrefix(text[start:], "`"):
		if idx := strings.IndexByte(text[start+1:], '`'); idx >= 0 {
			return start + 1 + idx + 1
		}
		return len(text)
	case tok == token.ILLEGAL:
		_, size := utf8.DecodeRuneInString(text[start:])
		return start + max(size, 1)
	case lit != "":
		return min(start+len(lit), len(text))
	default:
		return min(start+len(tok.String()), len(text))
	}
}

func codeTokenKind(tok token.Token) syntax.TokenKind {
	switch {
	case tok == token.IDENT:
		return syntax.TokenIdentifier
	case tok.IsKeyword():
		return syntax.TokenKeyword
	case tok.IsLiteral():
		return syntax.TokenLiteral
	case tok == token.COMMENT:
		return syntax.TokenComment
	}

	switch tok { //nolint:exhaustive // Remaining operators share one kind.
	case token.LPAREN:
		return syntax.TokenLeftParen
	case token.RPAREN:
		return syntax.TokenRightParen
	case token.LBRACK:
		return syntax.TokenLeftBracket
	case token.RBRACK:
		return syntax.TokenRightBracket
	case token.LBRACE:
		return syntax.TokenLeftBrace
	case token.RBRACE:
		return syntax.TokenRightBrace
	case token.PERIOD:
		return syntax.TokenDot
	case token.SEMICOLON:
		return syntax.TokenSemicolon
	case token.COMMA:
		return syntax.TokenComma
	case token.COLON:
		return syntax.TokenColon
	case token.ILLEGAL:
		return syntax.TokenUnknown
	default:
		return syntax.TokenOperator
	}
}
