package syntax

import (
	"fmt"

	"github.com/yaklabco/gorazor/pkg/source"
)

// TokenKind classifies a token produced by the tokenizer.
type TokenKind uint16

// Token kinds shared by every tokenizer mode.
const (
	TokenUnknown TokenKind = iota
	TokenWhitespace
	TokenNewLine
	TokenTransition             // '@'
	TokenRazorCommentTransition // '@' opening or closing a razor comment
	TokenRazorCommentStar       // '*' next to a razor comment transition
	TokenRazorComment           // razor comment body
	TokenLeftBrace
	TokenRightBrace
	TokenColon
)

// Markup token kinds.
const (
	TokenText TokenKind = iota + 32
	TokenOpenAngle
	TokenCloseAngle
	TokenForwardSlash
	TokenBang
	TokenQuestionMark
	TokenEquals
	TokenDoubleQuote
	TokenSingleQuote
	TokenDoubleHyphen
)

// Code token kinds. Code tokens come from the embedded-language scanner.
const (
	TokenIdentifier TokenKind = iota + 64
	TokenKeyword
	TokenLiteral
	TokenOperator
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenDot
	TokenSemicolon
	TokenComma
	TokenComment
)

//nolint:gochecknoglobals // Read-only lookup table.
var tokenKindNames = map[TokenKind]string{
	TokenUnknown:                "Unknown",
	TokenWhitespace:             "Whitespace",
	TokenNewLine:                "NewLine",
	TokenTransition:             "Transition",
	TokenRazorCommentTransition: "RazorCommentTransition",
	TokenRazorCommentStar:       "RazorCommentStar",
	TokenRazorComment:           "RazorComment",
	TokenLeftBrace:              "LeftBrace",
	TokenRightBrace:             "RightBrace",
	TokenColon:                  "Colon",
	TokenText:                   "Text",
	TokenOpenAngle:              "OpenAngle",
	TokenCloseAngle:             "CloseAngle",
	TokenForwardSlash:           "ForwardSlash",
	TokenBang:                   "Bang",
	TokenQuestionMark:           "QuestionMark",
	TokenEquals:                 "Equals",
	TokenDoubleQuote:            "DoubleQuote",
	TokenSingleQuote:            "SingleQuote",
	TokenDoubleHyphen:           "DoubleHyphen",
	TokenIdentifier:             "Identifier",
	TokenKeyword:                "Keyword",
	TokenLiteral:                "Literal",
	TokenOperator:               "Operator",
	TokenLeftParen:              "LeftParen",
	TokenRightParen:             "RightParen",
	TokenLeftBracket:            "LeftBracket",
	TokenRightBracket:           "RightBracket",
	TokenDot:                    "Dot",
	TokenSemicolon:              "Semicolon",
	TokenComma:                  "Comma",
	TokenComment:                "Comment",
}

// String returns the kind name.
func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", uint16(k))
}

// IsTrivia reports whether tokens of this kind are whitespace or line terminators.
func (k TokenKind) IsTrivia() bool {
	return k == TokenWhitespace || k == TokenNewLine
}

// Token is an immutable lexeme with its absolute position in the document.
type Token struct {
	Kind    TokenKind
	Start   int
	Content string
}

// Width returns the token length in bytes.
func (t Token) Width() int {
	return len(t.Content)
}

// End returns the exclusive end offset.
func (t Token) End() int {
	return t.Start + len(t.Content)
}

// Span returns the byte range of the token.
func (t Token) Span() source.Span {
	return source.Span{Start: t.Start, Length: len(t.Content)}
}

// IsEOF reports whether the token is the zero-width end-of-input token.
func (t Token) IsEOF() bool {
	return t.Kind == TokenUnknown && t.Content == ""
}

// String formats the token for debugging.
func (t Token) String() string {
	return fmt.Sprintf("%s@%d %q", t.Kind, t.Start, t.Content)
}
