package diag

// Code identifies a class of diagnostic.
type Code string

// Syntax diagnostics.
const (
	CodeUnterminatedRazorComment  Code = "RZ1001"
	CodeUnterminatedMarkupComment Code = "RZ1002"
	CodeInvalidTransition         Code = "RZ1003"
	CodeMissingCloseBrace         Code = "RZ1004"
	CodeMissingCloseParen         Code = "RZ1005"
	CodeMissingCloseBracket       Code = "RZ1006"
	CodeUnclosedElement           Code = "RZ1007"
	CodeUnexpectedEndTag          Code = "RZ1008"
	CodeUnterminatedTag           Code = "RZ1009"
	CodeNestedTemplate            Code = "RZ1010"
	CodeEmbeddedCode              Code = "RZ1011"
	CodeTransitionInTag           Code = "RZ1012"
	CodeUnexpectedTransition      Code = "RZ1013"
	CodeMissingStatementBody      Code = "RZ1014"
)

// Directive diagnostics.
const (
	CodeDirectiveTokenExpected   Code = "RZ2001"
	CodeDirectiveTrailingContent Code = "RZ2002"
	CodeDirectiveMissingBlock    Code = "RZ2003"
	CodeDuplicateDirective       Code = "RZ2004"
	CodeDirectiveNotTopLevel     Code = "RZ2005"
)

// CodeParserStalled is reported when the parser stops making progress.
const CodeParserStalled Code = "RZ9999"

//nolint:gochecknoglobals // Read-only lookup table.
var codeTitles = map[Code]string{
	CodeUnterminatedRazorComment:  "unterminated-razor-comment",
	CodeUnterminatedMarkupComment: "unterminated-markup-comment",
	CodeInvalidTransition:         "invalid-transition",
	CodeMissingCloseBrace:         "missing-close-brace",
	CodeMissingCloseParen:         "missing-close-paren",
	CodeMissingCloseBracket:       "missing-close-bracket",
	CodeUnclosedElement:           "unclosed-element",
	CodeUnexpectedEndTag:          "unexpected-end-tag",
	CodeUnterminatedTag:           "unterminated-tag",
	CodeNestedTemplate:            "nested-template",
	CodeEmbeddedCode:              "embedded-code",
	CodeTransitionInTag:           "transition-in-tag",
	CodeUnexpectedTransition:      "unexpected-transition",
	CodeMissingStatementBody:      "missing-statement-body",
	CodeDirectiveTokenExpected:    "directive-token-expected",
	CodeDirectiveTrailingContent:  "directive-trailing-content",
	CodeDirectiveMissingBlock:     "directive-missing-block",
	CodeDuplicateDirective:        "duplicate-directive",
	CodeDirectiveNotTopLevel:      "directive-not-top-level",
	CodeParserStalled:             "parser-stalled",
}

// Title returns a short kebab-case name for the code, or the code itself when unknown.
func (c Code) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}
	return string(c)
}

// DefaultSeverity returns the severity a diagnostic with this code is reported at.
func (c Code) DefaultSeverity() Severity {
	switch c {
	case CodeParserStalled:
		return SeverityFatal
	case CodeUnexpectedEndTag:
		return SeverityWarning
	default:
		return SeverityError
	}
}
