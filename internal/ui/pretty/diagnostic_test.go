package pretty_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/position"
	"github.com/yaklabco/gorazor/pkg/runner"
	"github.com/yaklabco/gorazor/pkg/source"
)

func located(code diag.Code, line, col, endCol int, message string) runner.Located {
	return runner.Located{
		Diagnostic: diag.Diagnostic{Code: code, Severity: code.DefaultSeverity(), Message: message},
		Range: position.LinePositionSpan{
			Start: position.LinePosition{Line: line - 1, Character: col - 1},
			End:   position.LinePosition{Line: line - 1, Character: endCol - 1},
		},
	}
}

func TestFormatDiagnostic_Basic(t *testing.T) {
	styles := pretty.NewStyles(false) // No colors for easier testing

	loc := located(diag.CodeMissingCloseBrace, 10, 1, 3, "code block is missing a closing brace")

	result := styles.FormatDiagnostic("views/index.cshtml", loc, false, "")

	assert.Contains(t, result, "views/index.cshtml:10:1")
	assert.Contains(t, result, "error")
	assert.Contains(t, result, "code block is missing a closing brace")
	assert.Contains(t, result, "(RZ1004)")
}

func TestFormatDiagnostic_WithContext(t *testing.T) {
	styles := pretty.NewStyles(false)

	loc := located(diag.CodeUnexpectedEndTag, 5, 3, 10, "end tag </span> has no matching start tag")

	result := styles.FormatDiagnostic("page.cshtml", loc, true, "a </span> b")

	// Columns 3 through 9 are marked, under "</span>".
	assert.Contains(t, result, "a </span> b\n          ^~~~~~~\n")
}

func TestFormatDiagnostic_WithCodeFormat(t *testing.T) {
	styles := pretty.NewStyles(false)

	loc := located(diag.CodeUnexpectedEndTag, 1, 1, 2, "stray end tag")

	tests := []struct {
		format   config.CodeFormat
		contains string
		excludes string
	}{
		{config.CodeFormatName, "(unexpected-end-tag)", "(RZ1008)"},
		{config.CodeFormatCode, "(RZ1008)", "(unexpected-end-tag)"},
		{config.CodeFormatCombined, "(RZ1008/unexpected-end-tag)", ""},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.format), func(t *testing.T) {
			result := styles.FormatDiagnosticWithFormat("a.cshtml", loc, false, "", testCase.format)
			assert.Contains(t, result, testCase.contains)
			if testCase.excludes != "" {
				assert.NotContains(t, result, testCase.excludes)
			}
		})
	}
}

func TestFormatSeverity_AllLevels(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		severity diag.Severity
		expected string
	}{
		{diag.SeverityFatal, "fatal"},
		{diag.SeverityError, "error"},
		{diag.SeverityWarning, "warning"},
		{diag.SeverityInfo, "info"},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.severity), func(t *testing.T) {
			assert.Equal(t, testCase.expected, styles.FormatSeverity(testCase.severity))
		})
	}
}

func TestFormatSourceContext_WithCaret(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSourceContext("test line", 5)

	lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "test line")+4, strings.Index(lines[1], "^"))
}

func TestFormatSourceContext_MultiByte(t *testing.T) {
	styles := pretty.NewStyles(false)

	// "é" is two bytes, so byte column 5 is the x.
	result := styles.FormatSourceContextSpan("aé x", 5, 1)

	lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "        "+strings.Repeat(" ", 3)+"^", lines[1])
}

func TestFormatSourceContext_ZeroColumn(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSourceContext("test line", 0)

	assert.Contains(t, result, "test line")
	assert.NotContains(t, result, "^")
}

func TestFormatFileHeader(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Contains(t, styles.FormatFileHeader("views/index.cshtml", 5), "(5 issues)")
	assert.Contains(t, styles.FormatFileHeader("views/index.cshtml", 1), "(1 issue)")
	assert.NotContains(t, styles.FormatFileHeader("views/index.cshtml", 0), "issue")
}

func TestFormatFileError(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatFileError("gone.cshtml", errors.New("file not found"))

	assert.Equal(t, "gone.cshtml: error: file not found\n", result)
}

func TestFormatTree(t *testing.T) {
	styles := pretty.NewStyles(false)

	result, err := parser.ParseString(context.Background(), "a.cshtml", "hi\n@x")
	require.NoError(t, err)

	var buf bytes.Buffer
	err = styles.FormatTree(&buf, result.Root, pretty.TreeOptions{
		Mapper: position.NewMapper(source.NewDocumentFromString("a.cshtml", "hi\n@x")),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "Document [0..5) 1:1-2:3"), lines[0])

	var tokensOnly bytes.Buffer
	require.NoError(t, styles.FormatTree(&tokensOnly, result.Root, pretty.TreeOptions{HideTokens: true}))
	assert.Less(t, strings.Count(tokensOnly.String(), "\n"), len(lines))
	assert.NotContains(t, tokensOnly.String(), `"hi`)
}
