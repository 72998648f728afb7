package runner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/runner"
)

func TestFileOutcome_Located(t *testing.T) {
	t.Parallel()

	result, err := parser.ParseString(context.Background(), "page.cshtml", "a\n</span>b")
	require.NoError(t, err)

	outcome := runner.FileOutcome{Path: "page.cshtml", Result: result}
	located := outcome.Located()
	require.Len(t, located, 1)

	loc := located[0]
	assert.Equal(t, diag.CodeUnexpectedEndTag, loc.Code)
	assert.Equal(t, 2, loc.Line())
	assert.Equal(t, 1, loc.Column())
	assert.Equal(t, 2, loc.EndLine())
	assert.Equal(t, "</span>b", outcome.SourceLine(loc.Line()))
}

func TestFileOutcome_Located_NoResult(t *testing.T) {
	t.Parallel()

	outcome := runner.FileOutcome{Path: "missing.cshtml"}
	assert.Nil(t, outcome.Located())
	assert.Empty(t, outcome.SourceLine(1))
}
