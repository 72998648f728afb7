package docgen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/internal/docgen"
	"github.com/yaklabco/gorazor/pkg/directive"
)

func TestMarkdown(t *testing.T) {
	t.Parallel()

	md := string(docgen.Markdown("", directive.DefaultRegistry.Descriptors()))

	assert.True(t, strings.HasPrefix(md, "# Directive reference\n"))
	assert.Contains(t, md, "| [`@inject`](#inject) | single-line | file-scoped-multiple |")
	assert.Contains(t, md, "## @section")
	assert.Contains(t, md, "@section name { ... }")
	assert.Contains(t, md, "| `constraint` | type | no |")
	assert.Contains(t, md, "May appear once, at the top level of a template.")
}

func TestHTML(t *testing.T) {
	t.Parallel()

	descs := []*directive.Descriptor{{
		Name:        "widget",
		Description: "Declares a **widget**.",
		Kind:        directive.KindSingleLine,
		Usage:       directive.UsageUnrestricted,
		Tokens:      []directive.TokenDescriptor{{Kind: directive.TokenString, Name: "label"}},
	}}

	tests := []struct {
		name     string
		opts     docgen.Options
		contains []string
		excludes []string
	}{
		{
			name:     "fragment",
			opts:     docgen.Options{},
			contains: []string{`<h2 id="widget">@widget</h2>`, "<strong>widget</strong>", "<table>", `<a href="#widget">`},
			excludes: []string{"<!DOCTYPE html>"},
		},
		{
			name:     "standalone",
			opts:     docgen.Options{Title: "Widgets & more", Standalone: true},
			contains: []string{"<!DOCTYPE html>", "<title>Widgets &amp; more</title>", "<h1"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, docgen.HTML(&buf, descs, testCase.opts))

			out := buf.String()
			for _, want := range testCase.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range testCase.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}
