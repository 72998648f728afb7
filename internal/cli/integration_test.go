package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/internal/cli"
)

// templateWithUnclosedBlock leaves a code block open, reporting RZ1004/missing-close-brace.
const templateWithUnclosedBlock = "<p>Hello</p>\n@{ var x = 1\n"

// templateWithStrayEndTag closes an element that was never opened, reporting the
// RZ1008/unexpected-end-tag warning.
const templateWithStrayEndTag = "a\n</span>b\n"

const cleanTemplate = "<ul>\n@for _, item := range items {\n  <li>@item</li>\n}\n</ul>\n"

// run executes the root command with args and returns its combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String() + stderr.String(), err
}

// writeFiles creates files under a fresh directory and returns it with an isolating config.
func writeFiles(t *testing.T, files map[string]string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	cfgFile := filepath.Join(t.TempDir(), ".gorazor.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("jobs: 2\n"), 0o644))
	return dir, cfgFile
}

func TestIntegration_CheckReportsErrors(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{
		"views/index.cshtml": templateWithUnclosedBlock,
		"views/clean.cshtml": cleanTemplate,
	})

	output, err := run(t, "check", "--config", cfgFile, "--color", "never", "--no-context", dir)

	require.ErrorIs(t, err, cli.ErrParseIssuesFound)
	assert.Contains(t, output, "index.cshtml")
	assert.Contains(t, output, "RZ1004")
	assert.NotContains(t, output, "clean.cshtml")
}

func TestIntegration_CheckWarningsPassUnlessStrict(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{"page.cshtml": templateWithStrayEndTag})

	output, err := run(t, "check", "--config", cfgFile, "--color", "never", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "RZ1008")
	assert.Contains(t, output, "1 warning")

	_, err = run(t, "check", "--config", cfgFile, "--color", "never", "--strict", dir)
	require.ErrorIs(t, err, cli.ErrParseIssuesFound)
}

func TestIntegration_CheckCleanProject(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{
		"a.cshtml":    cleanTemplate,
		"b.gohtml":    "<p>@name</p>\n",
		"notes.txt":   "@{ not a template",
		"vendor/x.md": "ignored",
	})

	output, err := run(t, "check", "--config", cfgFile, "--color", "never", dir)

	require.NoError(t, err)
	assert.Contains(t, output, "No issues found")
	assert.Contains(t, output, "2 files parsed")
}

func TestIntegration_CodeFormatFlag(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{"index.cshtml": templateWithUnclosedBlock})

	tests := []struct {
		name           string
		codeFormat     string
		wantContains   []string
		wantNotContain []string
	}{
		{
			name:           "code only",
			codeFormat:     "code",
			wantContains:   []string{"RZ1004"},
			wantNotContain: []string{"missing-close-brace"},
		},
		{
			name:           "name only",
			codeFormat:     "name",
			wantContains:   []string{"missing-close-brace"},
			wantNotContain: []string{"RZ1004"},
		},
		{
			name:         "combined",
			codeFormat:   "combined",
			wantContains: []string{"RZ1004/missing-close-brace"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			output, err := run(t, "check",
				"--config", cfgFile,
				"--code-format", testCase.codeFormat,
				"--no-context",
				"--color", "never",
				dir,
			)
			require.ErrorIs(t, err, cli.ErrParseIssuesFound)

			for _, want := range testCase.wantContains {
				assert.Contains(t, output, want)
			}
			for _, notWant := range testCase.wantNotContain {
				assert.NotContains(t, output, notWant)
			}
		})
	}
}

func TestIntegration_CheckJSONOutput(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{"index.cshtml": templateWithUnclosedBlock})

	output, err := run(t, "check", "--config", cfgFile, "--format", "json", dir)
	require.ErrorIs(t, err, cli.ErrParseIssuesFound)

	var parsed struct {
		Files []struct {
			Path        string `json:"path"`
			Diagnostics []struct {
				Code  string `json:"code"`
				Title string `json:"title"`
			} `json:"diagnostics"`
		} `json:"files"`
		Summary struct {
			Errors int `json:"errors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &parsed), output)

	require.Len(t, parsed.Files, 1)
	titles := make(map[string]string)
	for _, d := range parsed.Files[0].Diagnostics {
		titles[d.Code] = d.Title
	}
	assert.Equal(t, "missing-close-brace", titles["RZ1004"])
	assert.Positive(t, parsed.Summary.Errors)
}

func TestIntegration_SummaryOrder(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{
		"a.cshtml": templateWithUnclosedBlock,
		"b.cshtml": templateWithStrayEndTag,
	})

	tests := []struct {
		order      string
		firstTable string
		lastTable  string
	}{
		{order: "codes", firstTable: "Codes Summary", lastTable: "Files Summary"},
		{order: "files", firstTable: "Files Summary", lastTable: "Codes Summary"},
	}

	for _, testCase := range tests {
		t.Run(testCase.order, func(t *testing.T) {
			t.Parallel()

			output, err := run(t, "check",
				"--config", cfgFile,
				"--format", "summary",
				"--summary-order", testCase.order,
				"--color", "never",
				dir,
			)
			require.ErrorIs(t, err, cli.ErrParseIssuesFound)

			first := strings.Index(output, testCase.firstTable)
			last := strings.Index(output, testCase.lastTable)
			require.NotEqual(t, -1, first, output)
			require.NotEqual(t, -1, last, output)
			assert.Less(t, first, last)
		})
	}
}

func TestIntegration_CheckSortOrder(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{
		"a.cshtml": templateWithUnclosedBlock,
		"b.cshtml": templateWithStrayEndTag + templateWithStrayEndTag,
	})

	decode := func(t *testing.T, sortBy string) []string {
		t.Helper()

		output, err := run(t, "check", "--config", cfgFile, "--format", "json", "--sort", sortBy, dir)
		require.ErrorIs(t, err, cli.ErrParseIssuesFound)

		var report struct {
			ByCode []struct {
				Code string `json:"code"`
			} `json:"byCode"`
		}
		require.NoError(t, json.Unmarshal([]byte(output), &report), output)

		codes := make([]string, 0, len(report.ByCode))
		for _, c := range report.ByCode {
			codes = append(codes, c.Code)
		}
		return codes
	}

	alpha := decode(t, "alpha")
	assert.Subset(t, alpha, []string{"RZ1004", "RZ1008"})
	assert.True(t, slices.IsSorted(alpha), alpha)

	severity := decode(t, "severity")
	require.NotEmpty(t, severity)
	assert.NotEqual(t, "RZ1008", severity[0], "warnings sort after errors")

	_, err := run(t, "check", "--config", cfgFile, "--sort", "random", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--sort")
}

func TestIntegration_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir, _ := writeFiles(t, map[string]string{"a.cshtml": cleanTemplate})
	cfgFile := filepath.Join(t.TempDir(), ".gorazor.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("extensions:\n  - cshtml\n"), 0o644))

	_, err := run(t, "check", "--config", cfgFile, dir)

	require.Error(t, err)
	assert.NotErrorIs(t, err, cli.ErrParseIssuesFound)
	assert.Contains(t, err.Error(), "extension")
}

func TestIntegration_ParseTree(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{"page.cshtml": "<p>@name</p>"})
	path := filepath.Join(dir, "page.cshtml")

	output, err := run(t, "parse", "--config", cfgFile, "--color", "never", "--positions", path)

	require.NoError(t, err)
	assert.Contains(t, output, "Document")
	assert.Contains(t, output, "MarkupElement")
	assert.Contains(t, output, "ImplicitExpression")
	assert.Contains(t, output, "[0..12)")
	assert.Contains(t, output, "1:1-1:13")
}

func TestIntegration_ParseReportsDiagnostics(t *testing.T) {
	t.Parallel()

	dir, cfgFile := writeFiles(t, map[string]string{"page.cshtml": templateWithUnclosedBlock})
	path := filepath.Join(dir, "page.cshtml")

	output, err := run(t, "parse", "--config", cfgFile, "--color", "never", "--hide-tokens", path)

	require.ErrorIs(t, err, cli.ErrParseIssuesFound)
	assert.Contains(t, output, "RZ1004")
	assert.Contains(t, output, "CodeBlock")
}

func TestIntegration_ParseJSON(t *testing.T) {
	t.Parallel()

	_, cfgFile := writeFiles(t, nil)

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("a\n</span>b"))
	cmd.SetArgs([]string{"parse", "--config", cfgFile, "--format", "json", "--positions", "-"})
	require.NoError(t, cmd.Execute())

	var parsed struct {
		Path  string `json:"path"`
		Fatal bool   `json:"fatal"`
		Tree  struct {
			Kind  string `json:"kind"`
			Start int    `json:"start"`
			End   int    `json:"end"`
			Range string `json:"range"`
		} `json:"tree"`
		Diagnostics []struct {
			Code      string `json:"code"`
			StartLine int    `json:"startLine"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &parsed), stdout.String())

	assert.Equal(t, "-", parsed.Path)
	assert.False(t, parsed.Fatal)
	assert.Equal(t, "Document", parsed.Tree.Kind)
	assert.Equal(t, 0, parsed.Tree.Start)
	assert.Equal(t, 10, parsed.Tree.End)
	assert.Equal(t, "1:1-2:9", parsed.Tree.Range)
	require.Len(t, parsed.Diagnostics, 1)
	assert.Equal(t, "RZ1008", parsed.Diagnostics[0].Code)
	assert.Equal(t, 2, parsed.Diagnostics[0].StartLine)
}

func TestIntegration_ParseInvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := run(t, "parse", "--format", "xml", "missing.cshtml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIntegration_Directives(t *testing.T) {
	t.Parallel()

	_, cfgFile := writeFiles(t, nil)

	tests := []struct {
		format       string
		wantContains []string
	}{
		{format: "text", wantContains: []string{"section", "@section name { ... }", "directives"}},
		{format: "json", wantContains: []string{`"name": "section"`, `"kind": "razor-block"`}},
		{format: "markdown", wantContains: []string{"# Directive reference", "| Directive | Kind | Usage |"}},
		{format: "html", wantContains: []string{"<h1", "<table>", "section"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.format, func(t *testing.T) {
			t.Parallel()

			output, err := run(t, "directives", "--config", cfgFile, "--color", "never", "--format", testCase.format)
			require.NoError(t, err)
			for _, want := range testCase.wantContains {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestIntegration_DirectivesIncludeCustom(t *testing.T) {
	t.Parallel()

	cfgFile := filepath.Join(t.TempDir(), ".gorazor.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`directives:
  - name: title
    kind: single-line
    usage: file-scoped-single
    tokens:
      - kind: string
        name: text
`), 0o644))

	output, err := run(t, "directives", "--config", cfgFile, "--color", "never")

	require.NoError(t, err)
	assert.Contains(t, output, "@title text")
}

func TestIntegration_DirectivesToFile(t *testing.T) {
	t.Parallel()

	_, cfgFile := writeFiles(t, nil)
	out := filepath.Join(t.TempDir(), "directives.html")

	_, err := run(t, "directives", "--config", cfgFile, "--format", "html", "--standalone", "-o", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "<!DOCTYPE html>"))
	assert.Contains(t, string(content), "<title>Directive reference</title>")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "custom.yml")

	_, err := run(t, "init", "--output", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# gorazor configuration")

	// Standard input is not a terminal, so an existing file needs --force.
	_, err = run(t, "init", "--output", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run(t, "init", "--output", out, "--force", "--full")
	require.NoError(t, err)
	full, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(full), "# Built-in directives:")
}

func TestIntegration_InitJSON(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "gorazor.json")

	_, err := run(t, "init", "--format", "json", "--output", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(content, &doc))
	assert.Contains(t, doc, "extensions")
	assert.Contains(t, doc, "debounce")
}

func TestIntegration_InitRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := run(t, "init", "--format", "toml", "--output", filepath.Join(t.TempDir(), "x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
