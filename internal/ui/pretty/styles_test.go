package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/diag"
)

func TestNewStyles_ColorDisabledRendersPlainText(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)

	for _, rendered := range []string{
		styles.Bold.Render("text"),
		styles.Fatal.Render("text"),
		styles.Error.Render("text"),
		styles.TreeNode.Render("text"),
		styles.TableLegend.Render("text"),
		styles.Heading.Render("text"),
		styles.Flag.Render("text"),
	} {
		assert.Equal(t, "text", rendered)
	}
}

func TestNewStyles_ColorEnabledKeepsText(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)

	// lipgloss strips escapes when no terminal is attached, so only the text is checked.
	assert.Contains(t, styles.Error.Render("x"), "x")
	assert.Contains(t, styles.TreeToken.Render("x"), "x")
	assert.Contains(t, styles.Subcommand.Render("x"), "x")
	assert.Contains(t, styles.Command.Render("x"), "x")
}

func TestStyles_ForSeverity(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		severity diag.Severity
		want     string
	}{
		{diag.SeverityFatal, "fatal"},
		{diag.SeverityError, "error"},
		{diag.SeverityWarning, "warning"},
		{diag.SeverityInfo, "info"},
		{diag.Severity("custom"), "custom"},
	}

	for _, testCase := range tests {
		t.Run(string(testCase.severity), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, styles.FormatSeverity(testCase.severity))
			assert.Equal(t, testCase.want, styles.ForSeverity(testCase.severity).Render(testCase.want))
		})
	}
}

func TestIsColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	tests := []struct {
		name   string
		mode   config.ColorMode
		writer *bytes.Buffer
		want   bool
	}{
		{"always", config.ColorAlways, &buf, true},
		{"never", config.ColorNever, &buf, false},
		{"auto on a buffer", config.ColorAuto, &buf, false},
		{"empty behaves as auto", "", &buf, false},
		{"unknown behaves as auto", "sometimes", &buf, false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, pretty.IsColorEnabled(testCase.mode, testCase.writer))
		})
	}
}

func TestIsColorEnabled_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.False(t, pretty.IsColorEnabled(config.ColorAuto, os.Stdout))
	assert.True(t, pretty.IsColorEnabled(config.ColorAlways, os.Stdout), "always overrides NO_COLOR")
}

func TestNewStylesFor_Never(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStylesFor(config.ColorNever, os.Stdout)
	assert.Equal(t, "RZ1004", styles.Code.Render("RZ1004"))
}
