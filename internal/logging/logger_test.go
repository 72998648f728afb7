package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug", "debug", log.DebugLevel},
		{"info", "info", log.InfoLevel},
		{"warn", "warn", log.WarnLevel},
		{"warning alias", "warning", log.WarnLevel},
		{"error", "error", log.ErrorLevel},
		{"upper case", "DEBUG", log.DebugLevel},
		{"padded", "  error ", log.ErrorLevel},
		{"unknown falls back to info", "verbose", log.InfoLevel},
		{"empty falls back to info", "", log.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, logging.ParseLevel(testCase.level))
			assert.Equal(t, testCase.expected, logging.New(testCase.level).GetLevel())
		})
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")

	logger.Info("dropped")
	logger.Warn("kept", logging.FieldPath, "views/index.cshtml")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "path=views/index.cshtml")
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	require.NotNil(t, logger)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.Equal(t, "gorazor", logger.GetPrefix())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))

	custom := logging.New("error")
	ctx := logging.WithLogger(context.Background(), custom)
	assert.Same(t, custom, logging.FromContext(ctx))
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWriter(&buf, "debug"))
	ctx = logging.WithFields(ctx, logging.FieldPath, "a.cshtml", logging.FieldRevision, 3)

	logging.FromContext(ctx).Debug("published parse pass")

	out := buf.String()
	assert.Contains(t, out, "published parse pass")
	assert.Contains(t, out, "path=a.cshtml")
	assert.Contains(t, out, "revision=3")
}

func TestSetLevel(t *testing.T) {
	// Not parallel: mutates the process-wide logger.
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New("info"))

	logging.SetLevel("debug")
	if logging.Default().GetLevel() != log.DebugLevel {
		t.Error("SetLevel to debug failed")
	}

	logging.SetLevel("error")
	if logging.Default().GetLevel() != log.ErrorLevel {
		t.Error("SetLevel to error failed")
	}
}

func TestSetDefault(t *testing.T) {
	// Not parallel: mutates the process-wide logger.
	original := logging.Default()
	defer logging.SetDefault(original)

	replacement := logging.New("error")
	logging.SetDefault(replacement)

	if logging.Default() != replacement {
		t.Error("SetDefault did not change the default logger")
	}
}
