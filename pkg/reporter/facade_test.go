package reporter_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/reporter"
)

func TestReporter_FacadeReturnsIssueCount(t *testing.T) {
	t.Parallel()

	for _, format := range []reporter.Format{reporter.FormatJSON, reporter.FormatSummary} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rep, err := reporter.New(reporter.Options{Writer: &buf, Format: format, Color: "never"})
			require.NoError(t, err)

			count, err := rep.Report(context.Background(), createTestResult())
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}
