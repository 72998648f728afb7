package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "  yes  \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "sure\n", want: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			got, err := confirm(strings.NewReader(testCase.input), &out, "Overwrite x?")
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
			assert.Equal(t, "Overwrite x? [y/N] ", out.String())
		})
	}
}

func TestIsInteractive_NonFile(t *testing.T) {
	t.Parallel()

	assert.False(t, isInteractive(strings.NewReader("")))
}
