package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

func newTestParser(t *testing.T, text string) *parser {
	t.Helper()

	session, err := NewSession(source.NewDocumentFromString("guard.cshtml", text), DefaultOptions())
	require.NoError(t, err)
	return &parser{Session: session}
}

func TestCheckInfiniteLoop_Threshold(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "abc")

	// The first check records the location; the repeats are counted.
	for range InfiniteLoopThreshold + 1 {
		require.NoError(t, p.CheckInfiniteLoop())
	}
	require.ErrorIs(t, p.CheckInfiniteLoop(), ErrParserStalled)
}

func TestCheckInfiniteLoop_ProgressResets(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "abc")

	for range InfiniteLoopThreshold {
		require.NoError(t, p.CheckInfiniteLoop())
	}

	p.tokens.Next(ModeMarkup)
	for range InfiniteLoopThreshold {
		require.NoError(t, p.CheckInfiniteLoop())
	}
}

func TestLoopGuard_NestedLoopsKeepSeparateCounts(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "ab")
	p.tokens.Next(ModeMarkup)

	// A nested loop that returns at once, as a production does at end of input, checks its
	// own guard a single time however often its caller runs it.
	for range 2 * InfiniteLoopThreshold {
		var inner loopGuard
		require.NoError(t, inner.check(p.reader.Location()))
	}

	var stuck loopGuard
	for range InfiniteLoopThreshold + 1 {
		require.NoError(t, stuck.check(p.reader.Location()))
	}
	require.ErrorIs(t, stuck.check(p.reader.Location()), ErrParserStalled)
}

func TestRun_BailoutKeepsCompletedNodes(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "ab cd")

	root := p.run(func() *syntax.Node {
		p.completed = append(p.completed, syntax.NewNode(syntax.NodeMarkupTextLiteral, []*syntax.Node{
			p.accept(ModeMarkup),
		}))
		var progress loopGuard
		for {
			p.guard(&progress)
		}
	})

	require.Equal(t, 2, root.ChildCount())
	assert.Equal(t, "ab", root.Child(0).Content())
	assert.Equal(t, " cd", root.Child(1).Content())
	assert.Equal(t, "ab cd", root.Content())

	fatal, ok := p.sink.Fatal()
	require.True(t, ok)
	assert.Equal(t, diag.CodeParserStalled, fatal.Code)
	assert.Equal(t, diag.SeverityFatal, fatal.Severity)
	assert.Equal(t, 1, p.sink.Len())
}

func TestRun_BailoutOnEmptyProgress(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "")

	root := p.run(func() *syntax.Node {
		var progress loopGuard
		for {
			p.guard(&progress)
		}
	})

	require.Equal(t, 1, root.ChildCount())
	assert.True(t, root.Child(0).IsMarker())
}

func TestRun_OtherPanicsPropagate(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "x")

	assert.PanicsWithValue(t, "boom", func() {
		p.run(func() *syntax.Node { panic("boom") })
	})
}

func TestSession_Directives(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "")

	assert.False(t, p.SeenDirective("model"))
	assert.True(t, p.MarkDirectiveSeen("model"))
	assert.False(t, p.MarkDirectiveSeen("model"))
	assert.True(t, p.MarkDirectiveSeen("page"))
	assert.True(t, p.SeenDirective("model"))
	assert.Equal(t, []string{"model", "page"}, p.SeenDirectives())
}

func TestSession_LastAccepted(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, "a \nb")

	assert.Equal(t, DispositionNone, p.LastAccepted())
	p.reader.Seek(1)
	assert.Equal(t, DispositionAny, p.LastAccepted())
	p.reader.Seek(2)
	assert.Equal(t, DispositionWhitespace, p.LastAccepted())
	p.reader.Seek(3)
	assert.Equal(t, DispositionNewLine, p.LastAccepted())
	assert.True(t, p.StartOfLine())
}
