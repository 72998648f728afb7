package pretty

import (
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/gorazor/pkg/position"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// TreeOptions configures FormatTree.
type TreeOptions struct {
	// Mapper, when set, adds 1-based line:column ranges after the byte ranges.
	Mapper *position.Mapper

	// HideTokens omits token leaves.
	HideTokens bool
}

// FormatTree writes an indented, styled rendering of the syntax tree, one node per line.
func (s *Styles) FormatTree(w io.Writer, root *syntax.Node, opts TreeOptions) error {
	return syntax.Walk(root, func(path syntax.Path) error {
		n := path.Node()
		if opts.HideTokens && n.IsToken() {
			return nil
		}

		var builder strings.Builder
		builder.WriteString(strings.Repeat("  ", len(path)-1))

		if n.IsToken() {
			builder.WriteString(s.TreeToken.Render(n.String()))
		} else {
			builder.WriteString(s.TreeNode.Render(n.String()))
		}

		span := path.Span()
		builder.WriteString(" " + s.TreeSpan.Render(fmt.Sprintf("[%d..%d)", span.Start, span.End())))
		if opts.Mapper != nil {
			rng := opts.Mapper.MapSpan(span)
			builder.WriteString(" " + s.TreeSpan.Render(rng.String()))
		}

		for _, d := range n.Diagnostics() {
			builder.WriteString(" " + s.FormatSeverity(d.Severity) + s.Code.Render("("+string(d.Code)+")"))
		}

		_, err := fmt.Fprintln(w, builder.String())
		return err
	})
}
