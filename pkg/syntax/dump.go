package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented rendering of the tree with absolute ranges, one node per line:
//
//	Document [0..5)
//	  MarkupTextLiteral [0..5)
//	    Text "hello" [0..5)
func Dump(w io.Writer, root *Node) error {
	return Walk(root, func(path Path) error {
		n := path.Node()
		start := path.Start()
		indent := strings.Repeat("  ", len(path)-1)

		line := fmt.Sprintf("%s%s [%d..%d)", indent, n, start, start+n.width)
		for _, d := range n.diagnostics {
			line += fmt.Sprintf(" !%s", d.Code)
		}

		_, err := fmt.Fprintln(w, line)
		return err
	})
}

// DumpString returns the Dump rendering as a string.
func DumpString(root *Node) string {
	var builder strings.Builder
	_ = Dump(&builder, root)
	return builder.String()
}
