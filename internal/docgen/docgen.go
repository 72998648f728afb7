// Package docgen renders the directive reference as Markdown and HTML.
package docgen

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/yaklabco/gorazor/pkg/directive"
)

// DefaultTitle heads the generated reference.
const DefaultTitle = "Directive reference"

// Options configures HTML rendering.
type Options struct {
	// Title is the top-level heading and, for standalone pages, the document title.
	Title string

	// Standalone wraps the fragment in a complete HTML page.
	Standalone bool
}

// Markdown renders descs as a Markdown reference: an overview table followed by one section
// per directive.
func Markdown(title string, descs []*directive.Descriptor) []byte {
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title)

	buf.WriteString("| Directive | Kind | Usage |\n")
	buf.WriteString("|---|---|---|\n")
	for _, desc := range descs {
		fmt.Fprintf(&buf, "| [`@%s`](#%s) | %s | %s |\n", desc.Name, anchor(desc.Name), desc.Kind, desc.Usage)
	}

	for _, desc := range descs {
		writeSection(&buf, desc)
	}
	return buf.Bytes()
}

func writeSection(buf *bytes.Buffer, desc *directive.Descriptor) {
	fmt.Fprintf(buf, "\n## @%s\n\n", desc.Name)
	fmt.Fprintf(buf, "```\n%s\n```\n\n", desc.Signature())

	if desc.Description != "" {
		buf.WriteString(desc.Description)
		buf.WriteString("\n\n")
	}

	switch desc.Usage {
	case directive.UsageFileScopedSingle:
		buf.WriteString("May appear once, at the top level of a template.\n")
	case directive.UsageFileScopedMultiple:
		buf.WriteString("May appear any number of times, at the top level of a template.\n")
	case directive.UsageUnrestricted:
		buf.WriteString("May appear anywhere.\n")
	}

	if len(desc.Tokens) == 0 {
		return
	}

	buf.WriteString("\n| Argument | Kind | Required |\n")
	buf.WriteString("|---|---|---|\n")
	for _, token := range desc.Tokens {
		name := token.Name
		if name == "" {
			name = string(token.Kind)
		}
		required := "yes"
		if token.Optional {
			required = "no"
		}
		fmt.Fprintf(buf, "| `%s` | %s | %s |\n", name, token.Kind, required)
	}
}

// anchor returns the heading ID goldmark generates for "@name".
func anchor(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// HTML renders descs as HTML.
func HTML(w io.Writer, descs []*directive.Descriptor, opts Options) error {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var body bytes.Buffer
	if err := md.Convert(Markdown(title, descs), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}

	if !opts.Standalone {
		_, err := w.Write(body.Bytes())
		return err
	}

	_, err := fmt.Fprintf(w, pageTemplate, html.EscapeString(title), body.String())
	return err
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`
