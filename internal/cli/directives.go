package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/docgen"
	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/fsutil"
)

// Output formats of the directives command.
const (
	directivesFormatText     = "text"
	directivesFormatJSON     = "json"
	directivesFormatMarkdown = "markdown"
	directivesFormatHTML     = "html"
)

// docFilePermissions is the file mode for generated reference files.
const docFilePermissions = 0o644

type directivesFlags struct {
	format     string
	output     string
	title      string
	standalone bool
}

func newDirectivesCommand() *cobra.Command {
	flags := &directivesFlags{}

	cmd := &cobra.Command{
		Use:   "directives",
		Short: "List the registered directives",
		Long: `List the built-in directives and any custom directives from the configuration.

The markdown and html formats produce a reference document; html renders the
Markdown through goldmark.

Examples:
  gorazor directives                                  # Aligned listing
  gorazor directives --format json                    # Descriptors as JSON
  gorazor directives --format html --standalone -o directives.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDirectives(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", directivesFormatText, "output format: text, json, markdown, html")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write to a file instead of standard output")
	cmd.Flags().StringVar(&flags.title, "title", docgen.DefaultTitle, "heading of markdown and html output")
	cmd.Flags().BoolVar(&flags.standalone, "standalone", false, "wrap html output in a complete page")

	return cmd
}

func runDirectives(cmd *cobra.Command, flags *directivesFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	loaded, err := loadConfig(ctx, cmd, nil)
	if err != nil {
		return err
	}
	parseOpts, err := loaded.Config.ParseOptions()
	if err != nil {
		return fmt.Errorf("configure parser: %w", err)
	}
	descs := parseOpts.Directives.Descriptors()

	var buf bytes.Buffer
	switch flags.format {
	case directivesFormatText:
		color := loaded.Config.Color
		if flags.output != "" {
			color = config.ColorNever
		}
		err = writeDirectivesText(&buf, descs, pretty.NewStylesFor(color, cmd.OutOrStdout()))
	case directivesFormatJSON:
		err = writeDirectivesJSON(&buf, descs)
	case directivesFormatMarkdown:
		_, err = buf.Write(docgen.Markdown(flags.title, descs))
	case directivesFormatHTML:
		err = docgen.HTML(&buf, descs, docgen.Options{Title: flags.title, Standalone: flags.standalone})
	default:
		return usageError(fmt.Errorf("invalid format %q: must be text, json, markdown or html", flags.format))
	}
	if err != nil {
		return fmt.Errorf("render directives: %w", err)
	}

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, flags.output, buf.Bytes(), docFilePermissions)
	if err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	if written {
		logger.Info("wrote directive reference", logging.FieldPath, flags.output, logging.FieldFormat, flags.format)
	} else {
		logger.Debug("directive reference unchanged", logging.FieldPath, flags.output)
	}
	return nil
}

func writeDirectivesText(w io.Writer, descs []*directive.Descriptor, styles *pretty.Styles) error {
	nameWidth, kindWidth := 0, 0
	for _, desc := range descs {
		nameWidth = max(nameWidth, len(desc.Name))
		kindWidth = max(kindWidth, len(desc.Kind))
	}

	for _, desc := range descs {
		name := desc.Name + strings.Repeat(" ", nameWidth-len(desc.Name))
		kind := string(desc.Kind) + strings.Repeat(" ", kindWidth-len(desc.Kind))
		line := fmt.Sprintf("%s  %s  %s\n",
			styles.Bold.Render(name),
			styles.Dim.Render(kind),
			styles.Code.Render(desc.Signature()),
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d directives\n", len(descs))
	return err
}

func writeDirectivesJSON(w io.Writer, descs []*directive.Descriptor) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(descs)
}
