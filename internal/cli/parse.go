package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/analysis"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/fsutil"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/position"
	"github.com/yaklabco/gorazor/pkg/runner"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

const (
	parseFormatTree = "tree"
	parseFormatJSON = "json"

	// stdinPath selects standard input as the parsed file.
	stdinPath = "-"
)

type parseFlags struct {
	format     string
	positions  bool
	hideTokens bool
	noContext  bool
}

func newParseCommand() *cobra.Command {
	var cfg config.Config
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the syntax tree and diagnostics of one template",
		Long: `Parse a single template and print its syntax tree followed by its diagnostics.

Use "-" to read the template from standard input.

Examples:
  gorazor parse index.cshtml                 # Indented tree with byte ranges
  gorazor parse index.cshtml --positions     # Add line:column ranges
  gorazor parse index.cshtml --format json   # Machine-readable tree
  echo '<p>@name</p>' | gorazor parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", parseFormatTree, "output format: tree, json")
	cmd.Flags().BoolVar(&flags.positions, "positions", false, "include line:column ranges")
	cmd.Flags().BoolVar(&flags.hideTokens, "hide-tokens", false, "omit token leaves from the tree")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in diagnostics")
	cmd.Flags().BoolVar(&cfg.DesignTime, "design-time", false, "insert markers for every missing directive argument")
	cmd.Flags().BoolVar(&cfg.ParseLeadingDirectives, "leading-directives", false,
		"stop after the leading directive block")

	return cmd
}

func runParse(cmd *cobra.Command, path string, cfg *config.Config, flags *parseFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	if flags.format != parseFormatTree && flags.format != parseFormatJSON {
		return usageError(fmt.Errorf("invalid format %q: must be %s or %s", flags.format, parseFormatTree, parseFormatJSON))
	}

	loaded, err := loadConfig(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	parseOpts, err := loaded.Config.ParseOptions()
	if err != nil {
		return fmt.Errorf("configure parser: %w", err)
	}

	content, err := readTemplate(ctx, cmd, path)
	if err != nil {
		return err
	}

	result, err := parser.Parse(ctx, source.NewDocument(path, content), parseOpts)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	logger.Debug("parsed template",
		logging.FieldPath, path,
		logging.FieldDiagnosticsTotal, len(result.Diagnostics),
	)

	outcome := runner.FileOutcome{Path: path, Result: result}
	out := cmd.OutOrStdout()

	if flags.format == parseFormatJSON {
		err = writeParseJSON(out, outcome, flags.positions)
	} else {
		err = writeParseTree(out, outcome, loaded.Config.Color, flags)
	}
	if err != nil {
		return err
	}

	if result.HasErrors() {
		return ErrParseIssuesFound
	}
	return nil
}

func readTemplate(ctx context.Context, cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdinPath {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read standard input: %w", err)
		}
		return content, nil
	}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func writeParseTree(out io.Writer, outcome runner.FileOutcome, color config.ColorMode, flags *parseFlags) error {
	styles := pretty.NewStylesFor(color, out)

	treeOpts := pretty.TreeOptions{HideTokens: flags.hideTokens}
	if flags.positions {
		treeOpts.Mapper = position.NewMapper(outcome.Result.Document)
	}
	if err := styles.FormatTree(out, outcome.Result.Root, treeOpts); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}

	located := outcome.Located()
	if len(located) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("write diagnostics: %w", err)
	}
	for _, loc := range located {
		line := styles.FormatDiagnostic(outcome.Path, loc, !flags.noContext, outcome.SourceLine(loc.Line()))
		if _, err := io.WriteString(out, line); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
	}
	return nil
}

// parseOutput is the JSON document written by parse --format json.
type parseOutput struct {
	Path        string                     `json:"path"`
	Fatal       bool                       `json:"fatal"`
	Directives  []string                   `json:"directives,omitempty"`
	Tree        *treeNode                  `json:"tree"`
	Diagnostics []analysis.DiagnosticEntry `json:"diagnostics"`
}

// treeNode is the JSON form of a syntax node with absolute byte offsets.
type treeNode struct {
	Kind        string      `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Token       string      `json:"token,omitempty"`
	Text        string      `json:"text,omitempty"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
	Range       string      `json:"range,omitempty"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
	Children    []*treeNode `json:"children,omitempty"`
}

func writeParseJSON(out io.Writer, outcome runner.FileOutcome, positions bool) error {
	result := outcome.Result

	var mapper *position.Mapper
	if positions {
		mapper = position.NewMapper(result.Document)
	}

	output := parseOutput{
		Path:        outcome.Path,
		Fatal:       result.Fatal(),
		Directives:  result.SeenDirectives,
		Tree:        buildTreeNode(result.Root, 0, mapper),
		Diagnostics: []analysis.DiagnosticEntry{},
	}
	for _, loc := range outcome.Located() {
		output.Diagnostics = append(output.Diagnostics, analysis.NewDiagnosticEntry(outcome.Path, loc))
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func buildTreeNode(n *syntax.Node, parentStart int, mapper *position.Mapper) *treeNode {
	if n == nil {
		return nil
	}

	start := parentStart + n.RelativeStart()
	node := &treeNode{
		Kind:  n.Kind().String(),
		Name:  n.Name(),
		Start: start,
		End:   start + n.Width(),
	}
	if n.IsToken() {
		node.Token = n.TokenKind().String()
		node.Text = n.Text()
	}
	if mapper != nil {
		node.Range = mapper.MapSpan(source.Span{Start: start, Length: n.Width()}).String()
	}
	for _, d := range n.Diagnostics() {
		node.Diagnostics = append(node.Diagnostics, string(d.Code))
	}
	for _, child := range n.Children() {
		node.Children = append(node.Children, buildTreeNode(child, start, mapper))
	}
	return node
}
