package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/gorazor/internal/configloader"
	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/fsutil"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// errInitDeclined is returned when the user declines to overwrite an existing file.
var errInitDeclined = errors.New("overwrite declined")

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gorazor configuration file",
		Long: `Create a new .gorazor.yml configuration file in the current directory
with sensible defaults. The file can be customized to register directives,
toggle grammar features and change output settings.

When the file exists, init asks before overwriting it on an interactive
terminal and refuses otherwise unless --force is given.

Examples:
  gorazor init                      Create minimal .gorazor.yml
  gorazor init --full               Create full config with every setting documented
  gorazor init --format json        Create .gorazor.json instead
  gorazor init --output custom.yml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every setting documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"Output file path (default: .gorazor.yml or .gorazor.json)")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	ctx := commandContext(cmd)
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != "json" {
		return usageError(fmt.Errorf("invalid format %q: must be yaml or json", flags.format))
	}

	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".gorazor.json"
		} else {
			outputPath = configloader.ProjectConfigName
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil && !flags.force {
		if !isInteractive(cmd.InOrStdin()) {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Overwrite %s?", outputPath))
		if err != nil {
			return err
		}
		if !ok {
			return errInitDeclined
		}
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, absPath, content, configFilePermissions)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if !written {
		logger.Info("configuration file already up to date", logging.FieldPath, outputPath)
		return nil
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.full {
		logger.Info("full template documents every setting")
	}
	logger.Info("customize your configuration by editing the file")
	logger.Info("run 'gorazor directives' to see the registered directives")

	return nil
}

// isInteractive reports whether in is a terminal.
func isInteractive(in io.Reader) bool {
	file, ok := in.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// confirm asks a yes/no question, defaulting to no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", question); err != nil {
		return false, err
	}

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
