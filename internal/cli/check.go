package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/analysis"
	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/reporter"
	"github.com/yaklabco/gorazor/pkg/runner"
)

type checkFlags struct {
	format       string
	extensions   []string
	ignore       []string
	strict       bool
	noContext    bool
	compact      bool
	perFile      bool
	codeFormat   string
	summaryOrder string
	sortBy       string
}

func newCheckCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Parse template files and report diagnostics",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, info, &cfg, flags)
		},
	}

	addCheckFlags(cmd, &cfg, flags)

	return cmd
}

const checkLongDescription = `Parse template files and report their diagnostics.

By default, checks every .cshtml, .razor and .gohtml file in the current
directory and subdirectories. Specify paths to check specific files or
directories.

Examples:
  gorazor check                     # Check current directory
  gorazor check views/              # Check views directory
  gorazor check index.cshtml        # Check single file
  gorazor check --format json       # Output as JSON for CI
  gorazor check --format sarif      # Output SARIF for code scanning
  gorazor check --strict            # Treat warnings as errors`

func runCheck(cmd *cobra.Command, args []string, info BuildInfo, cfg *config.Config, flags *checkFlags) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	cfg.Extensions = flags.extensions
	cfg.Ignore = flags.ignore
	cfg.CodeFormat = config.CodeFormat(flags.codeFormat)
	cfg.SummaryOrder = config.SummaryOrder(flags.summaryOrder)

	loaded, err := loadConfig(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	finalCfg := loaded.Config

	logger.Debug("configuration loaded",
		logging.FieldFormat, finalCfg.Format,
		logging.FieldDesignTime, finalCfg.DesignTime,
		logging.FieldJobs, finalCfg.Jobs,
	)

	parseOpts, err := finalCfg.ParseOptions()
	if err != nil {
		return fmt.Errorf("configure parser: %w", err)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   loaded.WorkingDir,
		Extensions:   finalCfg.Extensions,
		ExcludeGlobs: finalCfg.Ignore,
		Jobs:         finalCfg.Jobs,
		Parse:        parseOpts,
	}

	logger.Debug("starting check run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := runner.New().Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}

	format, err := reporter.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return usageError(fmt.Errorf("invalid format: %w", err))
	}

	sortBy, err := analysis.ParseSortField(flags.sortBy)
	if err != nil {
		return usageError(fmt.Errorf("invalid --sort: %w", err))
	}

	rep, err := reporter.New(reporter.Options{
		Writer:       cmd.OutOrStdout(),
		ErrorWriter:  cmd.ErrOrStderr(),
		Format:       format,
		Color:        finalCfg.Color,
		ShowContext:  !flags.noContext,
		ShowSummary:  true,
		GroupByFile:  true,
		Compact:      flags.compact,
		PerFile:      flags.perFile,
		CodeFormat:   finalCfg.CodeFormat,
		SummaryOrder: finalCfg.SummaryOrder,
		SortBy:       sortBy,
		WorkingDir:   loaded.WorkingDir,
		ToolVersion:  info.Version,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	return resultError(ExitCodeFromResult(result, flags.strict))
}

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.format, "format", string(config.FormatText),
		"output format: text, table, json, sarif, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file extensions parsed as templates")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&cfg.DesignTime, "design-time", false, "insert markers for every missing directive argument")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.perFile, "per-file", false, "output separate report for each file (table format)")
	cmd.Flags().StringVar(&flags.codeFormat, "code-format", string(config.CodeFormatCode),
		"diagnostic code format in output: code, name, or combined")
	cmd.Flags().StringVar(&flags.summaryOrder, "summary-order", string(config.SummaryOrderCodes),
		"order of tables in summary output: codes, files")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByCount),
		"row order in json and summary output: count, alpha, severity")
}
