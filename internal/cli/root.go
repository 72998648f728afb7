// Package cli provides the Cobra command structure for gorazor.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/configloader"
	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/config"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gorazor command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gorazor",
		Short: "A fault-tolerant parser for templates mixing markup and Go code",
		Long: `gorazor parses templates that interleave HTML markup with Go code introduced by
the @ transition character.

Every input produces a complete syntax tree whose text reproduces the source
exactly, together with coded diagnostics for malformed regions. gorazor can
print trees, batch-check whole projects, document its directives and serve
results to editors over the Language Server Protocol.

` + environmentHelp(),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", string(config.ColorAuto),
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newCheckCommand(info))
	rootCmd.AddCommand(newDirectivesCommand())
	rootCmd.AddCommand(newLSPCommand(info))
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(config.ColorMode(color), os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// environmentHelp lists the configuration environment variables for the root help text.
func environmentHelp() string {
	vars := configloader.ListEnvVars()
	width := 0
	for _, v := range vars {
		width = max(width, len(v.Name))
	}

	var builder strings.Builder
	builder.WriteString("Environment:\n")
	for _, v := range vars {
		fmt.Fprintf(&builder, "  %-*s  %s\n", width, v.Name, v.Description)
	}
	return builder.String()
}
