// Package main is the entry point for the gorazor CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/gorazor/internal/cli"
	"github.com/yaklabco/gorazor/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	err := rootCmd.Execute()
	// Parse issues are already in the report.
	if err != nil && !errors.Is(err, cli.ErrParseIssuesFound) {
		logging.Default().Error("command failed", logging.FieldError, err)
	}
	return cli.ExitCode(err)
}
