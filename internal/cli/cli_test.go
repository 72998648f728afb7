package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yaklabco/gorazor/internal/cli"
)

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}

	cmd := cli.NewRootCommand(info)

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "gorazor" {
		t.Errorf("expected Use to be 'gorazor', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}

	if !strings.Contains(cmd.Long, "GORAZOR_JOBS") {
		t.Error("expected Long description to list the environment variables")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	expectedSubcommands := []string{"parse", "check", "directives", "lsp", "watch", "init", "version"}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		flags   []string
	}{
		{
			command: "check",
			flags: []string{
				"format", "jobs", "ext", "ignore", "design-time", "strict",
				"no-context", "compact", "per-file", "code-format", "summary-order", "sort",
			},
		},
		{
			command: "parse",
			flags:   []string{"format", "positions", "hide-tokens", "no-context", "design-time", "leading-directives"},
		},
		{
			command: "directives",
			flags:   []string{"format", "output", "title", "standalone"},
		},
		{
			command: "init",
			flags:   []string{"force", "full", "format", "output"},
		},
		{
			command: "watch",
			flags:   []string{"no-context"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.command, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(cli.BuildInfo{})
			subCmd, _, err := cmd.Find([]string{testCase.command})
			if err != nil {
				t.Fatalf("%s command not found: %v", testCase.command, err)
			}

			for _, flagName := range testCase.flags {
				if subCmd.Flags().Lookup(flagName) == nil {
					t.Errorf("expected flag --%s on %s", flagName, testCase.command)
				}
			}
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	expectedFlags := []string{"debug", "config", "color"}

	for _, flagName := range expectedFlags {
		flag := cmd.PersistentFlags().Lookup(flagName)
		if flag == nil {
			t.Errorf("expected global flag --%s to exist", flagName)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	info := cli.BuildInfo{
		Version: "1.0.0",
		Commit:  "abc123",
		Date:    "2024-01-01",
	}

	cmd := cli.NewRootCommand(info)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"gorazor", "1.0.0", "abc123", "2024-01-01"} {
		if !bytes.Contains([]byte(output), []byte(want)) {
			t.Errorf("expected version output to contain %q, got %q", want, output)
		}
	}
}

func TestCheckCommandAcceptsArbitraryArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	checkCmd, _, err := cmd.Find([]string{"check"})
	if err != nil {
		t.Fatalf("check command not found: %v", err)
	}

	if checkCmd.Args == nil {
		t.Error("expected Args validator to be set")
	}
}

func TestParseCommandRequiresOneFile(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"parse"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected parse without a file to fail")
	}
}

func TestExitCodeFromResult_Nil(t *testing.T) {
	t.Parallel()

	if got := cli.ExitCodeFromResult(nil, true); got != cli.ExitSuccess {
		t.Errorf("expected ExitSuccess for nil result, got %d", got)
	}
}
