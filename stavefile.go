//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":    Build,
	"t":    Test.Default,
	"l":    Lint.Default,
	"c":    Check,
	"i":    Install,
	"fmt":  Lint.Fmt,
	"bp":   Bench.Parser,
	"fz":   Fuzz.Parser,
	"docs": Docs.Directives,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
	Fuzz  st.Namespace
	Docs  st.Namespace
)

// sources are the inputs of the gorazor binary.
//
//nolint:gochecknoglobals // Read-only target inputs.
var sources = []string{"cmd/", "pkg/", "internal/", "go.mod", "go.sum"}

// Build compiles bin/gorazor with version info when its sources changed.
func Build() error {
	rebuild, err := target.Dir("bin/gorazor", sources...)
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println("bin/gorazor is up to date")
		return nil
	}
	fmt.Println("Building gorazor...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", "bin/gorazor", "./cmd/gorazor")
}

// Check formats, lints and tests, in that order.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build and coverage artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs gorazor to $GOBIN or $GOPATH/bin.
func Install() error {
	fmt.Println("Installing gorazor...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/gorazor")
}

// Coverage writes coverage.html from a full test run.
func Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Default runs all tests through gotestsum with the race detector and coverage.
func (Test) Default() error {
	fmt.Println("Running tests...")
	return gotestsum("pkgname-and-test-fails", "-race", "./...", "-coverprofile=coverage.out", "-covermode=atomic")
}

// Verbose runs all tests with standard-verbose output.
func (Test) Verbose() error {
	fmt.Println("Running tests (verbose)...")
	return gotestsum("standard-verbose", "-v", "-race", "./...")
}

// Parser runs only the parser, position and reparse tests.
func (Test) Parser() error {
	return gotestsum("testname", "-race", "./pkg/source/...", "./pkg/parser/...", "./pkg/position/...", "./pkg/reparse/...")
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when any file is not gofmt-clean.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt check failed: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate runs every check CI runs.
func (CI) Gate() error {
	st.SerialDeps(Lint.FmtCheck, Lint.Vet, Lint.CI, Build, Test.Default, CI.ModTidy, Fuzz.Smoke)
	fmt.Println("All CI gate checks passed")
	return nil
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	before, err := readModFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readModFiles()
	if err != nil {
		return err
	}
	if before != after {
		return errors.New("go.mod or go.sum changed after 'go mod tidy'; commit the changes")
	}
	return nil
}

// Default runs every benchmark.
func (Bench) Default() error {
	return gotestsum("pkgname-and-test-fails", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Parser runs the parser and language detection benchmarks.
func (Bench) Parser() error {
	fmt.Println("Running parser benchmarks...")
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./pkg/parser/...", "./pkg/langdetect/...")
}

// Parser fuzzes the parser for FUZZTIME (default 1m).
func (Fuzz) Parser() error {
	return fuzz("FuzzParse", "./pkg/parser", cmp.Or(os.Getenv("FUZZTIME"), "1m"))
}

// Smoke runs each fuzz target briefly, as CI does.
func (Fuzz) Smoke() error {
	if err := fuzz("FuzzParse", "./pkg/parser", "10s"); err != nil {
		return err
	}
	return fuzz("FuzzWriteAtomicReadFile", "./pkg/fsutil", "10s")
}

// Directives regenerates docs/directives.md when the directive sources changed.
func (Docs) Directives() error {
	regen, err := target.Dir("docs/directives.md", "pkg/directive/", "internal/docgen/")
	if err != nil {
		return err
	}
	if !regen {
		fmt.Println("docs/directives.md is up to date")
		return nil
	}
	if err := os.MkdirAll("docs", 0o755); err != nil {
		return fmt.Errorf("create docs directory: %w", err)
	}
	fmt.Println("Generating directive reference...")
	return sh.RunV("go", "run", "./cmd/gorazor", "directives", "--format", "markdown", "-o", "docs/directives.md")
}

func gotestsum(format string, args ...string) error {
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	cmdArgs := append([]string{"tool", "gotestsum", "-f", format, "--", "-p", nCores, "-parallel", nCores}, args...)
	return sh.RunV("go", cmdArgs...)
}

func fuzz(name, pkg, duration string) error {
	fmt.Printf("Fuzzing %s in %s for %s...\n", name, pkg, duration)
	return sh.RunV("go", "test", "-run=^$", "-fuzz=^"+name+"$", "-fuzztime="+duration, pkg)
}

func readModFiles() (string, error) {
	var builder strings.Builder
	for _, name := range []string{"go.mod", "go.sum"} {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		builder.Write(data)
	}
	return builder.String(), nil
}

// gitOutput runs a git command and returns trimmed stdout, or empty on error.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags returns the linker flags for version injection.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
