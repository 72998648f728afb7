package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/gorazor/internal/configloader"
	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

// Process exit codes. The usage, config, internal and I/O codes follow sysexits(3).
const (
	ExitSuccess       = 0
	ExitParseErrors   = 1 // error or fatal diagnostics, or unreadable files
	ExitParseWarnings = 2 // warnings under --strict
	ExitInvalidUsage  = 64
	ExitConfigError   = 65
	ExitInternalError = 70
	ExitIOError       = 74
)

// ErrParseIssuesFound reports that a command printed diagnostics serious
// enough to fail. The output already describes them.
var ErrParseIssuesFound = errors.New("parse issues found")

// errInvalidUsage marks bad flags and arguments.
var errInvalidUsage = errors.New("invalid usage")

// issuesError carries the exit code chosen for a failing parse result.
type issuesError struct {
	code int
}

func (e *issuesError) Error() string { return ErrParseIssuesFound.Error() }
func (e *issuesError) Unwrap() error { return ErrParseIssuesFound }

// ExitCodeFromResult returns the exit code for a finished run. Fatal and
// error diagnostics fail it, as do unreadable files; warnings fail it only
// when strict is set.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	counts := result.Stats.DiagnosticsBySeverity
	switch {
	case counts[diag.SeverityFatal] > 0, counts[diag.SeverityError] > 0, result.Stats.FilesErrored > 0:
		return ExitParseErrors
	case strict && counts[diag.SeverityWarning] > 0:
		return ExitParseWarnings
	default:
		return ExitSuccess
	}
}

// resultError turns an exit code into the error a command returns.
func resultError(code int) error {
	if code == ExitSuccess {
		return nil
	}
	return &issuesError{code: code}
}

// usageError marks err as a command-line mistake.
func usageError(err error) error {
	return fmt.Errorf("%w: %w", errInvalidUsage, err)
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	var (
		issues     *issuesError
		validation *configloader.ValidationError
		pathErr    *fs.PathError
	)

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &issues):
		return issues.code
	case errors.Is(err, ErrParseIssuesFound):
		return ExitParseErrors
	case errors.Is(err, errInvalidUsage):
		return ExitInvalidUsage
	case errors.As(err, &validation):
		return ExitConfigError
	case errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
