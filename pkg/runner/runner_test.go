package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/runner"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup write: %v", err)
	}
	return path
}

func TestRunner_Run_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.FilesDiscovered != 0 {
		t.Errorf("FilesDiscovered = %d, want 0", result.Stats.FilesDiscovered)
	}
	if len(result.Files) != 0 {
		t.Errorf("len(Files) = %d, want 0", len(result.Files))
	}
	if result.HasIssues() || result.HasFailures() {
		t.Error("empty run should have no issues")
	}
}

func TestRunner_Run_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeTemplate(t, dir, "index.cshtml", "@model Page\n<h1>@Model.Title</h1>\n")

	result, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(result.Files))
	}

	outcome := result.Files[0]
	if outcome.Path != path {
		t.Errorf("Path = %s, want %s", outcome.Path, path)
	}
	if outcome.Error != nil {
		t.Fatalf("unexpected error: %v", outcome.Error)
	}
	if outcome.Info == nil || outcome.Info.Path != path {
		t.Errorf("Info not populated: %+v", outcome.Info)
	}
	if got := outcome.Result.Root.Content(); got != "@model Page\n<h1>@Model.Title</h1>\n" {
		t.Errorf("root content = %q", got)
	}
	if !reflect.DeepEqual(outcome.Result.SeenDirectives, []string{"model"}) {
		t.Errorf("SeenDirectives = %v", outcome.Result.SeenDirectives)
	}
	if result.Stats.FilesProcessed != 1 || result.Stats.DiagnosticsTotal != 0 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
}

func TestRunner_Run_WithDiagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "clean.cshtml", "<p>ok</p>\n")
	writeTemplate(t, dir, "stray.cshtml", "a</span>b")
	writeTemplate(t, dir, "broken.cshtml", "@{ x")

	result, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.FilesProcessed != 3 {
		t.Errorf("FilesProcessed = %d, want 3", result.Stats.FilesProcessed)
	}
	if result.Stats.FilesWithIssues != 2 {
		t.Errorf("FilesWithIssues = %d, want 2", result.Stats.FilesWithIssues)
	}
	if result.Stats.DiagnosticsByCode[diag.CodeUnexpectedEndTag] != 1 {
		t.Errorf("expected one %s, got %v", diag.CodeUnexpectedEndTag, result.Stats.DiagnosticsByCode)
	}
	if result.Stats.DiagnosticsByCode[diag.CodeMissingCloseBrace] != 1 {
		t.Errorf("expected one %s, got %v", diag.CodeMissingCloseBrace, result.Stats.DiagnosticsByCode)
	}
	if result.Stats.DiagnosticsBySeverity[diag.SeverityWarning] != 1 {
		t.Errorf("expected one warning, got %v", result.Stats.DiagnosticsBySeverity)
	}
	if !result.HasIssues() || !result.HasFailures() {
		t.Error("expected issues and failures")
	}

	// Ordered by path.
	names := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		names = append(names, filepath.Base(f.Path))
	}
	if !reflect.DeepEqual(names, []string{"broken.cshtml", "clean.cshtml", "stray.cshtml"}) {
		t.Errorf("files out of order: %v", names)
	}
}

func TestRunner_Run_WarningsAreNotFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "stray.cshtml", "a</span>b")

	result, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.HasIssues() {
		t.Error("expected issues")
	}
	if result.HasFailures() {
		t.Error("warnings alone should not fail the run")
	}
}

func TestRunner_Run_ParseOptions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "page.cshtml", "<!-- note -->")

	opts := parser.DefaultOptions()
	opts.Features.AllowHTMLComments = false

	result, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir, Parse: opts})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Files[0].Result.Options.Features.AllowHTMLComments {
		t.Error("parse did not use the supplied options")
	}
}

func TestRunner_Run_SerialVsParallelConsistency(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for i, body := range []string{"<p>@a</p>", "@{ x", "a</b>", "@if (x) { <i>y</i> }", "@section S { <p/> }"} {
		writeTemplate(t, dir, filepath.Join("views", string(rune('a'+i))+".cshtml"), body)
	}

	serial, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 1})
	if err != nil {
		t.Fatalf("serial Run() error = %v", err)
	}
	parallel, err := runner.New().Run(context.Background(), runner.Options{WorkingDir: dir, Jobs: 8})
	if err != nil {
		t.Fatalf("parallel Run() error = %v", err)
	}

	if len(serial.Files) != len(parallel.Files) {
		t.Fatalf("file counts differ: %d vs %d", len(serial.Files), len(parallel.Files))
	}
	for i := range serial.Files {
		if serial.Files[i].Path != parallel.Files[i].Path {
			t.Errorf("file[%d] path differs: %s vs %s", i, serial.Files[i].Path, parallel.Files[i].Path)
		}
		if !reflect.DeepEqual(serial.Files[i].Diagnostics(), parallel.Files[i].Diagnostics()) {
			t.Errorf("file[%d] diagnostics differ", i)
		}
	}
	if !reflect.DeepEqual(serial.Stats, parallel.Stats) {
		t.Errorf("stats differ: %+v vs %+v", serial.Stats, parallel.Stats)
	}
}

func TestRunner_Run_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemplate(t, dir, "index.cshtml", "<p/>")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.New().Run(ctx, runner.Options{WorkingDir: dir}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestResult_NilSafety(t *testing.T) {
	t.Parallel()

	var result *runner.Result
	if result.HasFailures() || result.HasIssues() {
		t.Error("nil result should report nothing")
	}

	var outcome runner.FileOutcome
	if outcome.Diagnostics() != nil {
		t.Error("outcome without result should have no diagnostics")
	}
}
