package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/gorazor/pkg/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Format != config.FormatText {
		t.Errorf("expected format %q, got %q", config.FormatText, result.Config.Format)
	}
	if result.Config.Debounce != config.DefaultDebounce {
		t.Errorf("expected debounce %q, got %q", config.DefaultDebounce, result.Config.Debounce)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, ".gorazor.yml", `
design_time: true
features:
  html_comments: false
directives:
  - name: title
    description: Sets the page title.
    kind: single-line
    usage: file-scoped-single
    tokens:
      - kind: string
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !result.Config.DesignTime {
		t.Error("expected design_time from project config")
	}
	if result.Config.Features.HTMLComments == nil || *result.Config.Features.HTMLComments {
		t.Error("expected features.html_comments false")
	}
	if len(result.Config.Directives) != 1 || result.Config.Directives[0].Name != "title" {
		t.Errorf("expected custom directive title, got %+v", result.Config.Directives)
	}
	if result.Paths.Project != configPath {
		t.Errorf("expected project path %q, got %q", configPath, result.Paths.Project)
	}
	if len(result.LoadedFrom) != 1 || result.LoadedFrom[0] != configPath {
		t.Errorf("expected LoadedFrom [%s], got %v", configPath, result.LoadedFrom)
	}
}

func TestLoad_ProjectConfigFromSubdirectory(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "jobs: 3\n")

	sub := filepath.Join(tmpDir, "views", "shared")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(sub))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Jobs != 3 {
		t.Errorf("expected jobs 3, got %d", result.Config.Jobs)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "format: json\njobs: 2\n")
	customPath := writeConfig(t, tmpDir, "custom-config.yml", "format: sarif\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Format != config.FormatSARIF {
		t.Errorf("expected format %q, got %q", config.FormatSARIF, result.Config.Format)
	}
	if result.Config.Jobs != 2 {
		t.Errorf("expected jobs 2 from project config, got %d", result.Config.Jobs)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "format: table\njobs: 2\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		Format:     config.FormatJSON,
		Jobs:       8,
		DesignTime: true,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected format %q (CLI override), got %q", config.FormatJSON, result.Config.Format)
	}
	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8 (CLI override), got %d", result.Config.Jobs)
	}
	if !result.Config.DesignTime {
		t.Error("expected design_time true (CLI override)")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "invalid format", content: "format: xml\n", field: "format"},
		{name: "invalid debounce", content: "debounce: soon\n", field: "debounce"},
		{name: "bad extension", content: "extensions: [cshtml]\n", field: "extensions[0]"},
		{
			name:    "redefined builtin",
			content: "directives:\n  - name: model\n    kind: single-line\n    usage: unrestricted\n",
			field:   "directives[0].name",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			path := writeConfig(t, tmpDir, ".gorazor.yml", testCase.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			if err == nil {
				t.Fatal("expected validation error")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if verr.Field != testCase.field {
				t.Errorf("expected field %q, got %q", testCase.field, verr.Field)
			}
			if verr.FilePath != path {
				t.Errorf("expected file path %q, got %q", path, verr.FilePath)
			}
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "flavor: gfm\n")

	if _, err := Load(context.Background(), isolated(tmpDir)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "directives:\n  - name: title\n    kind: single-line\n    usage: unrestricted\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, isolated(t.TempDir())); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoad_Environment(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ".gorazor.yml", "format: table\n")

	t.Setenv("GORAZOR_FORMAT", "json")
	t.Setenv("GORAZOR_FEATURES_MARKUP_IN_CODE", "false")
	t.Setenv("GORAZOR_EXTENSIONS", ".cshtml, .tmpl")

	opts := isolated(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected env to override project format, got %q", result.Config.Format)
	}
	if result.Config.Features.MarkupInCode == nil || *result.Config.Features.MarkupInCode {
		t.Error("expected features.markup_in_code false from env")
	}
	if len(result.Config.Extensions) != 2 || result.Config.Extensions[1] != ".tmpl" {
		t.Errorf("unexpected extensions %v", result.Config.Extensions)
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoadFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("GORAZOR_JOBS", "many")

	if err := LoadFromEnv(config.NewConfig()); err == nil {
		t.Fatal("expected error for invalid integer")
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("expected %d vars, got %d", len(envMappings), len(vars))
	}
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name >= vars[i].Name {
			t.Errorf("vars not sorted: %s >= %s", vars[i-1].Name, vars[i].Name)
		}
	}
	if vars[0].Name != "GORAZOR_COLOR" {
		t.Errorf("first env var = %q, want GORAZOR_COLOR", vars[0].Name)
	}
}
