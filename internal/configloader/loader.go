// Package configloader finds, reads, merges and validates gorazor
// configuration. Files are layered system, user, project and explicit, then
// GORAZOR_ environment variables, then command-line flags.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/gorazor/pkg/config"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir starts the upward search for a project config. Empty means
	// the process working directory.
	WorkingDir string

	// ExplicitPath is the --config file, applied above the project config.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds the values set by flags. It is merged last.
	CLIConfig *config.Config
}

// LoadResult is the merged configuration and where it came from.
type LoadResult struct {
	Config *config.Config
	Paths  *ConfigPaths

	// LoadedFrom lists the files applied, lowest precedence first.
	LoadedFrom []string

	// Warnings are validation findings that did not stop loading.
	Warnings []string
}

// configLayer is one candidate config file.
type configLayer struct {
	name string
	path string
}

// fileLayers returns the config files to apply, lowest precedence first,
// leaving out the ones opts disables or discovery did not find.
func fileLayers(paths *ConfigPaths, opts LoadOptions) []configLayer {
	candidates := []struct {
		configLayer
		skip bool
	}{
		{configLayer{"system", paths.System}, opts.IgnoreSystemConfig},
		{configLayer{"user", paths.User}, opts.IgnoreUserConfig},
		{configLayer{"project", paths.Project}, opts.IgnoreProjectConfig},
		{configLayer{"explicit", paths.Explicit}, false},
	}

	var layers []configLayer
	for _, c := range candidates {
		if !c.skip && c.path != "" {
			layers = append(layers, c.configLayer)
		}
	}
	return layers
}

// Load resolves the effective configuration. Later sources override earlier
// ones: defaults, system, user, project, explicit file, environment, flags.
// The first validation error of any file, or of the merged result, is
// returned as a *ValidationError.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	for _, layer := range fileLayers(paths, opts) {
		fileCfg, err := result.readLayer(layer)
		if err != nil {
			return nil, err
		}
		cfg = merge(cfg, fileCfg)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	if validation := Validate(cfg); !validation.Valid() {
		return nil, &validation.Errors[0]
	}

	result.Config = cfg
	return result, nil
}

// readLayer reads and validates one config file, recording its warnings.
func (r *LoadResult) readLayer(layer configLayer) (*config.Config, error) {
	data, err := os.ReadFile(layer.path)
	if err != nil {
		return nil, fmt.Errorf("load %s config: read file: %w", layer.name, err)
	}

	// JSON configs are valid YAML, so one decoder serves both.
	cfg, err := config.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("load %s config: %s: %w", layer.name, layer.path, err)
	}

	validation := ValidateWithFile(cfg, layer.path)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, warning := range validation.Warnings {
		r.Warnings = append(r.Warnings, warning.Error())
	}

	r.LoadedFrom = append(r.LoadedFrom, layer.path)
	return cfg, nil
}
