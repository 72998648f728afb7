package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/configloader"
	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/config"
)

// loadedConfig is the resolved configuration of one command invocation.
type loadedConfig struct {
	Config     *config.Config
	WorkingDir string
}

// commandContext returns the command's context carrying the default logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logging.Default())
}

// loadConfig resolves the layered configuration with cliCfg on top. The color flag of the
// root command is applied when it was set explicitly.
func loadConfig(ctx context.Context, cmd *cobra.Command, cliCfg *config.Config) (*loadedConfig, error) {
	logger := logging.FromContext(ctx)

	if cliCfg == nil {
		cliCfg = &config.Config{}
	}
	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Color = config.ColorMode(color)
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return &loadedConfig{Config: loadResult.Config, WorkingDir: workDir}, nil
}
