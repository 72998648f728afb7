package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/lsp"
)

func newLSPCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Serve the Language Server Protocol over stdio",
		Long: `Run a language server on standard input and output.

Open documents are reparsed as they are edited and their diagnostics are
pushed to the editor. Hover, document symbols and folding ranges are
answered from the newest parse of the current revision. Logs go to
standard error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			loaded, err := loadConfig(ctx, cmd, nil)
			if err != nil {
				return err
			}
			parseOpts, err := loaded.Config.ParseOptions()
			if err != nil {
				return fmt.Errorf("configure parser: %w", err)
			}
			debounce, err := loaded.Config.DebounceDuration()
			if err != nil {
				return err
			}

			logging.FromContext(ctx).Debug("starting language server",
				logging.FieldVersion, info.Version,
				logging.FieldDebounce, debounce,
			)

			server := lsp.NewServer(ctx, lsp.Options{
				Version:      info.Version,
				Debounce:     debounce,
				ParseOptions: parseOpts,
			})
			return server.RunStdio()
		},
	}
}
