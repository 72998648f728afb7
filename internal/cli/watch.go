package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/reparse"
	"github.com/yaklabco/gorazor/pkg/runner"
	"github.com/yaklabco/gorazor/pkg/watch"
)

// watchQueueSize bounds the work waiting on the publishing worker.
const watchQueueSize = 64

type watchFlags struct {
	noContext bool
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Reparse templates as they change on disk",
		Long: `Watch a directory tree and reparse every template whenever it is written.

Each completed parse prints the file's diagnostics, or a single line when the
file parsed cleanly. Rapid successive writes are coalesced using the configured
debounce. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in diagnostics")

	return cmd
}

func runWatch(cmd *cobra.Command, dir string, flags *watchFlags) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.FromContext(ctx)

	loaded, err := loadConfig(ctx, cmd, nil)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	parseOpts, err := cfg.ParseOptions()
	if err != nil {
		return fmt.Errorf("configure parser: %w", err)
	}
	debounce, err := cfg.DebounceDuration()
	if err != nil {
		return err
	}

	dispatcher := reparse.NewDispatcher(watchQueueSize)
	defer dispatcher.Close()
	scheduler := reparse.NewScheduler(ctx, dispatcher, reparse.Options{
		Debounce:     debounce,
		ParseOptions: parseOpts,
	})
	defer scheduler.Close()

	out := cmd.OutOrStdout()
	styles := pretty.NewStylesFor(cfg.Color, out)

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	scheduler.OnPublish(func(_ context.Context, pub reparse.Publication) {
		display := pub.Path
		if rel, err := filepath.Rel(root, pub.Path); err == nil {
			display = rel
		}
		if err := writePublication(out, styles, display, pub, !flags.noContext); err != nil {
			logger.Warn("write parse result", logging.FieldPath, display, logging.FieldError, err)
		}
	})

	matcher, err := runner.NewMatcher(runner.Options{
		WorkingDir:   root,
		Extensions:   cfg.Extensions,
		ExcludeGlobs: cfg.Ignore,
	})
	if err != nil {
		return err
	}
	watcher, err := watch.New(ctx, root, scheduler, watch.Options{
		Match:   matcher.MatchFile,
		SkipDir: matcher.SkipDir,
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("close watcher", logging.FieldError, err)
		}
	}()

	logger.Info("watching for changes",
		logging.FieldPath, watcher.Root(),
		logging.FieldFiles, len(watcher.Files()),
		logging.FieldDebounce, debounce,
	)

	<-ctx.Done()
	logger.Debug("stopping watcher")
	return nil
}

// writePublication prints one completed parse: its diagnostics, or a clean line.
func writePublication(out io.Writer, styles *pretty.Styles, display string, pub reparse.Publication, showContext bool) error {
	outcome := runner.FileOutcome{Path: display, Result: pub.Result}
	located := outcome.Located()

	if len(located) == 0 {
		_, err := fmt.Fprintf(out, "%s %s\n",
			styles.FilePath.Render(display),
			styles.Success.Render(fmt.Sprintf("ok (revision %d, %s)", pub.Revision, pub.Duration.Round(time.Microsecond))),
		)
		return err
	}

	var builder strings.Builder
	builder.WriteString(styles.FormatFileHeader(display, len(located)) + "\n")
	for _, loc := range located {
		builder.WriteString(styles.FormatDiagnostic(display, loc, showContext, outcome.SourceLine(loc.Line())))
	}
	_, err := io.WriteString(out, builder.String())
	return err
}
