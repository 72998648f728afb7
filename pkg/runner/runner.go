package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/fsutil"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/source"
)

// Runner parses every template under a set of paths. It logs through the
// logger carried by the run's context.
type Runner struct{}

// New creates a Runner.
func New() *Runner {
	return &Runner{}
}

// Run discovers templates under opts.Paths and parses them on a pool of
// opts.Jobs workers. Outcomes are reported in discovery order whatever order
// the workers finish in. On cancellation Run returns the outcomes gathered
// so far together with the context error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := workerCount(opts.Jobs, len(files))
	logging.FromContext(ctx).Debug("parsing files", logging.FieldFiles, len(files), logging.FieldJobs, jobs)

	outcomes := r.parseAll(ctx, files, jobs, opts.parseOptions())
	for _, outcome := range outcomes {
		// A zero Path marks a file skipped after cancellation.
		if outcome.Path != "" {
			result.accumulate(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

// workerCount bounds the requested job count by the CPU count and the
// number of files.
func workerCount(requested, files int) int {
	jobs := requested
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return max(1, min(jobs, files))
}

// parseAll fans the files out to jobs workers. Each worker writes only the
// slots of the indexes it receives.
func (r *Runner) parseAll(ctx context.Context, files []string, jobs int, opts *parser.Options) []FileOutcome {
	outcomes := make([]FileOutcome, len(files))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() == nil {
					outcomes[i] = r.parseFile(ctx, files[i], opts)
				}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

// parseFile reads and parses one template.
func (r *Runner) parseFile(ctx context.Context, path string, opts *parser.Options) FileOutcome {
	ctx = logging.WithFields(ctx, logging.FieldPath, path)
	outcome := FileOutcome{Path: path}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Info = info

	result, err := parser.Parse(ctx, source.NewDocument(path, content), opts)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Result = result

	logging.FromContext(ctx).Debug("parsed file", logging.FieldDiagnosticsTotal, len(result.Diagnostics))
	return outcome
}
