// Package watch reparses template files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/fsutil"
	"github.com/yaklabco/gorazor/pkg/reparse"
)

// Options configures a Watcher.
type Options struct {
	// Match selects the files to parse. Nil matches every regular file.
	Match func(path string) bool

	// SkipDir reports directories that are not watched. Nil skips hidden directories.
	SkipDir func(path string) bool
}

// Watcher feeds file contents under a root directory to a reparse scheduler. Every write that
// changes a matching file queues a new revision; removed files are forgotten.
type Watcher struct {
	root      string
	opts      Options
	scheduler *reparse.Scheduler
	watcher   *fsnotify.Watcher

	mu        sync.Mutex
	revisions map[string]int64
	infos     map[string]*fsutil.FileInfo
	files     []string

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New watches root recursively, queues every matching file once and starts handling events.
// ctx supplies the logger and stops the watcher when cancelled.
func New(ctx context.Context, root string, scheduler *reparse.Scheduler, opts Options) (*Watcher, error) {
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if opts.SkipDir == nil {
		opts.SkipDir = isHidden
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:      absRoot,
		opts:      opts,
		scheduler: scheduler,
		watcher:   watcher,
		revisions: make(map[string]int64),
		infos:     make(map[string]*fsutil.FileInfo),
		done:      make(chan struct{}),
	}

	if err := w.addTree(ctx, absRoot); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Files returns the matching files found when the watcher started.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.files)
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// addTree watches dir and its subdirectories and queues the matching files in them.
func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if path != dir && w.opts.SkipDir(path) {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}

		if entry.Type().IsRegular() && w.opts.Match(path) {
			w.mu.Lock()
			w.files = append(w.files, path)
			w.mu.Unlock()
			w.queue(ctx, path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	logger := logging.FromContext(ctx)

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", logging.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	logger := logging.FromContext(ctx)
	path := filepath.Clean(event.Name)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		_, known := w.revisions[path]
		delete(w.revisions, path)
		delete(w.infos, path)
		w.mu.Unlock()

		if known {
			w.scheduler.Forget(path)
			logger.Debug("forgot removed file", logging.FieldPath, path, logging.FieldEvent, event.Op.String())
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) && !w.opts.SkipDir(path) {
				if err := w.addTree(ctx, path); err != nil {
					logger.Warn("watch new directory", logging.FieldPath, path, logging.FieldError, err)
				}
			}
			return
		}
		if info.Mode().IsRegular() && w.opts.Match(path) {
			w.queue(ctx, path)
		}
	}
}

// queue reads path and requests a parse of it as the next revision. Writes that leave the
// content as it was last read queue nothing.
func (w *Watcher) queue(ctx context.Context, path string) {
	logger := logging.FromContext(ctx)

	w.mu.Lock()
	prev := w.infos[path]
	w.mu.Unlock()

	var (
		content []byte
		info    *fsutil.FileInfo
		err     error
	)
	if prev == nil {
		content, info, err = fsutil.ReadFile(ctx, path)
	} else {
		var changed bool
		content, info, changed, err = fsutil.Reread(ctx, prev)
		if err == nil && !changed {
			w.mu.Lock()
			w.infos[path] = info
			w.mu.Unlock()
			return
		}
	}
	if err != nil {
		logger.Warn("read changed file", logging.FieldPath, path, logging.FieldError, err)
		return
	}

	w.mu.Lock()
	w.infos[path] = info
	w.revisions[path]++
	revision := w.revisions[path]
	w.mu.Unlock()

	if err := w.scheduler.QueueReparse(path, revision, content); err != nil && !errors.Is(err, reparse.ErrSchedulerClosed) {
		logger.Warn("queue reparse", logging.FieldPath, path, logging.FieldError, err)
		return
	}
	logger.Debug("queued reparse", logging.FieldPath, path, logging.FieldRevision, revision)
}

// Revision returns the last revision queued for path.
func (w *Watcher) Revision(path string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revisions[path]
}

func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
