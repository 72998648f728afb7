package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/reparse"
	"github.com/yaklabco/gorazor/pkg/watch"
)

const eventually = 5 * time.Second

func isTemplate(path string) bool {
	return strings.HasSuffix(path, ".gohtml")
}

func setup(t *testing.T, files map[string]string) (string, *reparse.Scheduler, *watch.Watcher) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	dispatcher := reparse.NewDispatcher(8)
	scheduler := reparse.NewScheduler(context.Background(), dispatcher, reparse.Options{})

	w, err := watch.New(context.Background(), dir, scheduler, watch.Options{Match: isTemplate})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, w.Close())
		scheduler.Close()
		dispatcher.Close()
	})
	return w.Root(), scheduler, w
}

func latestContent(s *reparse.Scheduler, path string) string {
	pub, ok := s.Latest(path)
	if !ok {
		return ""
	}
	return pub.Result.Root.Content()
}

func TestWatcher_QueuesExistingFiles(t *testing.T) {
	t.Parallel()

	root, scheduler, w := setup(t, map[string]string{
		"a.gohtml":       "<p>@a</p>",
		"notes.txt":      "ignored",
		".git/x.gohtml":  "hidden",
		"views/b.gohtml": "@b",
	})

	a := filepath.Join(root, "a.gohtml")
	b := filepath.Join(root, "views", "b.gohtml")
	assert.ElementsMatch(t, []string{a, b}, w.Files())

	ctx, cancel := context.WithTimeout(context.Background(), eventually)
	defer cancel()

	pub, err := scheduler.WaitForRevision(ctx, a, 1)
	require.NoError(t, err)
	assert.Equal(t, "<p>@a</p>", pub.Result.Root.Content())

	pub, err = scheduler.WaitForRevision(ctx, b, 1)
	require.NoError(t, err)
	assert.Equal(t, "@b", pub.Result.Root.Content())
}

func TestWatcher_ReparsesOnWrite(t *testing.T) {
	t.Parallel()

	root, scheduler, w := setup(t, map[string]string{"a.gohtml": "one"})
	path := filepath.Join(root, "a.gohtml")

	require.Eventually(t, func() bool {
		return latestContent(scheduler, path) == "one"
	}, eventually, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("two!"), 0o600))

	require.Eventually(t, func() bool {
		return latestContent(scheduler, path) == "two!"
	}, eventually, 10*time.Millisecond)
	assert.GreaterOrEqual(t, w.Revision(path), int64(2))
}

func TestWatcher_UnchangedWriteIsIgnored(t *testing.T) {
	t.Parallel()

	root, scheduler, w := setup(t, map[string]string{"a.gohtml": "same"})
	path := filepath.Join(root, "a.gohtml")

	require.Eventually(t, func() bool {
		return latestContent(scheduler, path) == "same"
	}, eventually, 10*time.Millisecond)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o600))
	require.NoError(t, os.Chtimes(path, later, later))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int64(1), w.Revision(path))
}

func TestWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	root, scheduler, _ := setup(t, nil)

	dir := filepath.Join(root, "partials")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "nav.gohtml")
	require.NoError(t, os.WriteFile(path, []byte("<nav></nav>"), 0o600))

	require.Eventually(t, func() bool {
		return latestContent(scheduler, path) == "<nav></nav>"
	}, eventually, 10*time.Millisecond)
}

func TestWatcher_ForgetsRemovedFiles(t *testing.T) {
	t.Parallel()

	root, scheduler, w := setup(t, map[string]string{"a.gohtml": "x"})
	path := filepath.Join(root, "a.gohtml")

	require.Eventually(t, func() bool {
		_, ok := scheduler.Latest(path)
		return ok
	}, eventually, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		_, ok := scheduler.Latest(path)
		return !ok && w.Revision(path) == 0
	}, eventually, 10*time.Millisecond)
}

func TestWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	dispatcher := reparse.NewDispatcher(0)
	scheduler := reparse.NewScheduler(context.Background(), dispatcher, reparse.Options{})
	t.Cleanup(func() {
		scheduler.Close()
		dispatcher.Close()
	})

	_, err := watch.New(context.Background(), filepath.Join(t.TempDir(), "missing"), scheduler, watch.Options{})
	require.Error(t, err)
}
