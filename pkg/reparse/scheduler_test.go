package reparse_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/reparse"
	"github.com/yaklabco/gorazor/pkg/source"
)

const waitTimeout = 5 * time.Second

func newScheduler(t *testing.T, opts reparse.Options) (*reparse.Scheduler, *reparse.Dispatcher) {
	t.Helper()
	d := newDispatcher(t)
	s := reparse.NewScheduler(context.Background(), d, opts)
	t.Cleanup(s.Close)
	return s, d
}

func waitFor(t *testing.T, s *reparse.Scheduler, path string, revision int64) reparse.Publication {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	pub, err := s.WaitForRevision(ctx, path, revision)
	require.NoError(t, err)
	return pub
}

// recorder collects publications in order.
type recorder struct {
	mu   sync.Mutex
	pubs []reparse.Publication
}

func (r *recorder) listen(_ context.Context, pub reparse.Publication) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubs = append(r.pubs, pub)
}

func (r *recorder) revisions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.pubs))
	for _, pub := range r.pubs {
		out = append(out, pub.Revision)
	}
	return out
}

func TestScheduler_PublishesParseResult(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})
	text := "<p>@Model.Name</p>"

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte(text)))
	pub := waitFor(t, s, "a.gohtml", 1)

	assert.Equal(t, "a.gohtml", pub.Path)
	assert.Equal(t, int64(1), pub.Revision)
	assert.NotEqual(t, uuid.Nil, pub.PassID)
	require.NotNil(t, pub.Result)
	assert.Equal(t, text, pub.Result.Root.Content())
	assert.False(t, s.HasPendingChanges("a.gohtml"))

	latest, ok := s.Latest("a.gohtml")
	require.True(t, ok)
	assert.Equal(t, pub.PassID, latest.PassID)
}

func TestScheduler_SupersededPassIsNotPublished(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	parse := func(ctx context.Context, doc *source.Document) (*parser.Result, error) {
		if doc.Text() == "one" {
			close(started)
			// Ignores cancellation so the stale result reaches the publish step.
			<-release
		}
		return parser.Parse(context.Background(), doc, parser.DefaultOptions())
	}

	s, _ := newScheduler(t, reparse.Options{Parse: parse})
	rec := &recorder{}
	s.OnPublish(rec.listen)

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("one")))
	<-started

	require.NoError(t, s.QueueReparse("a.gohtml", 2, []byte("two")))
	pub := waitFor(t, s, "a.gohtml", 2)
	assert.Equal(t, int64(2), pub.Revision)

	close(release)
	s.Close()

	assert.Equal(t, []int64{2}, rec.revisions())
	latest, ok := s.Latest("a.gohtml")
	require.True(t, ok)
	assert.Equal(t, "two", latest.Result.Root.Content())
}

func TestScheduler_SupersessionCancelsPass(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	cancelled := make(chan struct{})

	parse := func(ctx context.Context, doc *source.Document) (*parser.Result, error) {
		if doc.Text() == "one" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return parser.Parse(ctx, doc, parser.DefaultOptions())
	}

	s, _ := newScheduler(t, reparse.Options{Parse: parse})

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("one")))
	<-started
	require.NoError(t, s.QueueReparse("a.gohtml", 2, []byte("two")))

	select {
	case <-cancelled:
	case <-time.After(waitTimeout):
		t.Fatal("superseded pass was not cancelled")
	}
	assert.Equal(t, int64(2), waitFor(t, s, "a.gohtml", 2).Revision)
}

func TestScheduler_CoalescesRapidEdits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	parse := func(ctx context.Context, doc *source.Document) (*parser.Result, error) {
		calls.Add(1)
		return parser.Parse(ctx, doc, parser.DefaultOptions())
	}

	s, _ := newScheduler(t, reparse.Options{Parse: parse, Debounce: 200 * time.Millisecond})

	for rev := int64(1); rev <= 3; rev++ {
		require.NoError(t, s.QueueReparse("a.gohtml", rev, []byte{byte('0' + rev)}))
	}
	assert.True(t, s.HasPendingChanges("a.gohtml"))

	pub := waitFor(t, s, "a.gohtml", 3)
	assert.Equal(t, "3", pub.Result.Root.Content())
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_IgnoresStaleRequests(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})

	require.NoError(t, s.QueueReparse("a.gohtml", 5, []byte("five")))
	require.NoError(t, s.QueueReparse("a.gohtml", 4, []byte("four")))

	pub := waitFor(t, s, "a.gohtml", 5)
	assert.Equal(t, "five", pub.Result.Root.Content())
}

func TestScheduler_DocumentsAreIndependent(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("a")))
	require.NoError(t, s.QueueReparse("b.gohtml", 1, []byte("b")))

	assert.Equal(t, "a", waitFor(t, s, "a.gohtml", 1).Result.Root.Content())
	assert.Equal(t, "b", waitFor(t, s, "b.gohtml", 1).Result.Root.Content())
}

func TestScheduler_ListenersRunOnDispatcher(t *testing.T) {
	t.Parallel()

	s, d := newScheduler(t, reparse.Options{})
	checked := make(chan error, 1)
	s.OnPublish(func(ctx context.Context, _ reparse.Publication) {
		checked <- d.Check(ctx)
	})

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("x")))
	waitFor(t, s, "a.gohtml", 1)
	require.NoError(t, <-checked)
}

func TestScheduler_HasPendingChangesUnknownPath(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})
	assert.False(t, s.HasPendingChanges("missing.gohtml"))

	_, ok := s.Latest("missing.gohtml")
	assert.False(t, ok)
}

func TestScheduler_WaitForRevisionTimesOut(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.WaitForRevision(ctx, "a.gohtml", 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_Close(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{Debounce: time.Hour})
	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("x")))

	waitErr := make(chan error, 1)
	go func() {
		_, err := s.WaitForRevision(context.Background(), "a.gohtml", 1)
		waitErr <- err
	}()

	s.Close()
	select {
	case err := <-waitErr:
		require.ErrorIs(t, err, reparse.ErrSchedulerClosed)
	case <-time.After(waitTimeout):
		t.Fatal("waiter was not released")
	}

	require.ErrorIs(t, s.QueueReparse("a.gohtml", 2, []byte("y")), reparse.ErrSchedulerClosed)
}

func TestScheduler_Forget(t *testing.T) {
	t.Parallel()

	s, _ := newScheduler(t, reparse.Options{})
	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("x")))
	waitFor(t, s, "a.gohtml", 1)

	s.Forget("a.gohtml")
	_, ok := s.Latest("a.gohtml")
	assert.False(t, ok)
}
