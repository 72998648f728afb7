package reparse_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gorazor/pkg/reparse"
)

func newDispatcher(t *testing.T) *reparse.Dispatcher {
	t.Helper()
	d := reparse.NewDispatcher(8)
	t.Cleanup(d.Close)
	return d
}

func TestDispatcher_Check(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)
	ctx := context.Background()

	require.ErrorIs(t, d.Check(ctx), reparse.ErrNotOnDispatcher)

	err := d.Run(ctx, func(ctx context.Context) error {
		return d.Check(ctx)
	})
	require.NoError(t, err)

	other := newDispatcher(t)
	err = other.Run(ctx, func(ctx context.Context) error {
		return d.Check(ctx)
	})
	require.ErrorIs(t, err, reparse.ErrNotOnDispatcher)
}

func TestDispatcher_RunReturnsTaskError(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)
	boom := errors.New("boom")

	err := d.Run(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestDispatcher_RunRecoversPanic(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	err := d.Run(context.Background(), func(context.Context) error { panic("bad task") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad task")

	// The worker survives.
	require.NoError(t, d.Run(context.Background(), func(context.Context) error { return nil }))
}

func TestDispatcher_NestedRunIsInline(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	var order []string
	err := d.Run(context.Background(), func(ctx context.Context) error {
		order = append(order, "outer")
		return d.Run(ctx, func(context.Context) error {
			order = append(order, "inner")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestDispatcher_TasksRunSequentially(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)

	var (
		wg      sync.WaitGroup
		running int
		overlap bool
		count   int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Run(context.Background(), func(context.Context) error {
				running++
				if running > 1 {
					overlap = true
				}
				count++
				running--
				return nil
			})
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Equal(t, 50, count)
}

func TestDispatcher_Post(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)
	done := make(chan error, 1)

	require.NoError(t, d.Post(context.Background(), func(ctx context.Context) {
		done <- d.Check(ctx)
	}))
	require.NoError(t, <-done)
}

func TestDispatcher_Close(t *testing.T) {
	t.Parallel()

	d := reparse.NewDispatcher(0)
	d.Close()
	d.Close()

	err := d.Run(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, reparse.ErrDispatcherClosed)
	require.ErrorIs(t, d.Post(context.Background(), func(context.Context) {}), reparse.ErrDispatcherClosed)
}

func TestDispatcher_RunCancelled(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := d.Run(ctx, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
