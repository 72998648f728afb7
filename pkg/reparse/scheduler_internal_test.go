package reparse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_PassOfForgottenDocumentIsNotPublished(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(8)
	t.Cleanup(d.Close)
	s := NewScheduler(context.Background(), d, Options{})
	t.Cleanup(s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("old")))
	stale, err := s.WaitForRevision(ctx, "a.gohtml", 1)
	require.NoError(t, err)

	s.mu.Lock()
	forgotten := s.docs["a.gohtml"]
	s.mu.Unlock()

	s.Forget("a.gohtml")
	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("new")))
	fresh, err := s.WaitForRevision(ctx, "a.gohtml", 1)
	require.NoError(t, err)
	require.Equal(t, "new", fresh.Result.Root.Content())

	// A pass that started before Forget reaches the dispatcher late, at the same revision.
	err = d.Run(ctx, func(ctx context.Context) error {
		return s.publish(ctx, forgotten, stale)
	})
	require.ErrorIs(t, err, errSuperseded)

	latest, ok := s.Latest("a.gohtml")
	require.True(t, ok)
	assert.Equal(t, "new", latest.Result.Root.Content())
	assert.Equal(t, fresh.PassID, latest.PassID)
}

func TestScheduler_CancelledPassIsNotPublished(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(8)
	t.Cleanup(d.Close)
	s := NewScheduler(context.Background(), d, Options{})
	t.Cleanup(s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.QueueReparse("a.gohtml", 1, []byte("x")))
	pub, err := s.WaitForRevision(ctx, "a.gohtml", 1)
	require.NoError(t, err)

	s.mu.Lock()
	owner := s.docs["a.gohtml"]
	s.mu.Unlock()

	err = d.Run(ctx, func(dispatched context.Context) error {
		passCtx, passCancel := context.WithCancel(dispatched)
		passCancel()
		return s.publish(passCtx, owner, pub)
	})
	require.ErrorIs(t, err, errSuperseded)
}
