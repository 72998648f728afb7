package reparse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/source"
)

// ErrSchedulerClosed is returned when queueing work on a closed scheduler.
var ErrSchedulerClosed = errors.New("scheduler closed")

// DefaultDebounce is how long the scheduler waits for further edits before parsing.
const DefaultDebounce = 50 * time.Millisecond

// ParseFunc parses one document revision.
type ParseFunc func(ctx context.Context, doc *source.Document) (*parser.Result, error)

// Publication is a completed parse pass that became the latest result for a document.
type Publication struct {
	Path     string
	Revision int64
	PassID   uuid.UUID
	Result   *parser.Result
	Duration time.Duration
}

// Listener receives publications on the dispatcher worker.
type Listener func(ctx context.Context, pub Publication)

// Options configures a Scheduler.
type Options struct {
	// Debounce is the quiet period that coalesces rapid edits. Zero parses immediately.
	Debounce time.Duration

	// Parse runs a pass. Defaults to parser.Parse with ParseOptions.
	Parse ParseFunc

	// ParseOptions is used by the default Parse. Defaults to parser.DefaultOptions.
	ParseOptions *parser.Options
}

// docState is the scheduling state of one document.
type docState struct {
	requested int64
	content   []byte

	timer  *time.Timer
	cancel context.CancelFunc

	latest  *Publication
	waiters []waiter
}

type waiter struct {
	revision int64
	ch       chan Publication
}

// Scheduler turns edit notifications into parse passes. Requests for one document are
// coalesced, an in-flight pass is superseded by a newer request, and only the result of the
// newest requested revision is ever published.
type Scheduler struct {
	dispatcher *Dispatcher
	debounce   time.Duration
	parse      ParseFunc

	//nolint:containedctx // Base context for passes, cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	docs      map[string]*docState
	listeners []Listener
	closed    bool
	passes    sync.WaitGroup
}

// NewScheduler creates a scheduler publishing through dispatcher. ctx carries the logger and
// bounds the lifetime of every pass.
func NewScheduler(ctx context.Context, dispatcher *Dispatcher, opts Options) *Scheduler {
	parse := opts.Parse
	if parse == nil {
		parseOpts := opts.ParseOptions
		if parseOpts == nil {
			parseOpts = parser.DefaultOptions()
		}
		parse = func(ctx context.Context, doc *source.Document) (*parser.Result, error) {
			return parser.Parse(ctx, doc, parseOpts)
		}
	}

	base, cancel := context.WithCancel(ctx)
	return &Scheduler{
		dispatcher: dispatcher,
		debounce:   max(opts.Debounce, 0),
		parse:      parse,
		ctx:        base,
		cancel:     cancel,
		docs:       make(map[string]*docState),
	}
}

// OnPublish registers a listener called for every publication.
func (s *Scheduler) OnPublish(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, listener)
}

// QueueReparse requests a pass over content as revision of path. It never blocks on parsing.
// Requests at or below the newest revision already requested are ignored.
func (s *Scheduler) QueueReparse(path string, revision int64, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}

	state := s.state(path)
	if revision <= state.requested {
		logging.FromContext(s.ctx).Debug("ignoring stale reparse request",
			logging.FieldPath, path, logging.FieldRevision, revision)
		return nil
	}

	state.requested = revision
	state.content = content

	// A newer revision supersedes any pass still running.
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
	}

	if state.timer != nil {
		state.timer.Stop()
	}
	state.timer = time.AfterFunc(s.debounce, func() {
		s.start(path, revision)
	})
	return nil
}

// HasPendingChanges reports whether a revision newer than the latest publication was requested.
func (s *Scheduler) HasPendingChanges(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.docs[path]
	if !ok {
		return false
	}
	return state.latest == nil || state.latest.Revision < state.requested
}

// Latest returns the latest publication for path.
func (s *Scheduler) Latest(path string) (Publication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.docs[path]
	if !ok || state.latest == nil {
		return Publication{}, false
	}
	return *state.latest, true
}

// WaitForRevision blocks until a publication of path at revision or later exists.
func (s *Scheduler) WaitForRevision(ctx context.Context, path string, revision int64) (Publication, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Publication{}, ErrSchedulerClosed
	}

	state := s.state(path)
	if state.latest != nil && state.latest.Revision >= revision {
		pub := *state.latest
		s.mu.Unlock()
		return pub, nil
	}

	ch := make(chan Publication, 1)
	state.waiters = append(state.waiters, waiter{revision: revision, ch: ch})
	s.mu.Unlock()

	select {
	case pub, ok := <-ch:
		if !ok {
			return Publication{}, ErrSchedulerClosed
		}
		return pub, nil
	case <-ctx.Done():
		return Publication{}, fmt.Errorf("waiting for %s revision %d: %w", path, revision, ctx.Err())
	}
}

// Forget drops all state for path, cancelling pending work.
func (s *Scheduler) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.docs[path]
	if !ok {
		return
	}
	s.stop(state)
	delete(s.docs, path)
}

// Close cancels pending passes, releases waiters and waits for running passes to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, state := range s.docs {
		s.stop(state)
	}
	s.mu.Unlock()

	s.cancel()
	s.passes.Wait()
}

func (s *Scheduler) stop(state *docState) {
	if state.timer != nil {
		state.timer.Stop()
	}
	if state.cancel != nil {
		state.cancel()
	}
	for _, w := range state.waiters {
		close(w.ch)
	}
	state.waiters = nil
}

func (s *Scheduler) state(path string) *docState {
	state, ok := s.docs[path]
	if !ok {
		state = &docState{}
		s.docs[path] = state
	}
	return state
}

// start launches the pass for revision unless a newer request arrived meanwhile.
func (s *Scheduler) start(path string, revision int64) {
	s.mu.Lock()
	state, ok := s.docs[path]
	if s.closed || !ok || state.requested != revision {
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	state.cancel = cancel
	content := state.content
	s.passes.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.passes.Done()
		defer cancel()
		s.run(ctx, state, path, revision, content)
	}()
}

// run parses one revision and publishes it on the dispatcher if it is still the newest
// request of owner.
func (s *Scheduler) run(ctx context.Context, owner *docState, path string, revision int64, content []byte) {
	passID := uuid.New()
	ctx = logging.WithFields(ctx,
		logging.FieldPath, path,
		logging.FieldRevision, revision,
		logging.FieldPass, passID.String(),
	)
	logger := logging.FromContext(ctx)

	began := time.Now()
	result, err := s.parse(ctx, source.NewDocument(path, content))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("parse pass failed", logging.FieldError, err)
		}
		return
	}
	if ctx.Err() != nil {
		logger.Debug("parse pass superseded")
		return
	}

	pub := Publication{
		Path:     path,
		Revision: revision,
		PassID:   passID,
		Result:   result,
		Duration: time.Since(began),
	}

	err = s.dispatcher.Run(ctx, func(ctx context.Context) error {
		return s.publish(ctx, owner, pub)
	})
	switch {
	case err == nil:
		logger.Debug("published parse pass",
			logging.FieldDiagnosticsTotal, len(result.Diagnostics),
			logging.FieldDuration, pub.Duration)
	case errors.Is(err, errSuperseded), errors.Is(err, context.Canceled):
		logger.Debug("parse pass superseded")
	default:
		logger.Error("publishing parse pass failed", logging.FieldError, err)
	}
}

// errSuperseded reports that a newer revision was requested before publication.
var errSuperseded = errors.New("superseded")

// publish records pub as the latest result of owner and notifies listeners. It must run on
// the dispatcher with the pass context. A pass whose document was forgotten, even if the path
// was queued again since, is superseded.
func (s *Scheduler) publish(ctx context.Context, owner *docState, pub Publication) error {
	if err := s.dispatcher.Check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	state, ok := s.docs[pub.Path]
	if s.closed || !ok || state != owner || state.requested != pub.Revision || ctx.Err() != nil {
		s.mu.Unlock()
		return errSuperseded
	}

	state.latest = &pub
	state.cancel = nil

	remaining := state.waiters[:0]
	for _, w := range state.waiters {
		if pub.Revision >= w.revision {
			w.ch <- pub
			close(w.ch)
			continue
		}
		remaining = append(remaining, w)
	}
	state.waiters = remaining
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(ctx, pub)
	}
	return nil
}
