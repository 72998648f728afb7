// Package reparse schedules parse passes for documents under edit and publishes their results.
//
// All state shared with editors is mutated on a Dispatcher: a single worker goroutine that runs
// submitted tasks one at a time. Parsing itself runs off the worker; only publishing a finished
// pass is serialized.
package reparse

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotOnDispatcher is returned when a mutating call is made outside the dispatcher worker.
	ErrNotOnDispatcher = errors.New("not running on the dispatcher")

	// ErrDispatcherClosed is returned when submitting to a closed dispatcher.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

// dispatcherKey marks a context as running on a dispatcher worker.
type dispatcherKey struct{}

// task is one unit of work for the worker.
type task struct {
	ctx    context.Context //nolint:containedctx // Carried from submitter to worker.
	fn     func(ctx context.Context) error
	result chan error
}

// Dispatcher runs tasks sequentially on one worker goroutine.
type Dispatcher struct {
	tasks     chan task
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher starts a dispatcher worker. queue is the number of tasks that can wait without
// blocking their submitter.
func NewDispatcher(queue int) *Dispatcher {
	d := &Dispatcher{
		tasks: make(chan task, max(queue, 0)),
		done:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			return
		case t := <-d.tasks:
			err := d.execute(t)
			if t.result != nil {
				t.result <- err
			}
		}
	}
}

func (d *Dispatcher) execute(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatcher task panicked: %v", r)
		}
	}()

	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.fn(context.WithValue(t.ctx, dispatcherKey{}, d))
}

// Run executes fn on the worker and waits for its result. Called from the worker itself, it runs
// fn inline. Run returns early with the context error if ctx ends first.
func (d *Dispatcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.Check(ctx) == nil {
		return fn(ctx)
	}

	t := task{ctx: ctx, fn: fn, result: make(chan error, 1)}
	if err := d.submit(ctx, t); err != nil {
		return err
	}

	select {
	case err := <-t.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherClosed
	}
}

// Post queues fn on the worker without waiting for it.
func (d *Dispatcher) Post(ctx context.Context, fn func(ctx context.Context)) error {
	return d.submit(ctx, task{ctx: ctx, fn: func(ctx context.Context) error {
		fn(ctx)
		return nil
	}})
}

func (d *Dispatcher) submit(ctx context.Context, t task) error {
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}

	select {
	case d.tasks <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrDispatcherClosed
	}
}

// Check returns ErrNotOnDispatcher unless ctx belongs to a task running on this dispatcher.
func (d *Dispatcher) Check(ctx context.Context) error {
	if owner, ok := ctx.Value(dispatcherKey{}).(*Dispatcher); ok && owner == d {
		return nil
	}
	return ErrNotOnDispatcher
}

// Close stops the worker after the task in progress. Queued tasks are dropped.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}
