// Package workspace tracks the documents open in an editor session and their latest parse
// results.
//
// All mutations run on the reparse dispatcher. Calls made from other goroutines are submitted to
// it and wait; reads return copies.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/reparse"
)

var (
	// ErrNotOpen is returned for operations on a document that is not open.
	ErrNotOpen = errors.New("document not open")

	// ErrAlreadyOpen is returned when opening a document twice.
	ErrAlreadyOpen = errors.New("document already open")

	// ErrStaleRevision is returned when an update does not advance the revision.
	ErrStaleRevision = errors.New("stale revision")
)

// Document is a snapshot of one open document.
type Document struct {
	Path     string
	Revision int64
	Content  []byte

	// Result is the newest published parse, which may trail Revision.
	Result *parser.Result

	// ResultRevision is the revision Result was parsed from, or 0 before the first publish.
	ResultRevision int64
}

// Current reports whether the result matches the latest content.
func (d Document) Current() bool {
	return d.Result != nil && d.ResultRevision == d.Revision
}

// Listener is notified on the dispatcher when an open document receives a new result.
type Listener func(ctx context.Context, doc Document)

// Workspace is the set of open documents.
type Workspace struct {
	dispatcher *reparse.Dispatcher
	scheduler  *reparse.Scheduler

	docs      map[string]*Document
	listeners []Listener
}

// New creates a workspace that queues parses on scheduler and mutates state on dispatcher.
func New(dispatcher *reparse.Dispatcher, scheduler *reparse.Scheduler) *Workspace {
	w := &Workspace{
		dispatcher: dispatcher,
		scheduler:  scheduler,
		docs:       make(map[string]*Document),
	}
	scheduler.OnPublish(func(ctx context.Context, pub reparse.Publication) {
		if err := w.Publish(ctx, pub); err != nil && !errors.Is(err, ErrNotOpen) {
			logging.FromContext(ctx).Warn("dropping publication",
				logging.FieldPath, pub.Path, logging.FieldError, err)
		}
	})
	return w
}

// OnPublish registers a listener for accepted results. It must be called before documents are
// opened.
func (w *Workspace) OnPublish(listener Listener) {
	w.listeners = append(w.listeners, listener)
}

// Open starts tracking path at revision and queues its first parse.
func (w *Workspace) Open(ctx context.Context, path string, revision int64, content []byte) error {
	return w.dispatcher.Run(ctx, func(ctx context.Context) error {
		if _, ok := w.docs[path]; ok {
			return fmt.Errorf("open %s: %w", path, ErrAlreadyOpen)
		}

		doc := &Document{Path: path, Revision: revision, Content: slices.Clone(content)}
		w.docs[path] = doc
		logging.FromContext(ctx).Debug("opened document",
			logging.FieldPath, path, logging.FieldRevision, revision)
		return w.scheduler.QueueReparse(path, revision, doc.Content)
	})
}

// Update replaces the content of an open document and queues a reparse.
func (w *Workspace) Update(ctx context.Context, path string, revision int64, content []byte) error {
	return w.dispatcher.Run(ctx, func(ctx context.Context) error {
		doc, ok := w.docs[path]
		if !ok {
			return fmt.Errorf("update %s: %w", path, ErrNotOpen)
		}
		if revision <= doc.Revision {
			return fmt.Errorf("update %s to revision %d (current %d): %w", path, revision, doc.Revision, ErrStaleRevision)
		}

		doc.Revision = revision
		doc.Content = slices.Clone(content)
		return w.scheduler.QueueReparse(path, revision, doc.Content)
	})
}

// Close stops tracking path. Later publications for it are dropped.
func (w *Workspace) Close(ctx context.Context, path string) error {
	return w.dispatcher.Run(ctx, func(ctx context.Context) error {
		if _, ok := w.docs[path]; !ok {
			return fmt.Errorf("close %s: %w", path, ErrNotOpen)
		}

		delete(w.docs, path)
		w.scheduler.Forget(path)
		logging.FromContext(ctx).Debug("closed document", logging.FieldPath, path)
		return nil
	})
}

// Publish records a finished parse. It must be called on the dispatcher; results for closed
// documents or for revisions other than the current one are rejected.
func (w *Workspace) Publish(ctx context.Context, pub reparse.Publication) error {
	if err := w.dispatcher.Check(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", pub.Path, err)
	}

	doc, ok := w.docs[pub.Path]
	if !ok {
		return fmt.Errorf("publish %s: %w", pub.Path, ErrNotOpen)
	}
	if pub.Revision != doc.Revision {
		return fmt.Errorf("publish %s revision %d (current %d): %w", pub.Path, pub.Revision, doc.Revision, ErrStaleRevision)
	}

	doc.Result = pub.Result
	doc.ResultRevision = pub.Revision

	snapshot := *doc
	for _, listener := range w.listeners {
		listener(ctx, snapshot)
	}
	return nil
}

// Get returns a snapshot of the document at path.
func (w *Workspace) Get(ctx context.Context, path string) (Document, error) {
	var snapshot Document
	err := w.dispatcher.Run(ctx, func(context.Context) error {
		doc, ok := w.docs[path]
		if !ok {
			return fmt.Errorf("get %s: %w", path, ErrNotOpen)
		}
		snapshot = *doc
		snapshot.Content = slices.Clone(doc.Content)
		return nil
	})
	return snapshot, err
}

// Documents returns snapshots of all open documents ordered by path.
func (w *Workspace) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := w.dispatcher.Run(ctx, func(context.Context) error {
		docs = make([]Document, 0, len(w.docs))
		for _, doc := range w.docs {
			snapshot := *doc
			snapshot.Content = slices.Clone(doc.Content)
			docs = append(docs, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs, nil
}

// Latest waits until the document at path has a result for its current revision.
func (w *Workspace) Latest(ctx context.Context, path string) (Document, error) {
	doc, err := w.Get(ctx, path)
	if err != nil {
		return Document{}, err
	}
	if doc.Current() {
		return doc, nil
	}

	if _, err := w.scheduler.WaitForRevision(ctx, path, doc.Revision); err != nil {
		return Document{}, fmt.Errorf("latest %s: %w", path, err)
	}
	return w.Get(ctx, path)
}
