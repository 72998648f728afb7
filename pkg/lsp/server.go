// Package lsp serves parse results to editors over the Language Server Protocol.
//
// Documents are synchronized in full. Every accepted parse is pushed to the client as
// diagnostics; hover, document symbols and folding ranges are answered from the newest result
// for the current revision.
package lsp

import (
	"context"
	"sync"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	// Backend for the glsp transport logger.
	_ "github.com/tliron/commonlog/simple"

	"github.com/yaklabco/gorazor/internal/logging"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/reparse"
	"github.com/yaklabco/gorazor/pkg/workspace"
)

const lsName = "gorazor"

// requestTimeout bounds how long a request waits for the current revision to be parsed.
const requestTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Version      string
	Debounce     time.Duration
	ParseOptions *parser.Options
}

// Server is a language server for template documents.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	//nolint:containedctx // Server-lifetime context carrying the logger.
	ctx        context.Context
	dispatcher *reparse.Dispatcher
	scheduler  *reparse.Scheduler
	workspace  *workspace.Workspace

	mu     sync.Mutex
	notify glsp.NotifyFunc
}

// NewServer creates a language server. ctx supplies the logger and bounds background parsing.
func NewServer(ctx context.Context, opts Options) *Server {
	parseOpts := opts.ParseOptions
	if parseOpts == nil {
		parseOpts = parser.DefaultOptions()
	}

	dispatcher := reparse.NewDispatcher(64)
	scheduler := reparse.NewScheduler(ctx, dispatcher, reparse.Options{
		Debounce:     opts.Debounce,
		ParseOptions: parseOpts,
	})

	ls := &Server{
		version:    opts.Version,
		ctx:        ctx,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		workspace:  workspace.New(dispatcher, scheduler),
	}
	ls.workspace.OnPublish(ls.publishDiagnostics)

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentFoldingRange:   ls.textDocumentFoldingRange,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// RunStdio serves a single client over stdin and stdout until it disconnects.
func (ls *Server) RunStdio() error {
	defer ls.Close()
	return ls.server.RunStdio()
}

// Close stops background parsing.
func (ls *Server) Close() {
	ls.scheduler.Close()
	ls.dispatcher.Close()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	ls.setNotify(ctx.Notify)

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}

	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	logging.FromContext(ls.ctx).Info("language server initializing",
		logging.FieldName, clientName, logging.FieldVersion, ls.version)

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (ls *Server) shutdown(_ *glsp.Context) error {
	ls.scheduler.Close()
	return nil
}

func (ls *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.setNotify(ctx.Notify)

	doc := params.TextDocument
	return ls.workspace.Open(ls.ctx, doc.URI, int64(doc.Version), []byte(doc.Text))
}

func (ls *Server) textDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	current, err := ls.workspace.Get(ls.ctx, uri)
	if err != nil {
		return err
	}

	content := current.Content
	for _, change := range params.ContentChanges {
		content = applyChange(uri, content, change)
	}
	return ls.workspace.Update(ls.ctx, uri, int64(params.TextDocument.Version), content)
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if err := ls.workspace.Close(ls.ctx, uri); err != nil {
		return err
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, err := ls.latest(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return hoverAt(doc.Result, params.Position), nil
}

func (ls *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, err := ls.latest(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return documentSymbols(doc.Result), nil
}

func (ls *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc, err := ls.latest(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return foldingRanges(doc.Result), nil
}

// latest waits for the result of the current revision of uri.
func (ls *Server) latest(uri string) (workspace.Document, error) {
	ctx, cancel := context.WithTimeout(ls.ctx, requestTimeout)
	defer cancel()

	return ls.workspace.Latest(ctx, uri)
}

// publishDiagnostics runs on the dispatcher for every accepted parse.
func (ls *Server) publishDiagnostics(ctx context.Context, doc workspace.Document) {
	notify := ls.getNotify()
	if notify == nil {
		return
	}

	version := protocol.UInteger(doc.Revision)
	diagnostics := convertDiagnostics(doc.Result)
	logging.FromContext(ctx).Debug("publishing diagnostics",
		logging.FieldMethod, protocol.ServerTextDocumentPublishDiagnostics,
		logging.FieldURI, doc.Path,
		logging.FieldRevision, doc.Revision,
		logging.FieldDiagnosticsTotal, len(diagnostics))

	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         doc.Path,
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

func (ls *Server) setNotify(notify glsp.NotifyFunc) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.notify = notify
}

func (ls *Server) getNotify() glsp.NotifyFunc {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.notify
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
