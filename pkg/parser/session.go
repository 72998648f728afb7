package parser

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/source"
)

// InfiniteLoopThreshold is how many times in a row a loop may come back to the reader location
// it last checked before the parse is aborted.
const InfiniteLoopThreshold = 1000

var (
	// ErrInvalidArgument is returned for a nil document, options or directive registry.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrParserStalled is returned when the loop guard trips.
	ErrParserStalled = errors.New("parser made no progress")
)

// Disposition describes the last character accepted before the reader position.
type Disposition uint8

// Dispositions.
const (
	DispositionNone Disposition = iota
	DispositionNewLine
	DispositionWhitespace
	DispositionAny
)

// loopGuard watches one parser loop. Each check made where the previous check of the same
// loop was made counts towards InfiniteLoopThreshold; any movement resets the count.
type loopGuard struct {
	last    source.Location
	started bool
	count   int
}

func (g *loopGuard) check(loc source.Location) error {
	if !g.started || loc != g.last {
		g.last = loc
		g.started = true
		g.count = 0
		return nil
	}

	g.count++
	if g.count > InfiniteLoopThreshold {
		return fmt.Errorf("%w at line %d, column %d", ErrParserStalled, loc.Line+1, loc.Column+1)
	}
	return nil
}

// Session holds the mutable state of a single parse: the reader, the diagnostic sink, the set of
// directives seen so far and the loop guard. Everything else is the immutable options snapshot.
type Session struct {
	doc        *source.Document
	reader     *source.Reader
	sink       *diag.Sink
	tokens     *Tokenizer
	options    Options
	directives directive.Snapshot

	seen      map[string]struct{}
	seenOrder []string
	guard     loopGuard
}

// NewSession creates a session over doc. The options and the directive registry are snapshotted.
func NewSession(doc *source.Document, opts *Options) (*Session, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidArgument)
	}
	if opts == nil {
		return nil, fmt.Errorf("%w: nil options", ErrInvalidArgument)
	}
	if opts.Directives == nil {
		return nil, fmt.Errorf("%w: nil directive registry", ErrInvalidArgument)
	}

	reader := source.NewReader(doc)
	sink := diag.NewSink()

	return &Session{
		doc:        doc,
		reader:     reader,
		sink:       sink,
		tokens:     NewTokenizer(reader, sink),
		options:    *opts,
		directives: opts.Directives.Snapshot(),
		seen:       make(map[string]struct{}),
	}, nil
}

// Document returns the document being parsed.
func (s *Session) Document() *source.Document {
	return s.doc
}

// Options returns a copy of the options snapshot.
func (s *Session) Options() Options {
	return s.options
}

// Sink returns the diagnostic sink.
func (s *Session) Sink() *diag.Sink {
	return s.sink
}

// Tokenizer returns the session tokenizer.
func (s *Session) Tokenizer() *Tokenizer {
	return s.tokens
}

// EndOfInput reports whether the reader has consumed the whole document.
func (s *Session) EndOfInput() bool {
	return s.reader.EOF()
}

// SeenDirective reports whether a directive named name was already parsed.
func (s *Session) SeenDirective(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// MarkDirectiveSeen records name and reports whether this is its first occurrence.
func (s *Session) MarkDirectiveSeen(name string) bool {
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.seenOrder = append(s.seenOrder, name)
	return true
}

// SeenDirectives returns the directive names seen so far in order of first occurrence.
func (s *Session) SeenDirectives() []string {
	return slices.Clone(s.seenOrder)
}

// CheckInfiniteLoop checks the session-wide guard for a caller driving a single loop. It
// returns ErrParserStalled once the reader has stayed at one location for more than
// InfiniteLoopThreshold consecutive checks. The builder's loops keep guards of their own.
func (s *Session) CheckInfiniteLoop() error {
	return s.guard.check(s.reader.Location())
}

// StartOfLine reports whether only whitespace lies between the start of the current line
// and the reader.
func (s *Session) StartOfLine() bool {
	loc := s.reader.Location()
	line, _ := s.doc.Line(loc.Line)
	for _, ch := range s.doc.Slice(line.StartOffset, loc.Offset) {
		if !source.IsWhitespace(ch) {
			return false
		}
	}
	return true
}

// LastAccepted classifies the character just before the reader.
func (s *Session) LastAccepted() Disposition {
	offset := s.reader.Offset()
	if offset == 0 {
		return DispositionNone
	}

	last, _ := utf8.DecodeLastRuneInString(s.doc.Slice(0, offset))
	switch {
	case source.IsNewline(last):
		return DispositionNewLine
	case source.IsWhitespace(last):
		return DispositionWhitespace
	default:
		return DispositionAny
	}
}
