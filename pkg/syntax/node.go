// Package syntax defines the immutable syntax tree produced by the parser.
//
// Nodes store their start relative to their parent and their full width. Absolute positions are
// computed from an explicit node-to-root Path, never from parent pointers.
package syntax

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/directive"
)

// NodeKind identifies the type of a syntax node.
type NodeKind uint16

// Node kinds.
const (
	NodeToken NodeKind = iota
	NodeMarker
	NodeDocument

	NodeMarkupBlock
	NodeMarkupElement
	NodeMarkupStartTag
	NodeMarkupEndTag
	NodeMarkupAttribute
	NodeMarkupAttributeValue
	NodeMarkupTextLiteral
	NodeMarkupComment

	NodeRazorComment
	NodeEscapedTransition
	NodeTransition
	NodeMetaCode

	NodeCodeBlock
	NodeExplicitExpression
	NodeImplicitExpression
	NodeStatement
	NodeCodeLiteral
	NodeTemplate

	NodeDirective
	NodeDirectiveArgument
)

//nolint:gochecknoglobals // Read-only lookup table.
var nodeKindNames = map[NodeKind]string{
	NodeToken:                "Token",
	NodeMarker:               "Marker",
	NodeDocument:             "Document",
	NodeMarkupBlock:          "MarkupBlock",
	NodeMarkupElement:        "MarkupElement",
	NodeMarkupStartTag:       "MarkupStartTag",
	NodeMarkupEndTag:         "MarkupEndTag",
	NodeMarkupAttribute:      "MarkupAttribute",
	NodeMarkupAttributeValue: "MarkupAttributeValue",
	NodeMarkupTextLiteral:    "MarkupTextLiteral",
	NodeMarkupComment:        "MarkupComment",
	NodeRazorComment:         "RazorComment",
	NodeEscapedTransition:    "EscapedTransition",
	NodeTransition:           "Transition",
	NodeMetaCode:             "MetaCode",
	NodeCodeBlock:            "CodeBlock",
	NodeExplicitExpression:   "ExplicitExpression",
	NodeImplicitExpression:   "ImplicitExpression",
	NodeStatement:            "Statement",
	NodeCodeLiteral:          "CodeLiteral",
	NodeTemplate:             "Template",
	NodeDirective:            "Directive",
	NodeDirectiveArgument:    "DirectiveArgument",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NodeKind(%d)", uint16(k))
}

// IsCode reports whether the kind belongs to an embedded-code construct.
func (k NodeKind) IsCode() bool {
	switch k {
	case NodeCodeBlock, NodeExplicitExpression, NodeImplicitExpression, NodeStatement, NodeCodeLiteral:
		return true
	default:
		return false
	}
}

// Node is an immutable syntax tree element.
// A node is owned by exactly one parent; its start is relative to that parent.
type Node struct {
	kind  NodeKind
	start int
	width int

	children []*Node

	// Token leaves only.
	tokenKind TokenKind
	text      string

	// name is the tag name of elements and the keyword of directives and statements.
	name        string
	descriptor  *directive.Descriptor
	diagnostics []diag.Diagnostic
}

// Option configures a node under construction.
type Option func(*Node)

// WithName sets the node name (tag, directive keyword, statement keyword, attribute name).
func WithName(name string) Option {
	return func(n *Node) {
		n.name = name
	}
}

// WithDescriptor attaches the descriptor of a directive node.
func WithDescriptor(desc *directive.Descriptor) Option {
	return func(n *Node) {
		n.descriptor = desc
	}
}

// WithDiagnostics attaches diagnostics to the node.
func WithDiagnostics(diags ...diag.Diagnostic) Option {
	return func(n *Node) {
		n.diagnostics = append(n.diagnostics, diags...)
	}
}

// NewToken creates a token leaf.
func NewToken(kind TokenKind, text string) *Node {
	return &Node{
		kind:      NodeToken,
		width:     len(text),
		tokenKind: kind,
		text:      text,
	}
}

// NewTokenFrom creates a token leaf from a lexed token.
func NewTokenFrom(tok Token) *Node {
	return NewToken(tok.Kind, tok.Content)
}

// NewMarker creates a zero-width marker for an expected but absent construct.
func NewMarker(opts ...Option) *Node {
	n := &Node{kind: NodeMarker}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewNode creates an interior node. Nil children are dropped. Each child's start is set
// relative to the new node and the node width is the sum of the child widths.
func NewNode(kind NodeKind, children []*Node, opts ...Option) *Node {
	n := &Node{kind: kind}

	n.children = make([]*Node, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		child.start = n.width
		n.width += child.width
		n.children = append(n.children, child)
	}

	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Kind returns the node kind.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// RelativeStart returns the start offset relative to the parent.
func (n *Node) RelativeStart() int {
	return n.start
}

// Width returns the full width, including trivia.
func (n *Node) Width() int {
	return n.width
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i, or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// IsToken reports whether the node is a token leaf.
func (n *Node) IsToken() bool {
	return n.kind == NodeToken
}

// IsMarker reports whether the node is a zero-width marker.
func (n *Node) IsMarker() bool {
	return n.kind == NodeMarker
}

// TokenKind returns the token kind of a token leaf, or TokenUnknown.
func (n *Node) TokenKind() TokenKind {
	return n.tokenKind
}

// Text returns the text of a token leaf. Interior nodes return "".
func (n *Node) Text() string {
	return n.text
}

// Name returns the node name, if any.
func (n *Node) Name() string {
	return n.name
}

// Descriptor returns the directive descriptor of a directive node.
func (n *Node) Descriptor() *directive.Descriptor {
	return n.descriptor
}

// Diagnostics returns a copy of the diagnostics attached to this node.
func (n *Node) Diagnostics() []diag.Diagnostic {
	return slices.Clone(n.diagnostics)
}

// Content returns the concatenated text of all token leaves under the node.
func (n *Node) Content() string {
	var builder strings.Builder
	builder.Grow(n.width)
	n.writeContent(&builder)
	return builder.String()
}

func (n *Node) writeContent(builder *strings.Builder) {
	if n.kind == NodeToken {
		builder.WriteString(n.text)
		return
	}
	for _, child := range n.children {
		child.writeContent(builder)
	}
}

// Leaves returns the token leaves and markers under the node in document order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.collectLeaves(&leaves)
	return leaves
}

func (n *Node) collectLeaves(leaves *[]*Node) {
	if n.kind == NodeToken || n.kind == NodeMarker {
		*leaves = append(*leaves, n)
		return
	}
	for _, child := range n.children {
		child.collectLeaves(leaves)
	}
}

// String formats the node header for debugging.
func (n *Node) String() string {
	if n.kind == NodeToken {
		return fmt.Sprintf("%s %q", n.tokenKind, n.text)
	}
	if n.name != "" {
		return fmt.Sprintf("%s(%s)", n.kind, n.name)
	}
	return n.kind.String()
}
