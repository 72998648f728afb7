package syntax

import (
	"slices"

	"github.com/yaklabco/gorazor/pkg/source"
)

// Path is the chain of nodes from the root (first) to a target node (last).
type Path []*Node

// Node returns the target node, or nil for an empty path.
func (p Path) Node() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Parent returns the parent of the target node, or nil.
func (p Path) Parent() *Node {
	if len(p) < 2 {
		return nil
	}
	return p[len(p)-2]
}

// ParentPath returns the path without its last node.
func (p Path) ParentPath() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Start returns the absolute start of the target node: the sum of the relative starts along the
// path. The root is at offset 0.
func (p Path) Start() int {
	start := 0
	for _, n := range p[min(1, len(p)):] {
		start += n.start
	}
	return start
}

// End returns the absolute exclusive end of the target node.
func (p Path) End() int {
	if len(p) == 0 {
		return 0
	}
	return p.Start() + p.Node().width
}

// Span returns the absolute byte range of the target node.
func (p Path) Span() source.Span {
	if len(p) == 0 {
		return source.Span{}
	}
	return source.Span{Start: p.Start(), Length: p.Node().width}
}

// Extend returns a new path with child appended. The receiver is not modified.
func (p Path) Extend(child *Node) Path {
	extended := make(Path, len(p), len(p)+1)
	copy(extended, p)
	return append(extended, child)
}

// Token returns the absolute token of a token-leaf path.
func (p Path) Token() (Token, bool) {
	n := p.Node()
	if n == nil || n.kind != NodeToken {
		return Token{}, false
	}
	return Token{Kind: n.tokenKind, Start: p.Start(), Content: n.text}, true
}

// Clone returns a copy of the path.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// FindPath returns the path from root to target.
func FindPath(root, target *Node) (Path, bool) {
	if root == nil || target == nil {
		return nil, false
	}
	var found Path
	_ = Walk(root, func(path Path) error {
		if path.Node() == target {
			found = path.Clone()
			return errStopWalk
		}
		return nil
	})
	return found, found != nil
}

// PathAt returns the path to the deepest node whose span contains offset.
// When offset sits on a boundary the node starting at offset wins; zero-width nodes are only
// chosen when nothing wider covers the offset.
func PathAt(root *Node, offset int) Path {
	if root == nil || offset < 0 || offset > root.width {
		return nil
	}

	path := Path{root}
	start := 0
	for {
		n := path.Node()
		next := -1
		nextStart := 0

		for i, child := range n.children {
			childStart := start + child.start
			if offset >= childStart && offset < childStart+child.width {
				next, nextStart = i, childStart
				break
			}
			if child.width == 0 && childStart == offset && next < 0 {
				next, nextStart = i, childStart
			}
		}

		// The end of the document belongs to the last child ending there.
		if next < 0 && offset == start+n.width && len(n.children) > 0 {
			next = len(n.children) - 1
			nextStart = start + n.children[next].start
		}

		if next < 0 {
			return path
		}
		path = path.Extend(n.children[next])
		start = nextStart
	}
}
