package syntax

import "errors"

// SkipChildren can be returned by a WalkFunc to skip the children of the current node.
//
//nolint:errname,gochecknoglobals // Mirrors filepath.SkipDir.
var SkipChildren = errors.New("skip children")

// errStopWalk is used internally to stop a walk early.
var errStopWalk = errors.New("stop walk")

// WalkFunc is called for each node with its path from the root.
// The path is only valid for the duration of the call; Clone it to keep it.
type WalkFunc func(path Path) error

// Walk performs a pre-order traversal starting at root.
// Returning SkipChildren skips the node's children; any other error stops the walk.
func Walk(root *Node, walkFunc WalkFunc) error {
	if root == nil {
		return nil
	}
	return walk(Path{root}, walkFunc)
}

func walk(path Path, walkFunc WalkFunc) error {
	if err := walkFunc(path); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	n := path.Node()
	for _, child := range n.children {
		if err := walk(append(path, child), walkFunc); err != nil {
			return err
		}
	}
	return nil
}

// FindAll returns the paths of every node matching predicate, in document order.
func FindAll(root *Node, predicate func(Path) bool) []Path {
	var result []Path
	_ = Walk(root, func(path Path) error {
		if predicate(path) {
			result = append(result, path.Clone())
		}
		return nil
	})
	return result
}

// FindFirst returns the path of the first node matching predicate.
func FindFirst(root *Node, predicate func(Path) bool) (Path, bool) {
	var found Path
	_ = Walk(root, func(path Path) error {
		if predicate(path) {
			found = path.Clone()
			return errStopWalk
		}
		return nil
	})
	return found, found != nil
}

// FindByKind returns the paths of every node of the given kind.
func FindByKind(root *Node, kind NodeKind) []Path {
	return FindAll(root, func(path Path) bool {
		return path.Node().kind == kind
	})
}

// TokenPaths returns the paths of every token leaf under root, in document order.
func TokenPaths(root *Node) []Path {
	return FindByKind(root, NodeToken)
}
