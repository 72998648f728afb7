package position

import (
	"unicode/utf8"

	"github.com/yaklabco/gorazor/pkg/syntax"
)

// PathAt returns the path to the deepest node containing offset.
func PathAt(root *syntax.Node, offset int) syntax.Path {
	return syntax.PathAt(root, offset)
}

// OutermostAt returns the path to the outermost node below root that starts exactly at offset.
// When no node starts there it returns the deepest node containing offset.
func OutermostAt(root *syntax.Node, offset int) syntax.Path {
	path := syntax.PathAt(root, offset)
	for depth := 2; depth <= len(path); depth++ {
		candidate := path[:depth]
		if candidate.Start() == offset {
			return candidate.Clone()
		}
	}
	return path
}

// PreviousSibling returns the path to the sibling before the node at the end of path.
func PreviousSibling(path syntax.Path) (syntax.Path, bool) {
	parent := path.Parent()
	if parent == nil {
		return nil, false
	}

	node := path.Node()
	children := parent.Children()
	for idx, child := range children {
		if child != node {
			continue
		}
		if idx == 0 {
			return nil, false
		}
		return path.ParentPath().Extend(children[idx-1]), true
	}
	return nil, false
}

// Locate returns the deepest node at a line position of the mapper's document.
func (m *Mapper) Locate(root *syntax.Node, pos LinePosition) (syntax.Path, bool) {
	offset, ok := m.Offset(pos)
	if !ok {
		return nil, false
	}
	path := syntax.PathAt(root, offset)
	return path, path != nil
}

func lastRune(text string) (rune, int) {
	return utf8.DecodeLastRuneInString(text)
}
