package parser

import "strings"

// scope is the contextual state passed down to every production. It is a value: callers
// derive modified copies for nested constructs and never see their children's changes.
type scope struct {
	// topLevel is set only for content directly under the document.
	topLevel bool

	// whitespaceSignificant keeps leading whitespace in markup even before code constructs.
	whitespaceSignificant bool

	// nullGeneratesWhitespaceAndNewLine gives the whitespace and newline that end a line after
	// a block construct to the construct instead of the following markup.
	nullGeneratesWhitespaceAndNewLine bool

	// inTemplate is set inside an '@<tag>' template.
	inTemplate bool

	// rawText names the enclosing element whose content is raw text, such as script.
	rawText string

	// openElements is the chain of enclosing elements, innermost first. Nested scopes share
	// their parent's chain.
	openElements *openElement
}

// openElement is one link of a scope's enclosing element chain.
type openElement struct {
	name   string
	parent *openElement
}

func documentScope() scope {
	return scope{
		topLevel:                          true,
		nullGeneratesWhitespaceAndNewLine: true,
	}
}

// code is the scope for the body of a code construct.
func (s scope) code() scope {
	s.topLevel = false
	s.rawText = ""
	s.openElements = nil
	return s
}

// block is the scope for the markup body of a razor-block directive.
func (s scope) block() scope {
	s.topLevel = false
	s.rawText = ""
	s.openElements = nil
	s.nullGeneratesWhitespaceAndNewLine = true
	return s
}

// markupLine is the scope for the content of an '@:' line.
func (s scope) markupLine() scope {
	s.topLevel = false
	s.openElements = nil
	s.nullGeneratesWhitespaceAndNewLine = false
	return s
}

// template is the scope for an '@<tag>' template.
func (s scope) template() scope {
	s.topLevel = false
	s.inTemplate = true
	s.openElements = nil
	s.nullGeneratesWhitespaceAndNewLine = false
	return s
}

// nested is the scope for a construct that is no longer at the top level.
func (s scope) nested() scope {
	s.topLevel = false
	return s
}

// withElement is the scope for the content of element name.
func (s scope) withElement(name string) scope {
	s.topLevel = false
	s.openElements = &openElement{name: name, parent: s.openElements}
	if preservesWhitespace(name) {
		s.whitespaceSignificant = true
	}
	if isRawTextElement(name) {
		s.rawText = name
	}
	return s
}

// isOpen reports whether an element named name encloses the current position.
func (s scope) isOpen(name string) bool {
	for open := s.openElements; open != nil; open = open.parent {
		if strings.EqualFold(open.name, name) {
			return true
		}
	}
	return false
}
