// Package directive describes template directives and the registry the parser consults.
package directive

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Kind is the grammar shape of a directive.
type Kind string

// Directive kinds.
const (
	// KindSingleLine directives end at the end of the line, e.g. "@model Foo".
	KindSingleLine Kind = "single-line"

	// KindRazorBlock directives are followed by a markup block, e.g. "@section Head { <p/> }".
	KindRazorBlock Kind = "razor-block"

	// KindCodeBlock directives are followed by a code block, e.g. "@code { ... }".
	KindCodeBlock Kind = "code-block"
)

// Usage restricts where and how often a directive may appear.
type Usage string

// Directive usages.
const (
	// UsageUnrestricted directives may appear anywhere, any number of times.
	UsageUnrestricted Usage = "unrestricted"

	// UsageFileScopedSingle directives may appear once, at the top level of a document.
	UsageFileScopedSingle Usage = "file-scoped-single"

	// UsageFileScopedMultiple directives may appear many times, at the top level of a document.
	UsageFileScopedMultiple Usage = "file-scoped-multiple"
)

// TokenKind is the expected shape of one directive argument.
type TokenKind string

// Directive token kinds.
const (
	TokenType      TokenKind = "type"
	TokenMember    TokenKind = "member"
	TokenNamespace TokenKind = "namespace"
	TokenString    TokenKind = "string"
	TokenBoolean   TokenKind = "boolean"
	TokenAttribute TokenKind = "attribute"
)

// Errors returned by Validate and Registry.Register.
var (
	ErrInvalidDescriptor  = errors.New("invalid directive descriptor")
	ErrDuplicateDirective = errors.New("directive already registered")
)

// TokenDescriptor describes one expected directive argument.
type TokenDescriptor struct {
	Kind        TokenKind `yaml:"kind" json:"kind"`
	Name        string    `yaml:"name,omitempty" json:"name,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Optional    bool      `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Descriptor is the registered grammar of a directive.
type Descriptor struct {
	// Name is the keyword following the transition, compared ordinally.
	Name string `yaml:"name" json:"name"`

	// Description is a Markdown summary used in listings and editor hovers.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Kind   Kind              `yaml:"kind" json:"kind"`
	Usage  Usage             `yaml:"usage" json:"usage"`
	Tokens []TokenDescriptor `yaml:"tokens,omitempty" json:"tokens,omitempty"`
}

// SingleUse reports whether the directive may appear at most once per document.
func (d *Descriptor) SingleUse() bool {
	return d.Usage == UsageFileScopedSingle
}

// FileScoped reports whether the directive must appear at the top level of a document.
func (d *Descriptor) FileScoped() bool {
	return d.Usage == UsageFileScopedSingle || d.Usage == UsageFileScopedMultiple
}

// HasBlock reports whether the directive is followed by a braced block.
func (d *Descriptor) HasBlock() bool {
	return d.Kind == KindRazorBlock || d.Kind == KindCodeBlock
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	clone := *d
	clone.Tokens = slices.Clone(d.Tokens)
	return &clone
}

// Signature renders the directive usage, e.g. "@inject type field" or "@section name { ... }".
// Optional tokens are bracketed.
func (d *Descriptor) Signature() string {
	var b strings.Builder
	b.WriteString("@")
	b.WriteString(d.Name)

	for _, token := range d.Tokens {
		name := token.Name
		if name == "" {
			name = string(token.Kind)
		}
		b.WriteByte(' ')
		if token.Optional {
			b.WriteString("[" + name + "]")
		} else {
			b.WriteString(name)
		}
	}

	if d.HasBlock() {
		b.WriteString(" { ... }")
	}
	return b.String()
}

// Validate checks that the descriptor is well formed.
func (d *Descriptor) Validate() error {
	if !isIdentifier(d.Name) {
		return fmt.Errorf("%w: name %q is not an identifier", ErrInvalidDescriptor, d.Name)
	}

	switch d.Kind {
	case KindSingleLine, KindRazorBlock, KindCodeBlock:
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidDescriptor, d.Name, d.Kind)
	}

	switch d.Usage {
	case UsageUnrestricted, UsageFileScopedSingle, UsageFileScopedMultiple:
	default:
		return fmt.Errorf("%w: %s: unknown usage %q", ErrInvalidDescriptor, d.Name, d.Usage)
	}

	sawOptional := false
	for i, token := range d.Tokens {
		switch token.Kind {
		case TokenType, TokenMember, TokenNamespace, TokenString, TokenBoolean, TokenAttribute:
		default:
			return fmt.Errorf("%w: %s: token %d has unknown kind %q", ErrInvalidDescriptor, d.Name, i, token.Kind)
		}

		// Optional tokens may only be followed by other optional tokens.
		if sawOptional && !token.Optional {
			return fmt.Errorf("%w: %s: required token %d follows an optional token", ErrInvalidDescriptor, d.Name, i)
		}
		sawOptional = sawOptional || token.Optional
	}

	return nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
