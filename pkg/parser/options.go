package parser

import (
	"github.com/yaklabco/gorazor/pkg/directive"
)

// Features toggles optional grammar.
type Features struct {
	// AllowMarkupInCode enables elements, '@:' lines and '@<tag>' templates inside code.
	AllowMarkupInCode bool

	// AllowCodeInAttributeNames accepts transitions inside start tags outside attribute values.
	AllowCodeInAttributeNames bool

	// AllowHTMLComments parses '<!-- -->' as comment nodes instead of text.
	AllowHTMLComments bool
}

// DefaultFeatures returns the feature set used when none is configured.
func DefaultFeatures() Features {
	return Features{
		AllowMarkupInCode:         true,
		AllowCodeInAttributeNames: true,
		AllowHTMLComments:         true,
	}
}

// Options is the configuration snapshot for one parse. It is copied when a parse starts,
// so later changes by the caller do not affect a running parse.
type Options struct {
	// DesignTime keeps parsing past missing directive tokens, inserting markers.
	DesignTime bool

	// ParseLeadingDirectives stops parsing after the leading directive section.
	ParseLeadingDirectives bool

	// Features toggles optional grammar.
	Features Features

	// Directives is the registry of known directives. Required.
	Directives *directive.Registry
}

// DefaultOptions returns runtime options using the default directive registry.
func DefaultOptions() *Options {
	return &Options{
		Features:   DefaultFeatures(),
		Directives: directive.DefaultRegistry,
	}
}
