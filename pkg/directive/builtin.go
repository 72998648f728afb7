package directive

// Built-in directive names.
const (
	NamePage               = "page"
	NamePackage            = "package"
	NameImport             = "import"
	NameModel              = "model"
	NameInherits           = "inherits"
	NameLayout             = "layout"
	NameImplements         = "implements"
	NameInject             = "inject"
	NameAttribute          = "attribute"
	NameTypeParam          = "typeparam"
	NamePreserveWhitespace = "preservewhitespace"
	NameCode               = "code"
	NameFunctions          = "functions"
	NameSection            = "section"
)

// Builtins returns fresh copies of the built-in descriptors.
func Builtins() []*Descriptor {
	return []*Descriptor{
		{
			Name:        NamePage,
			Description: "Marks the template as a routable page, optionally with a route template such as `\"/users/{id}\"`.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "route", Optional: true}},
		},
		{
			Name:        NamePackage,
			Description: "Sets the Go package the template is generated into.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenNamespace, Name: "package"}},
		},
		{
			Name:        NameImport,
			Description: "Imports a Go package for use in code regions, e.g. `@import \"strings\"`.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenString, Name: "path"}},
		},
		{
			Name:        NameModel,
			Description: "Declares the type of the `Model` value passed to the template.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "type"}},
		},
		{
			Name:        NameInherits,
			Description: "Sets the base type embedded by the generated template type.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "type"}},
		},
		{
			Name:        NameLayout,
			Description: "Renders the template inside the given layout type.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "layout"}},
		},
		{
			Name:        NameImplements,
			Description: "Asserts that the generated template type implements an interface.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenType, Name: "interface"}},
		},
		{
			Name:        NameInject,
			Description: "Injects a dependency as a field: `@inject *log.Logger Log`.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedMultiple,
			Tokens: []TokenDescriptor{
				{Kind: TokenType, Name: "type"},
				{Kind: TokenMember, Name: "field"},
			},
		},
		{
			Name:        NameAttribute,
			Description: "Attaches a bracketed attribute to the generated type.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedMultiple,
			Tokens:      []TokenDescriptor{{Kind: TokenAttribute, Name: "attribute"}},
		},
		{
			Name:        NameTypeParam,
			Description: "Declares a type parameter with an optional constraint: `@typeparam T comparable`.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedMultiple,
			Tokens: []TokenDescriptor{
				{Kind: TokenMember, Name: "name"},
				{Kind: TokenType, Name: "constraint", Optional: true},
			},
		},
		{
			Name:        NamePreserveWhitespace,
			Description: "Controls whether insignificant whitespace is kept in the rendered output.",
			Kind:        KindSingleLine,
			Usage:       UsageFileScopedSingle,
			Tokens:      []TokenDescriptor{{Kind: TokenBoolean, Name: "enabled"}},
		},
		{
			Name:        NameCode,
			Description: "Declares members of the generated template type.",
			Kind:        KindCodeBlock,
			Usage:       UsageUnrestricted,
		},
		{
			Name:        NameFunctions,
			Description: "Declares helper functions. Same shape as `@code`.",
			Kind:        KindCodeBlock,
			Usage:       UsageUnrestricted,
		},
		{
			Name:        NameSection,
			Description: "Defines a named markup section rendered by the layout.",
			Kind:        KindRazorBlock,
			Usage:       UsageUnrestricted,
			Tokens:      []TokenDescriptor{{Kind: TokenMember, Name: "name"}},
		},
	}
}

// RegisterBuiltins adds the built-in directives to r.
func RegisterBuiltins(r *Registry) error {
	for _, desc := range Builtins() {
		if err := r.Register(desc); err != nil {
			return err
		}
	}
	return nil
}

//nolint:gochecknoinits // Built-in directives register with the default registry.
func init() {
	for _, desc := range Builtins() {
		DefaultRegistry.MustRegister(desc)
	}
}
