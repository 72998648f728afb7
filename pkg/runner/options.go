// Package runner parses many template files concurrently.
package runner

import (
	"github.com/yaklabco/gorazor/pkg/langdetect"
	"github.com/yaklabco/gorazor/pkg/parser"
)

// Options controls a multi-file run.
type Options struct {
	// Paths lists files and directories to parse. Empty means ".".
	Paths []string

	// WorkingDir resolves relative Paths and globs. Empty means the process
	// working directory.
	WorkingDir string

	// Extensions selects template files by lowercase extension with its dot.
	// Empty means langdetect.DefaultExtensions().
	Extensions []string

	// IncludeGlobs, when set, restricts discovered files to those matching at
	// least one pattern.
	IncludeGlobs []string

	// ExcludeGlobs skip matching files and directories, from both the config
	// ignore list and --ignore.
	ExcludeGlobs []string

	// IncludeVendored descends into vendor/, node_modules/ and similar trees.
	IncludeVendored bool

	FollowSymlinks bool

	// Jobs bounds the worker pool. Zero or negative means runtime.NumCPU().
	Jobs int

	// Parse applies to every file. Nil means parser.DefaultOptions().
	Parse *parser.Options
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return langdetect.DefaultExtensions()
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) > 0 {
		return o.Paths
	}
	return []string{"."}
}

func (o Options) parseOptions() *parser.Options {
	if o.Parse != nil {
		return o.Parse
	}
	return parser.DefaultOptions()
}
