// Package langdetect classifies files as templates, markup or other content.
// It uses go-enry for extension and content classification and adds checks for the transition
// forms that distinguish templates from plain markup.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect.
const (
	LanguageRazor = "HTML+Razor"
	LanguageHTML  = "HTML"
	LanguageText  = "Text"
)

// DefaultExtensions are the file extensions treated as templates without inspecting content.
func DefaultExtensions() []string {
	return []string{".cshtml", ".razor", ".gohtml"}
}

// templateMarkers are byte sequences that only occur in templates.
//
//nolint:gochecknoglobals // Read-only lookup table.
var templateMarkers = [][]byte{
	[]byte("@{"),
	[]byte("@("),
	[]byte("@*"),
	[]byte("@model "),
	[]byte("@inject "),
	[]byte("@import "),
	[]byte("@page"),
	[]byte("@section "),
	[]byte("@code"),
	[]byte("@if "),
	[]byte("@for "),
	[]byte("@switch "),
}

// IsTemplatePath reports whether path has a template extension, either one of extensions or
// one go-enry maps to HTML+Razor.
func IsTemplatePath(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range extensions {
		if strings.ToLower(candidate) == ext {
			return true
		}
	}

	lang, _ := enry.GetLanguageByExtension(path)
	return lang == LanguageRazor
}

// IsVendored reports whether path lies in a vendored or third-party directory.
func IsVendored(path string) bool {
	return enry.IsVendor(filepath.ToSlash(path))
}

// Detect returns the language of a file from its path and content.
// Returns LanguageText for binary or unrecognized content.
func Detect(path string, content []byte) string {
	if enry.IsBinary(content) {
		return LanguageText
	}

	if lang, _ := enry.GetLanguageByExtension(path); lang == LanguageRazor {
		return LanguageRazor
	}

	if HasTemplateMarkers(content) {
		return LanguageRazor
	}

	if looksLikeHTML(content) {
		return LanguageHTML
	}

	if lang := enry.GetLanguage(filepath.Base(path), content); lang != "" {
		return lang
	}
	return LanguageText
}

// IsTemplate reports whether a file should be parsed as a template.
func IsTemplate(path string, content []byte) bool {
	return Detect(path, content) == LanguageRazor
}

// HasTemplateMarkers reports whether content contains a transition form only templates use.
// Escaped transitions ("@@") do not count.
func HasTemplateMarkers(content []byte) bool {
	for _, marker := range templateMarkers {
		for offset := 0; ; {
			idx := bytes.Index(content[offset:], marker)
			if idx < 0 {
				break
			}
			at := offset + idx
			if at == 0 || content[at-1] != '@' {
				return true
			}
			offset = at + len(marker)
		}
	}
	return false
}

// looksLikeHTML checks for document-level HTML patterns.
func looksLikeHTML(content []byte) bool {
	lower := bytes.ToLower(bytes.TrimSpace(content))
	return bytes.Contains(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<head>")) ||
		bytes.Contains(lower, []byte("<body>"))
}
