package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gorazor/pkg/directive"
)

// TemplateOptions controls the file written by gorazor init.
type TemplateOptions struct {
	// Full documents every setting and lists the built-in directives.
	Full bool

	// Format is "yaml" (the default) or "json".
	Format string
}

// templateSetting is one documented top-level key of a generated config.
type templateSetting struct {
	key   string
	doc   string
	value any

	// minimal settings also appear, commented out, in the short template.
	minimal bool
}

func templateSettings() []templateSetting {
	cfg := NewConfig()
	exampleDirective := []map[string]any{{
		"name":        "title",
		"description": "Sets the page title.",
		"kind":        "single-line",
		"usage":       "file-scoped-single",
		"tokens":      []map[string]string{{"kind": "string", "name": "text"}},
	}}

	return []templateSetting{
		{key: "design_time", value: cfg.DesignTime, minimal: true,
			doc: "Insert markers for every missing directive argument instead of stopping at the first one. Editors enable this."},
		{key: "parse_leading_directives", value: cfg.ParseLeadingDirectives,
			doc: "Stop after the leading block of directives, comments and whitespace."},
		{key: "features", value: map[string]bool{"markup_in_code": true, "code_in_attribute_names": true, "html_comments": true},
			doc: "Optional grammar. Every feature is enabled by default."},
		{key: "jobs", value: cfg.Jobs, minimal: true, doc: "Number of parallel workers (0 = auto)"},
		{key: "format", value: cfg.Format, doc: "Output format: text, table, json, sarif, or summary"},
		{key: "color", value: cfg.Color, doc: "Styled output: auto, always, or never"},
		{key: "debounce", value: cfg.Debounce, doc: "Quiet period before an edited document is reparsed (watch and lsp)"},
		{key: "extensions", value: cfg.Extensions, minimal: true, doc: "File extensions parsed as templates"},
		{key: "ignore", value: []string{"vendor/**", "node_modules/**"}, minimal: true, doc: "File patterns to ignore (glob patterns)"},
		{key: "directives", value: exampleDirective, minimal: true,
			doc: "Custom directives, in addition to the built-in ones. " +
				"Kinds: single-line, razor-block, code-block. " +
				"Usages: unrestricted, file-scoped-single, file-scoped-multiple. " +
				"Token kinds: type, member, namespace, string, boolean, attribute."},
	}
}

// GenerateTemplate renders a starter configuration file.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch {
	case opts.Format == "json":
		return templateJSON()
	case opts.Full:
		return fullTemplate()
	default:
		return minimalTemplate()
	}
}

// DefaultTemplateHeader returns the comment block that opens generated configs.
func DefaultTemplateHeader() string {
	return "# gorazor configuration\n# See: https://github.com/yaklabco/gorazor"
}

// minimalTemplate lists the common settings, all commented out.
func minimalTemplate() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader() + "\n")

	for _, setting := range templateSettings() {
		if !setting.minimal {
			continue
		}
		body, err := settingYAML(setting.key, setting.value)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n" + comment(setting.doc, 78))
		buf.WriteString(comment(strings.TrimSuffix(body, "\n"), 0))
	}
	return buf.Bytes(), nil
}

// fullTemplate documents every setting at its default value. Directives
// are left empty, with the built-ins listed for reference.
func fullTemplate() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader() + "\n")
	buf.WriteString("#\n# Every setting is shown with its default value.\n")

	for _, setting := range templateSettings() {
		buf.WriteString("\n" + comment(setting.doc, 78))
		value := setting.value
		if setting.key == "directives" {
			buf.WriteString("#\n# Built-in directives:\n")
			for _, desc := range directive.Builtins() {
				buf.WriteString(comment(desc.Signature(), 0))
				buf.WriteString(comment("  "+desc.Description, 0))
			}
			value = []directive.Descriptor{}
		}

		body, err := settingYAML(setting.key, value)
		if err != nil {
			return nil, err
		}
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// templateJSON renders the full template's settings as JSON, which has no
// room for the documentation.
func templateJSON() ([]byte, error) {
	doc := make(map[string]any)
	for _, setting := range templateSettings() {
		doc[setting.key] = setting.value
	}
	doc["directives"] = []directive.Descriptor{}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return data, nil
}

func settingYAML(key string, value any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return buf.String(), nil
}

// comment prefixes every line of text with "# ", first wrapping it at width
// columns when width is positive.
func comment(text string, width int) string {
	var lines []string
	if width > 0 {
		lines = wrapWords(text, width-2)
	} else {
		lines = strings.Split(text, "\n")
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.TrimRight("# "+line, " ") + "\n")
	}
	return b.String()
}

func wrapWords(text string, width int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		if current != "" && len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current = strings.TrimPrefix(current+" "+word, " ")
	}
	return append(lines, current)
}
