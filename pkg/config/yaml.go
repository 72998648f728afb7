package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/gorazor/pkg/directive"
)

// ToYAML encodes the configuration with two-space indentation. A nil
// configuration encodes to nothing.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// ToYAMLWithHeader encodes the configuration below header, separated by a
// blank line.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	body, err := c.ToYAML()
	if err != nil || header == "" {
		return body, err
	}
	return slices.Concat([]byte(strings.TrimSuffix(header, "\n")), []byte("\n\n"), body), nil
}

// FromYAML decodes a configuration, rejecting unknown keys. Empty input
// yields an empty configuration.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// Clone returns a deep copy sharing no slices or pointers with c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Extensions = slices.Clone(c.Extensions)
	clone.Ignore = slices.Clone(c.Ignore)
	clone.Features = FeaturesConfig{
		MarkupInCode:         clonePtr(c.Features.MarkupInCode),
		CodeInAttributeNames: clonePtr(c.Features.CodeInAttributeNames),
		HTMLComments:         clonePtr(c.Features.HTMLComments),
	}
	if c.Directives != nil {
		clone.Directives = make([]directive.Descriptor, len(c.Directives))
		for i := range c.Directives {
			clone.Directives[i] = *c.Directives[i].Clone()
		}
	}
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
