package config

import (
	"fmt"
	"time"

	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/parser"
)

// ParseOptions builds parser options from the configuration. Custom directives are registered on
// a copy of the default registry.
func (c *Config) ParseOptions() (*parser.Options, error) {
	opts := parser.DefaultOptions()
	if c == nil {
		return opts, nil
	}

	opts.DesignTime = c.DesignTime
	opts.ParseLeadingDirectives = c.ParseLeadingDirectives
	opts.Features = c.Features.resolve(opts.Features)

	if len(c.Directives) > 0 {
		registry := directive.DefaultRegistry.Clone()
		for i := range c.Directives {
			desc := c.Directives[i]
			if err := registry.Register(&desc); err != nil {
				return nil, fmt.Errorf("directives[%d]: %w", i, err)
			}
		}
		opts.Directives = registry
	}

	return opts, nil
}

// DebounceDuration parses Debounce, defaulting to DefaultDebounce when unset.
func (c *Config) DebounceDuration() (time.Duration, error) {
	value := DefaultDebounce
	if c != nil && c.Debounce != "" {
		value = c.Debounce
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("debounce: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("debounce: negative duration %s", value)
	}
	return d, nil
}

// resolve overlays the set flags on base.
func (f FeaturesConfig) resolve(base parser.Features) parser.Features {
	if f.MarkupInCode != nil {
		base.AllowMarkupInCode = *f.MarkupInCode
	}
	if f.CodeInAttributeNames != nil {
		base.AllowCodeInAttributeNames = *f.CodeInAttributeNames
	}
	if f.HTMLComments != nil {
		base.AllowHTMLComments = *f.HTMLComments
	}
	return base
}
