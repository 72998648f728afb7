package configloader

import (
	"slices"

	"github.com/yaklabco/gorazor/pkg/config"
	"github.com/yaklabco/gorazor/pkg/directive"
)

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Feature flags: override overwrites base if set
//   - Directives: merged by name, with override's descriptors replacing base's
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Debounce != "" {
		result.Debounce = override.Debounce
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.CodeFormat != "" {
		result.CodeFormat = override.CodeFormat
	}
	if override.SummaryOrder != "" {
		result.SummaryOrder = override.SummaryOrder
	}

	// Only true overrides: a layer cannot switch these off once a lower layer enabled them.
	if override.DesignTime {
		result.DesignTime = true
	}
	if override.ParseLeadingDirectives {
		result.ParseLeadingDirectives = true
	}

	result.Features = mergeFeatures(base.Features, override.Features)
	result.Directives = mergeDirectives(base.Directives, override.Directives)

	if override.Extensions != nil {
		result.Extensions = slices.Clone(override.Extensions)
	}
	if override.Ignore != nil {
		result.Ignore = slices.Clone(override.Ignore)
	}

	return &result
}

func mergeFeatures(base, override config.FeaturesConfig) config.FeaturesConfig {
	result := base
	if override.MarkupInCode != nil {
		result.MarkupInCode = override.MarkupInCode
	}
	if override.CodeInAttributeNames != nil {
		result.CodeInAttributeNames = override.CodeInAttributeNames
	}
	if override.HTMLComments != nil {
		result.HTMLComments = override.HTMLComments
	}
	return result
}

// mergeDirectives keeps base order, replacing descriptors override redefines and appending
// the new ones.
func mergeDirectives(base, override []directive.Descriptor) []directive.Descriptor {
	if base == nil && override == nil {
		return nil
	}

	result := make([]directive.Descriptor, 0, len(base)+len(override))
	index := make(map[string]int, len(base)+len(override))

	for _, list := range [][]directive.Descriptor{base, override} {
		for i := range list {
			desc := *list[i].Clone()
			if at, ok := index[desc.Name]; ok {
				result[at] = desc
				continue
			}
			index[desc.Name] = len(result)
			result = append(result, desc)
		}
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
