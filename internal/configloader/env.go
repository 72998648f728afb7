package configloader

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/gorazor/pkg/config"
)

const envVarPrefix = "GORAZOR_"

// envMapping binds one GORAZOR_ variable to the config field it overrides.
type envMapping struct {
	suffix      string
	description string
	apply       func(cfg *config.Config, value string) error
}

//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = []envMapping{
	{"DESIGN_TIME", "Insert markers for missing directive tokens: true or false",
		boolEnv(func(c *config.Config, v bool) { c.DesignTime = v })},
	{"PARSE_LEADING_DIRECTIVES", "Stop after the leading directive block: true or false",
		boolEnv(func(c *config.Config, v bool) { c.ParseLeadingDirectives = v })},
	{"FEATURES_MARKUP_IN_CODE", "Allow markup inside code: true or false",
		boolEnv(func(c *config.Config, v bool) { c.Features.MarkupInCode = &v })},
	{"FEATURES_CODE_IN_ATTRIBUTE_NAMES", "Allow code inside tag attribute names: true or false",
		boolEnv(func(c *config.Config, v bool) { c.Features.CodeInAttributeNames = &v })},
	{"FEATURES_HTML_COMMENTS", "Parse HTML comments: true or false",
		boolEnv(func(c *config.Config, v bool) { c.Features.HTMLComments = &v })},
	{"JOBS", "Number of parallel workers (0 = auto)",
		intEnv(func(c *config.Config, v int) { c.Jobs = v })},
	{"FORMAT", "Output format: text, table, json, sarif, or summary",
		stringEnv(func(c *config.Config, v string) { c.Format = config.OutputFormat(v) })},
	{"COLOR", "Styled output: auto, always, or never",
		stringEnv(func(c *config.Config, v string) { c.Color = config.ColorMode(v) })},
	{"DEBOUNCE", "Reparse quiet period, e.g. 50ms",
		stringEnv(func(c *config.Config, v string) { c.Debounce = v })},
	{"EXTENSIONS", "Comma-separated list of template extensions",
		listEnv(func(c *config.Config, v []string) { c.Extensions = v })},
	{"IGNORE", "Comma-separated list of ignore patterns",
		listEnv(func(c *config.Config, v []string) { c.Ignore = v })},
}

func stringEnv(set func(*config.Config, string)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		set(cfg, value)
		return nil
	}
}

func boolEnv(set func(*config.Config, bool)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		set(cfg, b)
		return nil
	}
}

func intEnv(set func(*config.Config, int)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		set(cfg, n)
		return nil
	}
}

// listEnv splits a comma-separated value, dropping blank elements.
func listEnv(set func(*config.Config, []string)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		var items []string
		for item := range strings.SplitSeq(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		set(cfg, items)
		return nil
	}
}

// LoadFromEnv overrides cfg with every non-empty GORAZOR_ variable,
// e.g. GORAZOR_DESIGN_TIME=true.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}
	for _, mapping := range envMappings {
		name := envVarPrefix + mapping.suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := mapping.apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// EnvVar describes a supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns the supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, len(envMappings))
	for i, mapping := range envMappings {
		vars[i] = EnvVar{Name: envVarPrefix + mapping.suffix, Description: mapping.description}
	}
	slices.SortFunc(vars, func(a, b EnvVar) int { return strings.Compare(a.Name, b.Name) })
	return vars
}
