package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/gorazor/internal/ui/pretty"
	"github.com/yaklabco/gorazor/pkg/config"
)

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}
{{- end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ command .CommandPath }}{{if .Version}} {{ dim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}` + usageTemplate

// HelpFormatter renders cobra help and usage text with the pretty styles.
type HelpFormatter struct {
	styles *pretty.Styles
	usage  *template.Template
	help   *template.Template
}

// NewHelpFormatter creates a help formatter for output written to writer.
func NewHelpFormatter(colorMode config.ColorMode, writer io.Writer) *HelpFormatter {
	h := &HelpFormatter{styles: pretty.NewStylesFor(colorMode, writer)}

	funcs := template.FuncMap{
		"heading":    h.styles.Heading.Render,
		"command":    h.styles.Command.Render,
		"subcommand": h.styles.Subcommand.Render,
		"dim":        h.styles.Dim.Render,
		"flags":      h.formatFlags,
		"join":       strings.Join,
		"rpad":       rpad,
		"trimRight":  trimRightLines,
	}
	h.usage = template.Must(template.New("usage").Funcs(funcs).Parse(usageTemplate))
	h.help = template.Must(template.New("help").Funcs(funcs).Parse(helpTemplate))

	return h
}

// ApplyToCommand installs the styled help and usage functions on cmd. Subcommands inherit them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetUsageFunc(func(command *cobra.Command) error {
		if err := h.usage.Execute(command.OutOrStderr(), command); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
		return nil
	})
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := h.help.Execute(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
}

// formatFlags styles pflag's usage block: flag names in the flag color, value
// placeholders dimmed, descriptions untouched.
func (h *HelpFormatter) formatFlags(flags *pflag.FlagSet) string {
	usages := strings.TrimSuffix(flags.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.formatFlagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h *HelpFormatter) formatFlagLine(line string) string {
	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]

	// pflag pads the name column with at least two spaces before the description.
	split := strings.Index(body, "  ")
	if split < 0 {
		return line
	}
	names, desc := body[:split], strings.TrimLeft(body[split:], " ")

	fields := strings.Fields(names)
	for i, field := range fields {
		if strings.HasPrefix(field, "-") {
			name, comma := strings.CutSuffix(field, ",")
			fields[i] = h.styles.Flag.Render(name)
			if comma {
				fields[i] += ","
			}
			continue
		}
		fields[i] = h.styles.Dim.Render(field)
	}

	return indent + strings.Join(fields, " ") + "   " + desc
}

func rpad(str string, width int) string {
	if len(str) >= width {
		return str
	}
	return str + strings.Repeat(" ", width-len(str))
}

func trimRightLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
