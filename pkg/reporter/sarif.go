package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/runner"
)

const (
	sarifVersion   = "2.1.0"
	sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	toolName       = "gorazor"
	toolURI        = "https://github.com/yaklabco/gorazor"
)

// SARIF 2.1.0 document model, limited to the properties gorazor fills in.
type (
	SARIFOutput struct {
		Schema  string     `json:"$schema"`
		Version string     `json:"version"`
		Runs    []SARIFRun `json:"runs"`
	}

	SARIFRun struct {
		Tool        SARIFTool         `json:"tool"`
		Artifacts   []SARIFArtifact   `json:"artifacts,omitempty"`
		Results     []SARIFResult     `json:"results"`
		Invocations []SARIFInvocation `json:"invocations,omitempty"`
	}

	SARIFTool struct {
		Driver SARIFDriver `json:"driver"`
	}

	SARIFDriver struct {
		Name           string      `json:"name"`
		Version        string      `json:"version"`
		InformationURI string      `json:"informationUri"`
		Rules          []SARIFRule `json:"rules"`
	}

	// SARIFRule describes one diagnostic code.
	SARIFRule struct {
		ID               string           `json:"id"`
		Name             string           `json:"name,omitempty"`
		ShortDescription SARIFMessage     `json:"shortDescription"`
		DefaultConfig    *SARIFRuleConfig `json:"defaultConfiguration,omitempty"`
	}

	SARIFRuleConfig struct {
		Level string `json:"level"`
	}

	// SARIFArtifact is one parsed file.
	SARIFArtifact struct {
		Location SARIFArtifactLocation `json:"location"`
		Length   int                   `json:"length"`
	}

	SARIFResult struct {
		RuleID    string          `json:"ruleId"`
		RuleIndex int             `json:"ruleIndex"`
		Level     string          `json:"level"`
		Message   SARIFMessage    `json:"message"`
		Locations []SARIFLocation `json:"locations"`
	}

	SARIFMessage struct {
		Text string `json:"text"`
	}

	SARIFLocation struct {
		PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
	}

	SARIFPhysicalLocation struct {
		ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
		Region           *SARIFRegion          `json:"region,omitempty"`
	}

	SARIFArtifactLocation struct {
		URI   string `json:"uri"`
		Index *int   `json:"index,omitempty"`
	}

	// SARIFRegion uses 1-based lines and byte columns, plus the raw byte span.
	SARIFRegion struct {
		StartLine   int `json:"startLine"`
		StartColumn int `json:"startColumn,omitempty"`
		EndLine     int `json:"endLine,omitempty"`
		EndColumn   int `json:"endColumn,omitempty"`
		ByteOffset  int `json:"byteOffset"`
		ByteLength  int `json:"byteLength"`
	}

	// SARIFInvocation carries one notification per file that could not be read.
	SARIFInvocation struct {
		ExecutionSuccessful        bool                `json:"executionSuccessful"`
		ToolExecutionNotifications []SARIFNotification `json:"toolExecutionNotifications,omitempty"`
	}

	SARIFNotification struct {
		Level     string          `json:"level"`
		Message   SARIFMessage    `json:"message"`
		Locations []SARIFLocation `json:"locations,omitempty"`
	}
)

// SARIFReporter writes results as a single-run SARIF log for code scanning
// services.
type SARIFReporter struct {
	opts Options
}

// NewSARIFReporter creates a SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{opts: opts}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	builder := newSARIFBuilder(r.opts.ToolVersion)
	if result != nil {
		for _, file := range result.Files {
			builder.addFile(filepath.ToSlash(r.opts.displayPath(file.Path)), file)
		}
	}
	run := builder.finish()

	enc := json.NewEncoder(r.opts.Writer)
	if !r.opts.Compact {
		enc.SetIndent("", "  ")
	}
	doc := SARIFOutput{Schema: sarifSchemaURI, Version: sarifVersion, Runs: []SARIFRun{run}}
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}
	return len(run.Results), nil
}

// sarifBuilder accumulates one run. Rules are listed in first-seen order.
type sarifBuilder struct {
	run           SARIFRun
	rules         map[diag.Code]int
	notifications []SARIFNotification
}

func newSARIFBuilder(version string) *sarifBuilder {
	return &sarifBuilder{
		run: SARIFRun{
			Tool: SARIFTool{Driver: SARIFDriver{
				Name:           toolName,
				Version:        version,
				InformationURI: toolURI,
				Rules:          []SARIFRule{},
			}},
			Results: []SARIFResult{},
		},
		rules: make(map[diag.Code]int),
	}
}

func (b *sarifBuilder) addFile(uri string, file runner.FileOutcome) {
	if file.Error != nil {
		b.notifications = append(b.notifications, SARIFNotification{
			Level:     "error",
			Message:   SARIFMessage{Text: file.Error.Error()},
			Locations: []SARIFLocation{{PhysicalLocation: SARIFPhysicalLocation{ArtifactLocation: SARIFArtifactLocation{URI: uri}}}},
		})
		return
	}
	if file.Result == nil {
		return
	}

	artifact := len(b.run.Artifacts)
	entry := SARIFArtifact{Location: SARIFArtifactLocation{URI: uri}}
	if doc := file.Result.Document; doc != nil {
		entry.Length = doc.Len()
	}
	b.run.Artifacts = append(b.run.Artifacts, entry)

	for _, loc := range file.Located() {
		b.run.Results = append(b.run.Results, SARIFResult{
			RuleID:    string(loc.Code),
			RuleIndex: b.rule(loc.Code),
			Level:     sarifLevel(loc.Severity),
			Message:   SARIFMessage{Text: loc.Message},
			Locations: []SARIFLocation{{PhysicalLocation: SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: uri, Index: &artifact},
				Region: &SARIFRegion{
					StartLine:   loc.Line(),
					StartColumn: loc.Column(),
					EndLine:     loc.EndLine(),
					EndColumn:   loc.EndColumn(),
					ByteOffset:  loc.Span.Start,
					ByteLength:  loc.Span.Length,
				},
			}}},
		})
	}
}

// rule returns the index of code in the driver's rule list, adding it first
// when needed.
func (b *sarifBuilder) rule(code diag.Code) int {
	if idx, ok := b.rules[code]; ok {
		return idx
	}
	idx := len(b.run.Tool.Driver.Rules)
	b.rules[code] = idx
	b.run.Tool.Driver.Rules = append(b.run.Tool.Driver.Rules, SARIFRule{
		ID:               string(code),
		Name:             code.Title(),
		ShortDescription: SARIFMessage{Text: code.Title()},
		DefaultConfig:    &SARIFRuleConfig{Level: sarifLevel(code.DefaultSeverity())},
	})
	return idx
}

func (b *sarifBuilder) finish() SARIFRun {
	if len(b.notifications) > 0 {
		b.run.Invocations = []SARIFInvocation{{ToolExecutionNotifications: b.notifications}}
	}
	return b.run
}

// sarifLevel maps a severity to a SARIF level. Fatal is reported as error.
func sarifLevel(severity diag.Severity) string {
	switch severity {
	case diag.SeverityFatal, diag.SeverityError:
		return "error"
	case diag.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
