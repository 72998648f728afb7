package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/yaklabco/gorazor/pkg/diag"
	"github.com/yaklabco/gorazor/pkg/directive"
	"github.com/yaklabco/gorazor/pkg/parser"
	"github.com/yaklabco/gorazor/pkg/position"
	"github.com/yaklabco/gorazor/pkg/source"
	"github.com/yaklabco/gorazor/pkg/syntax"
)

// applyChange applies one content change event to content.
func applyChange(uri string, content []byte, change any) []byte {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return []byte(c.Text)
	case *protocol.TextDocumentContentChangeEventWhole:
		return []byte(c.Text)
	case protocol.TextDocumentContentChangeEvent:
		return applyRangeChange(uri, content, c)
	case *protocol.TextDocumentContentChangeEvent:
		return applyRangeChange(uri, content, *c)
	default:
		return content
	}
}

func applyRangeChange(uri string, content []byte, change protocol.TextDocumentContentChangeEvent) []byte {
	if change.Range == nil {
		return []byte(change.Text)
	}

	mapper := position.NewMapper(source.NewDocument(uri, content))
	start, ok := mapper.OffsetFromUTF16(fromProtocolPosition(change.Range.Start))
	if !ok {
		start = len(content)
	}
	end, ok := mapper.OffsetFromUTF16(fromProtocolPosition(change.Range.End))
	if !ok {
		end = len(content)
	}
	end = max(end, start)

	updated := make([]byte, 0, len(content)-(end-start)+len(change.Text))
	updated = append(updated, content[:start]...)
	updated = append(updated, change.Text...)
	return append(updated, content[end:]...)
}

// convertDiagnostics maps parse diagnostics to protocol diagnostics.
func convertDiagnostics(result *parser.Result) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(result.Diagnostics))
	if len(result.Diagnostics) == 0 {
		return diagnostics
	}

	mapper := position.NewMapper(result.Document)
	origin := lsName
	for _, d := range result.Diagnostics {
		severity := toProtocolSeverity(d.Severity)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toProtocolRange(mapper.UTF16Span(d.Span)),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(d.Code)},
			Source:   &origin,
			Message:  d.Message,
		})
	}
	return diagnostics
}

func toProtocolSeverity(severity diag.Severity) protocol.DiagnosticSeverity {
	switch severity {
	case diag.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diag.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// hoverAt describes the directive under pos, or returns nil.
func hoverAt(result *parser.Result, pos protocol.Position) *protocol.Hover {
	mapper := position.NewMapper(result.Document)
	offset, ok := mapper.OffsetFromUTF16(fromProtocolPosition(pos))
	if !ok {
		return nil
	}

	path := position.PathAt(result.Root, offset)
	for depth := len(path); depth > 0; depth-- {
		node := path[depth-1]
		if node.Kind() != syntax.NodeDirective || node.Descriptor() == nil {
			continue
		}

		span, ok := position.TrimmedSpan(path[:depth])
		if !ok {
			return nil
		}
		hoverRange := toProtocolRange(mapper.UTF16Span(span))
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: directiveMarkdown(node.Descriptor()),
			},
			Range: &hoverRange,
		}
	}
	return nil
}

func directiveMarkdown(desc *directive.Descriptor) string {
	var b strings.Builder
	b.WriteString("```\n")
	b.WriteString(desc.Signature())
	b.WriteString("\n```\n\n")
	if desc.Description != "" {
		b.WriteString(desc.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("Kind: `" + string(desc.Kind) + "`, usage: `" + string(desc.Usage) + "`")
	return b.String()
}

// documentSymbols lists the directives of a document.
func documentSymbols(result *parser.Result) []protocol.DocumentSymbol {
	mapper := position.NewMapper(result.Document)

	symbols := []protocol.DocumentSymbol{}
	for _, path := range result.Directives() {
		node := path.Node()
		span, ok := position.TrimmedSpan(path)
		if !ok {
			continue
		}

		symbolRange := toProtocolRange(mapper.UTF16Span(span))
		symbol := protocol.DocumentSymbol{
			Name:           "@" + node.Name(),
			Kind:           symbolKind(node.Descriptor()),
			Range:          symbolRange,
			SelectionRange: symbolRange,
		}
		if detail := directiveArguments(node); detail != "" {
			symbol.Detail = &detail
		}
		symbols = append(symbols, symbol)
	}
	return symbols
}

// directiveArguments joins the non-empty argument texts of a directive node.
func directiveArguments(node *syntax.Node) string {
	var args []string
	for _, child := range node.Children() {
		if child.Kind() != syntax.NodeDirectiveArgument {
			continue
		}
		if text := strings.TrimSpace(child.Content()); text != "" {
			args = append(args, text)
		}
	}
	return strings.Join(args, " ")
}

func symbolKind(desc *directive.Descriptor) protocol.SymbolKind {
	if desc == nil {
		return protocol.SymbolKindProperty
	}

	switch desc.Name {
	case directive.NamePackage:
		return protocol.SymbolKindPackage
	case directive.NameImport:
		return protocol.SymbolKindModule
	case directive.NameModel, directive.NameInherits, directive.NameLayout:
		return protocol.SymbolKindClass
	case directive.NameImplements:
		return protocol.SymbolKindInterface
	case directive.NameInject:
		return protocol.SymbolKindField
	case directive.NameTypeParam:
		return protocol.SymbolKindTypeParameter
	}

	switch desc.Kind {
	case directive.KindCodeBlock:
		return protocol.SymbolKindFunction
	case directive.KindRazorBlock:
		return protocol.SymbolKindNamespace
	default:
		return protocol.SymbolKindProperty
	}
}

// foldingRanges returns one range per multi-line block construct, in document order.
func foldingRanges(result *parser.Result) []protocol.FoldingRange {
	mapper := position.NewMapper(result.Document)

	ranges := []protocol.FoldingRange{}
	_ = syntax.Walk(result.Root, func(path syntax.Path) error {
		node := path.Node()
		closed, ok := foldable(node)
		if !ok {
			return nil
		}

		span, ok := position.TrimmedSpan(path)
		if !ok {
			return nil
		}
		lines := mapper.MapSpan(span)

		// Keep the line holding the closing delimiter visible.
		endLine := lines.End.Line
		if closed {
			endLine--
		}
		if endLine <= lines.Start.Line {
			return nil
		}

		ranges = append(ranges, protocol.FoldingRange{
			StartLine: protocol.UInteger(lines.Start.Line),
			EndLine:   protocol.UInteger(endLine),
		})
		return nil
	})
	return ranges
}

// foldable reports whether node can fold and whether it ends with a closing delimiter line.
func foldable(node *syntax.Node) (closed, ok bool) {
	switch node.Kind() {
	case syntax.NodeMarkupElement, syntax.NodeCodeBlock, syntax.NodeStatement, syntax.NodeTemplate:
		return true, true
	case syntax.NodeDirective:
		desc := node.Descriptor()
		return true, desc != nil && desc.HasBlock()
	case syntax.NodeRazorComment, syntax.NodeMarkupComment:
		return false, true
	default:
		return false, false
	}
}

func fromProtocolPosition(pos protocol.Position) position.LinePosition {
	return position.LinePosition{Line: int(pos.Line), Character: int(pos.Character)}
}

func toProtocolRange(span position.LinePositionSpan) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(span.Start.Line), Character: protocol.UInteger(span.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(span.End.Line), Character: protocol.UInteger(span.End.Character)},
	}
}
