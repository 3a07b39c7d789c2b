package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/diagnostics"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

const diagnosticSourceName = "solidity-analyzer"

// toUInteger safely converts an int to protocol.UInteger (uint32).
func toUInteger(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n)
}

func toProtocolRange(content []byte, r span.TextRange, enc span.PositionEncoding) protocol.Range {
	start, end := RangeToPositions(content, r, enc)
	return protocol.Range{
		Start: protocol.Position{Line: toUInteger(start.Line), Character: toUInteger(start.Character)},
		End:   protocol.Position{Line: toUInteger(end.Line), Character: toUInteger(end.Character)},
	}
}

func toProtocolSeverity(sev diagnostics.Severity) *protocol.DiagnosticSeverity {
	var s protocol.DiagnosticSeverity
	switch sev {
	case diagnostics.Error:
		s = protocol.DiagnosticSeverityError
	case diagnostics.Warning:
		s = protocol.DiagnosticSeverityWarning
	case diagnostics.Info:
		s = protocol.DiagnosticSeverityInformation
	case diagnostics.Hint:
		s = protocol.DiagnosticSeverityHint
	default:
		s = protocol.DiagnosticSeverityError
	}
	return &s
}

// toProtocolDiagnostic converts one diagnostics.Diagnostic to its LSP wire
// shape. content is the owning file's current text, used for byte-to-UTF16
// range conversion.
func toProtocolDiagnostic(content []byte, d diagnostics.Diagnostic, enc span.PositionEncoding) protocol.Diagnostic {
	source := diagnosticSourceName
	return protocol.Diagnostic{
		Range:    toProtocolRange(content, d.Range, enc),
		Severity: toProtocolSeverity(d.Severity),
		Code:     &protocol.IntegerOrString{Value: d.Code},
		Source:   &source,
		Message:  d.Message,
	}
}

func toProtocolDiagnostics(content []byte, diags []diagnostics.Diagnostic, enc span.PositionEncoding) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toProtocolDiagnostic(content, d, enc))
	}
	return out
}
