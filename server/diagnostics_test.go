package server

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/diagnostics"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

func TestToUInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want protocol.UInteger
	}{
		{-5, 0},
		{0, 0},
		{7, 7},
	}
	for _, tt := range tests {
		if got := toUInteger(tt.in); got != tt.want {
			t.Errorf("toUInteger(%d) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestToProtocolSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   diagnostics.Severity
		want protocol.DiagnosticSeverity
	}{
		{diagnostics.Error, protocol.DiagnosticSeverityError},
		{diagnostics.Warning, protocol.DiagnosticSeverityWarning},
		{diagnostics.Info, protocol.DiagnosticSeverityInformation},
		{diagnostics.Hint, protocol.DiagnosticSeverityHint},
	}
	for _, tt := range tests {
		got := toProtocolSeverity(tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("toProtocolSeverity(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestToProtocolDiagnostic(t *testing.T) {
	t.Parallel()

	path, err := pathutil.FromAbsolute("/ws/src/Token.sol")
	if err != nil {
		t.Fatalf("FromAbsolute() error: %v", err)
	}
	content := []byte("contract Token {\n  function f() public {}\n}\n")

	d := diagnostics.Diagnostic{
		FilePath: path,
		Range:    span.TextRange{Start: 20, End: 28},
		Severity: diagnostics.Warning,
		Code:     "unused-var",
		Message:  "variable is never read",
	}

	got := toProtocolDiagnostic(content, d, span.PositionEncodingUTF16)

	if got.Message != d.Message {
		t.Errorf("Message = %q; want %q", got.Message, d.Message)
	}
	if got.Severity == nil || *got.Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("Severity = %v; want Warning", got.Severity)
	}
	if got.Code == nil || got.Code.Value != "unused-var" {
		t.Errorf("Code = %v; want unused-var", got.Code)
	}
	if got.Source == nil || *got.Source != diagnosticSourceName {
		t.Errorf("Source = %v; want %q", got.Source, diagnosticSourceName)
	}
	if got.Range.Start.Line != 1 {
		t.Errorf("Range.Start.Line = %d; want 1", got.Range.Start.Line)
	}
}

func TestToProtocolDiagnostics_PreservesCount(t *testing.T) {
	t.Parallel()

	path, err := pathutil.FromAbsolute("/ws/src/Token.sol")
	if err != nil {
		t.Fatalf("FromAbsolute() error: %v", err)
	}
	content := []byte("contract Token {}\n")

	diags := []diagnostics.Diagnostic{
		{FilePath: path, Range: span.TextRange{Start: 0, End: 8}, Severity: diagnostics.Error, Code: "E1"},
		{FilePath: path, Range: span.TextRange{Start: 9, End: 17}, Severity: diagnostics.Hint, Code: "H1"},
	}

	got := toProtocolDiagnostics(content, diags, span.PositionEncodingUTF16)
	if len(got) != len(diags) {
		t.Fatalf("toProtocolDiagnostics() returned %d entries; want %d", len(got), len(diags))
	}
}

func TestToProtocolDiagnostics_Empty(t *testing.T) {
	t.Parallel()

	got := toProtocolDiagnostics(nil, nil, span.PositionEncodingUTF16)
	if len(got) != 0 {
		t.Errorf("toProtocolDiagnostics(nil) = %v; want empty", got)
	}
}
