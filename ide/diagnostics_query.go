package ide

import (
	"github.com/solidity-analyzer/solidity-analyzer-lsp/diagnostics"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// DiagnosticsProvider supplies raw compiler/linter diagnostics for a file —
// the external compiler and linter toolchain invocations are out of this
// layer's scope; the server wires a concrete provider per project.
type DiagnosticsProvider interface {
	Diagnostics(file vfs.FileId) ([]diagnostics.RawDiagnostic, error)
}

// Diagnostics normalizes and merges provider's raw output for file using
// the fixable-lint catalog, then sorts the result for stable client
// rendering.
func (a *Analysis) Diagnostics(file vfs.FileId, provider DiagnosticsProvider, catalog diagnostics.FixableCatalog) ([]diagnostics.Diagnostic, error) {
	raw, err := provider.Diagnostics(file)
	if err != nil {
		return nil, err
	}
	normalized := make([]diagnostics.Diagnostic, 0, len(raw))
	for _, r := range raw {
		normalized = append(normalized, diagnostics.Normalize(r, catalog))
	}
	merged := diagnostics.Merge(normalized)
	diagnostics.Sort(merged)
	return merged, nil
}
