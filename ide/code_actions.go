package ide

import (
	"github.com/solidity-analyzer/solidity-analyzer-lsp/assists"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/diagnostics"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// CodeActions computes the fixes available for file's diagnostics. Thin
// wrapper over the assists package: this layer only knows how to read the
// current text and hand the diagnostics' (range, code) pairs across.
func (a *Analysis) CodeActions(file vfs.FileId, diags []diagnostics.Diagnostic) []assists.CodeAction {
	text, ok := a.fileText(file)
	if !ok {
		return nil
	}

	assistDiags := make([]assists.Diagnostic, 0, len(diags))
	for _, d := range diags {
		assistDiags = append(assistDiags, assists.Diagnostic{Range: d.Range, Code: d.Code})
	}
	return assists.CodeActions(file, text, assistDiags)
}
