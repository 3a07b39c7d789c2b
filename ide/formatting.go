package ide

import (
	"fmt"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/assists"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// FormatDocument delegates to the external formatter. If the formatted
// result equals the input, no edit is returned. Otherwise a single
// replacement spanning [0, text.len()) is returned.
func (a *Analysis) FormatDocument(file vfs.FileId) (assists.TextEdit, bool, error) {
	if a.formatter == nil {
		return assists.TextEdit{}, false, nil
	}
	text, ok := a.fileText(file)
	if !ok {
		return assists.TextEdit{}, false, nil
	}

	formatted, err := a.formatter.Format(text)
	if err != nil {
		return assists.TextEdit{}, false, fmt.Errorf("ide: format document: %w", err)
	}
	if formatted == text {
		return assists.TextEdit{}, false, nil
	}

	return assists.TextEdit{
		Range:   span.NewTextRange(0, span.TextSize(len(text))),
		NewText: formatted,
	}, true, nil
}
