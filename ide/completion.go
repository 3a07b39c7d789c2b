package ide

import (
	"strings"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// CompletionItemKind classifies a completion candidate.
type CompletionItemKind int

const (
	CompletionContract CompletionItemKind = iota
	CompletionFunction
	CompletionStruct
	CompletionEnum
	CompletionEvent
	CompletionError
	CompletionModifier
	CompletionVariable
	CompletionType
	CompletionFile
)

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label            string
	Kind             CompletionItemKind
	ReplacementRange span.TextRange
}

func completionKindFor(k hir.DefKind) CompletionItemKind {
	switch k {
	case hir.DefKindContract:
		return CompletionContract
	case hir.DefKindFunction:
		return CompletionFunction
	case hir.DefKindStruct:
		return CompletionStruct
	case hir.DefKindEnum:
		return CompletionEnum
	case hir.DefKindEvent:
		return CompletionEvent
	case hir.DefKindError:
		return CompletionError
	case hir.DefKindModifier:
		return CompletionModifier
	case hir.DefKindVariable:
		return CompletionVariable
	case hir.DefKindUdvt:
		return CompletionType
	default:
		return CompletionVariable
	}
}

// braceDepthAt returns the nesting depth of unmatched `{` immediately
// before offset — a brace-counting heuristic for whether a position sits
// inside a contract body without a full parse. Completions computes it but
// does not filter candidates by it.
func braceDepthAt(text string, offset span.TextSize) int {
	depth := 0
	limit := int(offset)
	if limit > len(text) {
		limit = len(text)
	}
	for i := 0; i < limit; i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// insideImportStringLiteral reports whether offset falls within a quoted
// string on the same line as an `import` keyword — the position completion
// treats as "inside an import path" to offer file aliases instead of
// symbols.
func insideImportStringLiteral(text string, offset span.TextSize) bool {
	o := int(offset)
	if o > len(text) {
		return false
	}
	lineStart := strings.LastIndexByte(text[:o], '\n') + 1
	line := text[lineStart:o]
	if !strings.Contains(line, "import") {
		return false
	}
	return strings.Count(line, `"`)%2 == 1
}

// Completions returns candidates at (file, offset). Inside an import path
// string literal it offers the base names of the project's other files;
// everywhere else it offers every definition in the semantic snapshot.
// Candidates are not filtered by scope, by brace depth, or by the text
// already typed at the cursor.
func (a *Analysis) Completions(file vfs.FileId, offset span.TextSize) []CompletionItem {
	text, ok := a.fileText(file)
	if !ok {
		return nil
	}
	replacement := span.PointRange(offset)
	if name, r, ok := identAt(text, offset); ok {
		_ = name
		replacement = r
	}

	if insideImportStringLiteral(text, offset) {
		var items []CompletionItem
		for _, fid := range a.base.FilesIn(a.project) {
			if fid == file {
				continue
			}
			path, ok := a.base.Vfs().Path(fid)
			if !ok {
				continue
			}
			items = append(items, CompletionItem{Label: path.Base(), Kind: CompletionFile, ReplacementRange: replacement})
		}
		return items
	}

	_ = braceDepthAt(text, offset) // computed but not used to filter: every definition is offered below

	var items []CompletionItem
	for _, d := range a.sema.Definitions() {
		items = append(items, CompletionItem{
			Label:            d.Name,
			Kind:             completionKindFor(d.Kind),
			ReplacementRange: replacement,
		})
	}
	return items
}
