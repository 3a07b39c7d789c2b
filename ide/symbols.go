package ide

import (
	"sort"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/idedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// SymbolKind mirrors hir.DefKind for the IDE-facing symbol shape.
type SymbolKind = hir.DefKind

// SymbolInfo is one entry of a syntax outline / document symbol tree: a
// child's Range is always contained in its parent's Range.
type SymbolInfo struct {
	Kind           SymbolKind
	Name           string
	Range          span.TextRange
	SelectionRange span.TextRange
	Children       []SymbolInfo
}

// WorkspaceSymbols returns every definition whose name contains query
// (case-insensitive substring match), as (kind, name, file, range) tuples.
func (a *Analysis) WorkspaceSymbols(query string) []idedb.SymbolEntry {
	return a.symbolIndex.Search(query)
}

// DocumentSymbols returns file's definitions nested into a nesting tree via
// range containment: a definition D is a child of definition P iff P's
// DefiningRange contains D's DefiningRange (equal ranges included; the one
// sorted first becomes the parent) and no tighter containing definition
// exists. This is the hierarchical shape LSP's
// DocumentSymbol expects and is identical to SyntaxOutline's shape.
func (a *Analysis) DocumentSymbols(file vfs.FileId) []SymbolInfo {
	return a.SyntaxOutline(file)
}

// SyntaxOutline builds the nesting tree described above for file's
// definitions from the semantic snapshot. Ranges are well-nested by
// construction: children are only attached under the tightest definition
// whose range contains them.
func (a *Analysis) SyntaxOutline(file vfs.FileId) []SymbolInfo {
	var inFile []hir.Definition
	for _, d := range a.sema.Definitions() {
		if d.FileID == file {
			inFile = append(inFile, d)
		}
	}

	sort.Slice(inFile, func(i, j int) bool {
		if inFile[i].DefiningRange.Start != inFile[j].DefiningRange.Start {
			return inFile[i].DefiningRange.Start < inFile[j].DefiningRange.Start
		}
		return inFile[i].DefiningRange.End > inFile[j].DefiningRange.End
	})

	return nestDefinitions(inFile)
}

// nestDefinitions assumes defs is sorted by (Start asc, End desc), so a
// containing definition always precedes the definitions it contains.
// Builds the tree with a plain recursive pass over indices rather than
// mutating pointers into growing slices.
func nestDefinitions(defs []hir.Definition) []SymbolInfo {
	nodes, _ := buildSiblings(defs, 0, span.TextRange{Start: 0, End: ^span.TextSize(0)})
	return nodes
}

// buildSiblings consumes defs[from:] while they fall within bound, grouping
// each run of definitions contained in the first one as its children.
// Returns the built siblings and the index just past the last consumed def.
func buildSiblings(defs []hir.Definition, from int, bound span.TextRange) ([]SymbolInfo, int) {
	var out []SymbolInfo
	i := from
	for i < len(defs) {
		d := defs[i]
		if !bound.ContainsRange(d.DefiningRange) {
			break
		}
		children, next := buildSiblings(defs, i+1, d.DefiningRange)
		out = append(out, SymbolInfo{
			Kind:           d.Kind,
			Name:           d.Name,
			Range:          d.DefiningRange,
			SelectionRange: d.SelectionRange,
			Children:       children,
		})
		i = next
	}
	return out, i
}
