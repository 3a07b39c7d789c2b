package ide

import (
	"github.com/solidity-analyzer/solidity-analyzer-lsp/assists"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// Location is a (file, range) pair, the shape GotoDefinition and
// FindReferences both return.
type Location struct {
	FileID vfs.FileId
	Range  span.TextRange
}

// GotoDefinition resolves the identifier at (file, offset) to its defining
// location. Local definitions resolve to their own file and defining
// range; no match returns ok=false.
func (a *Analysis) GotoDefinition(file vfs.FileId, offset span.TextSize) (Location, bool) {
	d, ok := a.resolveDefinitionAt(file, offset)
	if !ok {
		return Location{}, false
	}
	return Location{FileID: d.FileID, Range: d.DefiningRange}, true
}

// FindReferences returns every occurrence of the identifier at (file,
// offset), defining occurrence included for global definitions. Purely
// local definitions return only their own defining range, since local
// references never cross files.
func (a *Analysis) FindReferences(file vfs.FileId, offset span.TextSize) []Location {
	d, ok := a.resolveDefinitionAt(file, offset)
	if !ok {
		return nil
	}
	if d.Global == nil {
		return []Location{{FileID: d.FileID, Range: d.DefiningRange}}
	}
	occs := a.refIndex.For(*d.Global)
	out := make([]Location, 0, len(occs))
	for _, o := range occs {
		out = append(out, Location{FileID: o.FileID, Range: o.Range})
	}
	return out
}

// isIdentByte/isValidIdentifier mirror the identifier grammar used throughout
// this module: first byte not a digit, every byte in [A-Za-z0-9_$].
func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	first := name[0]
	if !isIdentByte(first) || (first >= '0' && first <= '9') {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return false
		}
	}
	return true
}

// Rename validates newName against the identifier grammar, resolves the
// definition at (file, offset), collects its references (global via
// IDE-DB, local limited to its own file), and builds a normalized
// SourceChange. Fails softly (no change, ok=false) when the cursor is not
// on a renamable identifier or newName is invalid.
func (a *Analysis) Rename(file vfs.FileId, offset span.TextSize, newName string) (assists.SourceChange, bool) {
	var change assists.SourceChange
	if !isValidIdentifier(newName) {
		return change, false
	}

	locs := a.FindReferences(file, offset)
	if len(locs) == 0 {
		return change, false
	}

	for _, l := range locs {
		change.InsertEdit(l.FileID, assists.TextEdit{Range: l.Range, NewText: newName})
	}
	change.Normalize()
	return change, true
}
