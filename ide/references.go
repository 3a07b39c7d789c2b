package ide

import (
	"regexp"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/idedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

var identToken = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

// lexicalReferenceResolver finds occurrences of a known global definition's
// name by scanning identifier tokens, since the real name-resolution pass
// is the external semantic analyzer's job (ExternalSema) and out of this
// layer's scope. It resolves a token to a DefId only when the token's text
// matches exactly one global definition's name, mirroring the approach
// project.ScanImports takes for import statements.
type lexicalReferenceResolver struct {
	vfsSnap vfs.VfsSnapshot
	byName  map[string]hir.DefId
}

func newLexicalReferenceResolver(vfsSnap vfs.VfsSnapshot, sema *hir.SemanticSnapshot) *lexicalReferenceResolver {
	byName := make(map[string]hir.DefId)
	seen := make(map[string]bool)
	for _, d := range sema.Definitions() {
		if d.Global == nil {
			continue
		}
		if seen[d.Name] {
			delete(byName, d.Name) // ambiguous name across defs: skip entirely
			continue
		}
		seen[d.Name] = true
		byName[d.Name] = *d.Global
	}
	return &lexicalReferenceResolver{vfsSnap: vfsSnap, byName: byName}
}

// OccurrencesIn implements idedb.ReferenceResolver.
func (r *lexicalReferenceResolver) OccurrencesIn(fileID vfs.FileId) []idedb.ResolvedOccurrence {
	entry, ok := r.vfsSnap.FileText(fileID)
	if !ok {
		return nil
	}
	text := entry.String()

	var out []idedb.ResolvedOccurrence
	for _, m := range identToken.FindAllStringIndex(text, -1) {
		name := text[m[0]:m[1]]
		defID, ok := r.byName[name]
		if !ok {
			continue
		}
		out = append(out, idedb.ResolvedOccurrence{
			DefID: defID,
			Range: span.NewTextRange(span.TextSize(m[0]), span.TextSize(m[1])),
		})
	}
	return out
}
