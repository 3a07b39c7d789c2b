// Package idedb builds two cross-file indexes over a semantic snapshot: a
// case-insensitive symbol search index and a definition-to-references
// index. Both are rebuilt lazily per (project, semantic snapshot) and are
// immutable once built.
package idedb

import (
	"sort"
	"strings"
	"sync"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// SymbolEntry is one hit of a symbol search.
type SymbolEntry struct {
	Name   string
	Kind   hir.DefKind
	DefID  hir.DefId
	FileID vfs.FileId
	Range  span.TextRange
}

// SymbolIndex maps name fragments to matching definitions via
// case-insensitive substring search.
type SymbolIndex struct {
	entries []SymbolEntry
}

// BuildSymbolIndex indexes every Definition in snap. Definitions without a
// Global DefId (purely Local ones) are omitted — the symbol index is a
// cross-file index by construction.
func BuildSymbolIndex(snap *hir.SemanticSnapshot) *SymbolIndex {
	defs := snap.Definitions()
	entries := make([]SymbolEntry, 0, len(defs))
	for _, d := range defs {
		if d.Global == nil {
			continue
		}
		entries = append(entries, SymbolEntry{
			Name:   d.Name,
			Kind:   d.Kind,
			DefID:  *d.Global,
			FileID: d.FileID,
			Range:  d.SelectionRange,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FileID != entries[j].FileID {
			return entries[i].FileID < entries[j].FileID
		}
		return entries[i].Range.Start < entries[j].Range.Start
	})
	return &SymbolIndex{entries: entries}
}

// Search returns every entry whose name contains fragment (case-insensitive
// substring match), ordered by (FileId, Range.Start).
func (idx *SymbolIndex) Search(fragment string) []SymbolEntry {
	if fragment == "" {
		return append([]SymbolEntry(nil), idx.entries...)
	}
	needle := strings.ToLower(fragment)
	var out []SymbolEntry
	for _, e := range idx.entries {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

// ReferenceIndex maps a global DefId to every (FileId, range) where an
// identifier textually resolves to it, including the defining occurrence.
type ReferenceIndex struct {
	mu   sync.Mutex
	refs map[hir.DefId][]Occurrence
}

// Occurrence is one textual occurrence of a resolved identifier.
type Occurrence struct {
	FileID vfs.FileId
	Range  span.TextRange
}

// ReferenceResolver is the minimal collaborator BuildReferenceIndex needs:
// for each file in the snapshot, enumerate identifier occurrences and the
// DefId (if any) they resolve to. Backed by hir + syntax in production;
// stubbed directly in tests.
type ReferenceResolver interface {
	OccurrencesIn(fileID vfs.FileId) []ResolvedOccurrence
}

// ResolvedOccurrence is one identifier occurrence with its resolved
// definition, as reported by a ReferenceResolver.
type ResolvedOccurrence struct {
	DefID hir.DefId
	Range span.TextRange
}

// BuildReferenceIndex indexes references across every file owned by the
// project, using resolver to enumerate occurrences per file and snap to
// seed each definition with its defining occurrence.
func BuildReferenceIndex(snap *hir.SemanticSnapshot, resolver ReferenceResolver, files []vfs.FileId) *ReferenceIndex {
	refs := make(map[hir.DefId][]Occurrence)

	for _, d := range snap.Definitions() {
		if d.Global == nil {
			continue
		}
		refs[*d.Global] = append(refs[*d.Global], Occurrence{FileID: d.FileID, Range: d.SelectionRange})
	}

	for _, f := range files {
		for _, occ := range resolver.OccurrencesIn(f) {
			refs[occ.DefID] = append(refs[occ.DefID], Occurrence{FileID: f, Range: occ.Range})
		}
	}

	for id, occs := range refs {
		sort.Slice(occs, func(i, j int) bool {
			if occs[i].FileID != occs[j].FileID {
				return occs[i].FileID < occs[j].FileID
			}
			return occs[i].Range.Start < occs[j].Range.Start
		})
		refs[id] = dedupOccurrences(occs)
	}

	return &ReferenceIndex{refs: refs}
}

func dedupOccurrences(occs []Occurrence) []Occurrence {
	out := occs[:0:0]
	for i, o := range occs {
		if i > 0 && o == occs[i-1] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// For returns every occurrence of defID, defining occurrence included.
func (idx *ReferenceIndex) For(defID hir.DefId) []Occurrence {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return append([]Occurrence(nil), idx.refs[defID]...)
}
