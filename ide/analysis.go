// Package ide is the IDE façade: an immutable Analysis snapshot exposing
// the entire read-only query surface (completions, hover, goto-definition,
// find-references, rename, workspace/document symbols, syntax outline,
// formatting, code actions, signature help, diagnostics) as pure methods
// taking a FileId and, where relevant, an offset. Queries never write the
// VFS or mutate state visible to concurrent queries.
package ide

import (
	"fmt"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/basedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/idedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/syntax"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// ExternalFormatter is the out-of-scope collaborator providing canonical
// Solidity formatting (forge fmt equivalent).
type ExternalFormatter interface {
	Format(text string) (string, error)
}

// AnalysisHost owns the long-lived layers (VFS, base registry, syntax and
// semantic caches) and hands out immutable Analysis snapshots.
type AnalysisHost struct {
	Vfs        *vfs.Vfs
	Base       *basedb.Base
	SyntaxHost *syntax.Host
	HirHost    *hir.Host
	Formatter  ExternalFormatter
}

// NewAnalysisHost wires the four layers into one host.
func NewAnalysisHost(vfsStore *vfs.Vfs, base *basedb.Base, syntaxHost *syntax.Host, hirHost *hir.Host, formatter ExternalFormatter) *AnalysisHost {
	return &AnalysisHost{Vfs: vfsStore, Base: base, SyntaxHost: syntaxHost, HirHost: hirHost, Formatter: formatter}
}

// Snapshot builds the immutable Analysis for project at the current VFS
// generation: a semantic snapshot, a cross-file symbol index, and a
// reference index over every file the project owns.
func (h *AnalysisHost) Snapshot(project basedb.ProjectId) (*Analysis, error) {
	vfsSnap := h.Vfs.Snapshot()
	baseSnap := h.Base.Snapshot(vfsSnap)

	sema, err := h.HirHost.SnapshotFor(project, vfsSnap)
	if err != nil {
		return nil, fmt.Errorf("ide: build semantic snapshot: %w", err)
	}

	symbolIndex := idedb.BuildSymbolIndex(sema)
	files := baseSnap.FilesIn(project)
	refResolver := newLexicalReferenceResolver(vfsSnap, sema)
	refIndex := idedb.BuildReferenceIndex(sema, refResolver, files)

	return &Analysis{
		project:     project,
		base:        baseSnap,
		sema:        sema,
		syntaxHost:  h.SyntaxHost,
		formatter:   h.Formatter,
		symbolIndex: symbolIndex,
		refIndex:    refIndex,
	}, nil
}

// Analysis is the immutable, point-in-time query surface. All methods are
// pure: they read the snapshot captured at construction and never mutate
// shared state.
type Analysis struct {
	project     basedb.ProjectId
	base        basedb.Snapshot
	sema        *hir.SemanticSnapshot
	syntaxHost  *syntax.Host
	formatter   ExternalFormatter
	symbolIndex *idedb.SymbolIndex
	refIndex    *idedb.ReferenceIndex
}

func (a *Analysis) fileText(file vfs.FileId) (string, bool) {
	s, ok := a.base.Vfs().FileText(file)
	if !ok {
		return "", false
	}
	return s.String(), true
}

// identAt returns the identifier token covering offset in text, if any.
func identAt(text string, offset span.TextSize) (string, span.TextRange, bool) {
	o := int(offset)
	if o < 0 || o > len(text) {
		return "", span.TextRange{}, false
	}

	start := o
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	end := o
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	if start == end {
		return "", span.TextRange{}, false
	}
	return text[start:end], span.NewTextRange(span.TextSize(start), span.TextSize(end)), true
}

// resolveDefinitionAt finds the Definition whose selection range covers
// offset in file, falling back to a name match against the identifier at
// offset (the lexical approximation this module uses everywhere a real
// parser position would normally be consulted).
func (a *Analysis) resolveDefinitionAt(file vfs.FileId, offset span.TextSize) (hir.Definition, bool) {
	for _, d := range a.sema.Definitions() {
		if d.FileID == file && d.SelectionRange.ContainsInclusive(offset) {
			return d, true
		}
	}
	text, ok := a.fileText(file)
	if !ok {
		return hir.Definition{}, false
	}
	name, _, ok := identAt(text, offset)
	if !ok {
		return hir.Definition{}, false
	}
	for _, d := range a.sema.Definitions() {
		if d.Name == name {
			return d, true
		}
	}
	return hir.Definition{}, false
}
