// Package hir builds the per-project semantic snapshot: the cross-file
// resolved view consumed by hover, goto-definition, references, rename,
// completion, signature help and document symbols. The real semantic
// analysis (type checking, linearization, import graph resolution) is
// delegated to ExternalSema; this layer owns snapshot identity, caching and
// the small amount of normalization spec.md assigns to the Go side.
package hir

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/basedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// DefId is a dense integer identifying a globally addressable definition
// within a project's semantic snapshot.
type DefId int

// FuncId identifies a function body within which Local definitions (e.g.
// local variables) are addressed by range rather than by DefId.
type FuncId int

// DefKind classifies a Definition.
type DefKind int

const (
	DefKindContract DefKind = iota
	DefKindFunction
	DefKindStruct
	DefKindEnum
	DefKindEvent
	DefKindError
	DefKindModifier
	DefKindVariable
	DefKindUdvt
)

// Definition is a globally addressable symbol (Global) or a locally
// addressable one (Local, keyed by enclosing function and range).
type Definition struct {
	Name           string
	Kind           DefKind
	FileID         vfs.FileId
	DefiningRange  span.TextRange
	SelectionRange span.TextRange
	Global         *DefId
	Local          *LocalRef
}

// LocalRef addresses a Local definition: a function body plus the range of
// the binding within it.
type LocalRef struct {
	Func  FuncId
	Range span.TextRange
}

// IsGlobal reports whether this Definition carries a DefId rather than a
// LocalRef.
func (d Definition) IsGlobal() bool { return d.Global != nil }

// StorageLocation is the normalized storage location of a reference type.
type StorageLocation int

const (
	StorageMemory StorageLocation = iota
	StorageStorage
	StorageCalldata
)

// TypeRef is a reference to a type as used in some expression or
// declaration context, with storage location normalization applied.
type TypeRef struct {
	Name     string
	Location StorageLocation
	explicit bool
}

// ExternalSema is the out-of-scope collaborator: the real solc/solar
// semantic analyzer, performing type checking, import resolution and C3
// linearization. This layer only caches and normalizes its output.
type ExternalSema interface {
	Analyze(project basedb.ProjectId, vfsSnap vfs.VfsSnapshot) (SemaResult, error)
}

// SemaResult is everything ExternalSema computes for one project snapshot.
type SemaResult struct {
	Definitions     []Definition
	LinearizedBases map[DefId][]DefId
	UnresolvedTypes map[string]bool // names seen as reference types sans explicit location

	// ExplicitLocations carries the storage location ExternalSema resolved
	// for reference types that do declare one (a `storage`/`calldata`
	// keyword on the declaration). Names absent from both this map and
	// UnresolvedTypes are reference types ExternalSema never saw a location
	// for; NormalizeTypeRef treats those as memory too, same as the
	// explicitly-unresolved case.
	ExplicitLocations map[string]StorageLocation
}

// SemanticSnapshot is the cross-file resolved view for one project at one
// VfsSnapshot generation. It pins the VfsSnapshot it was built from so the
// inputs observed during construction remain its cache key for the whole
// snapshot's lifetime.
type SemanticSnapshot struct {
	Project basedb.ProjectId
	vfsSnap vfs.VfsSnapshot

	defsByID map[DefId]Definition
	bases    map[DefId][]DefId

	mu           sync.Mutex
	typeRefMemo  map[string]TypeRef
	unresolved   map[string]bool
	explicitLocs map[string]StorageLocation
}

// VfsSnapshot returns the VFS snapshot this semantic snapshot was built
// from.
func (s *SemanticSnapshot) VfsSnapshot() vfs.VfsSnapshot { return s.vfsSnap }

// Definition looks up a global definition by id.
func (s *SemanticSnapshot) Definition(id DefId) (Definition, bool) {
	d, ok := s.defsByID[id]
	return d, ok
}

// Definitions returns every Definition known to this snapshot, in no
// particular order.
func (s *SemanticSnapshot) Definitions() []Definition {
	out := make([]Definition, 0, len(s.defsByID))
	for _, d := range s.defsByID {
		out = append(out, d)
	}
	return out
}

// LinearizedBases returns contract's C3-consistent base list, as computed
// by ExternalSema. The Go layer does not re-derive linearization; it only
// caches and serves what ExternalSema produced for this snapshot.
func (s *SemanticSnapshot) LinearizedBases(contract DefId) []DefId {
	return s.bases[contract]
}

// NormalizeTypeRef applies the reference-type-to-memory normalization rule:
// a reference type with no explicit storage location is treated as memory
// when used as a value; a reference type that does declare a location keeps
// the location ExternalSema resolved for it. The result is memoized per type
// name so the normalization runs exactly once per (snapshot, name) pair
// regardless of how many call sites query it.
func (s *SemanticSnapshot) NormalizeTypeRef(name string) TypeRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.typeRefMemo[name]; ok {
		return t
	}
	t := TypeRef{Name: name, Location: StorageMemory}
	if loc, ok := s.explicitLocs[name]; ok && !s.unresolved[name] {
		t.Location = loc
		t.explicit = true
	} else {
		t.explicit = false
	}
	s.typeRefMemo[name] = t
	return t
}

// Host owns semantic snapshots for a server instance, deduplicating
// concurrent builds for the same (project, vfs generation) key so two
// simultaneous requests against an unchanged snapshot trigger only one
// ExternalSema.Analyze call.
type Host struct {
	sema  ExternalSema
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*SemanticSnapshot
}

// NewHost creates a Host backed by sema.
func NewHost(sema ExternalSema) *Host {
	return &Host{sema: sema, cache: make(map[string]*SemanticSnapshot)}
}

func snapshotKey(project basedb.ProjectId, vfsSnap vfs.VfsSnapshot) string {
	return fmt.Sprintf("%d:%d", project, vfsSnap.Generation())
}

// SnapshotFor returns the semantic snapshot for (project, vfsSnap),
// building it via ExternalSema.Analyze on first observation of this key and
// serving the cached result thereafter. Concurrent callers racing to build
// the same key collapse onto a single Analyze call (golang.org/x/sync's
// singleflight), satisfying the per-key once-initialization guarantee.
func (h *Host) SnapshotFor(project basedb.ProjectId, vfsSnap vfs.VfsSnapshot) (*SemanticSnapshot, error) {
	key := snapshotKey(project, vfsSnap)

	h.mu.Lock()
	if snap, ok := h.cache[key]; ok {
		h.mu.Unlock()
		return snap, nil
	}
	h.mu.Unlock()

	v, err, _ := h.group.Do(key, func() (any, error) {
		h.mu.Lock()
		if snap, ok := h.cache[key]; ok {
			h.mu.Unlock()
			return snap, nil
		}
		h.mu.Unlock()

		result, err := h.sema.Analyze(project, vfsSnap)
		if err != nil {
			return nil, fmt.Errorf("hir: analyze project %d: %w", project, err)
		}
		defsByID := make(map[DefId]Definition, len(result.Definitions))
		for _, d := range result.Definitions {
			if d.Global != nil {
				defsByID[*d.Global] = d
			}
		}
		snap := &SemanticSnapshot{
			Project:     project,
			vfsSnap:     vfsSnap,
			defsByID:    defsByID,
			bases:       result.LinearizedBases,
			typeRefMemo:  make(map[string]TypeRef),
			unresolved:   result.UnresolvedTypes,
			explicitLocs: result.ExplicitLocations,
		}
		h.mu.Lock()
		h.cache[key] = snap
		h.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SemanticSnapshot), nil
}
