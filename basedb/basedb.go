// Package basedb owns the FileId → ProjectId registry and the resolved
// config for each project. A basedb.Snapshot bundles a vfs.VfsSnapshot with
// the file→project map; ide's Analysis holds one so its queries never need
// the mutable Vfs or Base directly. syntax, hir and idedb do not take a
// basedb.Snapshot: hir uses only the ProjectId type from this package.
package basedb

import (
	"sync"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/config"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// ProjectId is a dense integer identifying a logical project. One per
// workspace root in the present design; plural reserved for future
// sub-projects (e.g. nested Foundry workspaces).
type ProjectId int

// Base is the mutable registry: which project owns each file, and each
// project's resolved config. Single-writer, mutex-guarded, mirroring
// vfs.Vfs's concurrency contract.
type Base struct {
	mu         sync.Mutex
	configs    map[ProjectId]config.ResolvedFoundryConfig
	owners     map[vfs.FileId]ProjectId
	nextID     ProjectId
	byRoot     map[string]ProjectId
	generation uint64
}

// New creates an empty Base.
func New() *Base {
	return &Base{
		configs: make(map[ProjectId]config.ResolvedFoundryConfig),
		owners:  make(map[vfs.FileId]ProjectId),
		byRoot:  make(map[string]ProjectId),
	}
}

// EnsureProject returns the ProjectId for root, allocating a new one (and
// storing cfg) if root has not been registered before. Calling it again for
// an already-registered root updates that project's config in place and
// reuses the same id.
func (b *Base) EnsureProject(root pathutil.NormalizedPath, cfg config.ResolvedFoundryConfig) ProjectId {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := root.String()
	id, ok := b.byRoot[key]
	if !ok {
		id = b.nextID
		b.nextID++
		b.byRoot[key] = id
	}
	b.configs[id] = cfg
	b.generation++
	return id
}

// SetFileOwner records that file belongs to project. Called by the
// workspace indexer (server) as files are discovered under a project root.
func (b *Base) SetFileOwner(file vfs.FileId, project ProjectId) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owners[file] = project
	b.generation++
}

// RemoveFileOwner drops file's project association, e.g. on file deletion.
func (b *Base) RemoveFileOwner(file vfs.FileId) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.owners, file)
	b.generation++
}

// Snapshot combines vfsSnap with the current file→project map and per-project
// configs into an immutable capability for downstream layers.
func (b *Base) Snapshot(vfsSnap vfs.VfsSnapshot) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	owners := make(map[vfs.FileId]ProjectId, len(b.owners))
	for f, p := range b.owners {
		owners[f] = p
	}
	configs := make(map[ProjectId]config.ResolvedFoundryConfig, len(b.configs))
	for p, c := range b.configs {
		configs[p] = c
	}
	return Snapshot{
		vfs:        vfsSnap,
		owners:     owners,
		configs:    configs,
		generation: b.generation,
	}
}

// Snapshot is the read-only input capability held by ide's Analysis.
// Combines a vfs.VfsSnapshot with the file→project map and each project's
// resolved config at a point in time.
type Snapshot struct {
	vfs        vfs.VfsSnapshot
	owners     map[vfs.FileId]ProjectId
	configs    map[ProjectId]config.ResolvedFoundryConfig
	generation uint64
}

// Vfs exposes the underlying file snapshot.
func (s Snapshot) Vfs() vfs.VfsSnapshot { return s.vfs }

// Generation combines the base registry's and the vfs's generation counters
// so any change to either invalidates caches keyed on it.
func (s Snapshot) Generation() uint64 { return s.generation ^ s.vfs.Generation()<<32 }

// ProjectOf returns the project owning file, if known.
func (s Snapshot) ProjectOf(file vfs.FileId) (ProjectId, bool) {
	p, ok := s.owners[file]
	return p, ok
}

// Config returns the resolved config for project, if registered.
func (s Snapshot) Config(project ProjectId) (config.ResolvedFoundryConfig, bool) {
	c, ok := s.configs[project]
	return c, ok
}

// FilesIn returns every FileId currently owned by project, in no particular
// order.
func (s Snapshot) FilesIn(project ProjectId) []vfs.FileId {
	var out []vfs.FileId
	for f, p := range s.owners {
		if p == project {
			out = append(out, f)
		}
	}
	return out
}
