// Package syntax caches per-(FileId, version) parse artifacts produced by an
// external parser collaborator, with LRU eviction by estimated source size
// and refcount pinning so artifacts referenced by a live snapshot survive
// eviction.
package syntax

import (
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// ParseArtifact is whatever the external parser produces: a syntax tree
// handle, opaque to this layer. The real Solidity grammar lives outside
// this module's scope (see ExternalParser).
type ParseArtifact struct {
	Tree           any
	RecoveryErrors []RecoveryError
}

// RecoveryError is a parse error the external parser recovered from (as
// opposed to aborting); these feed diagnostics alongside compiler output.
type RecoveryError struct {
	Message string
	Offset  int
}

// ExternalParser is the out-of-scope collaborator that turns source text
// into a ParseArtifact. Production wiring wraps whichever Solidity parser
// is configured; tests substitute a stub.
type ExternalParser interface {
	Parse(text string) (ParseArtifact, error)
}

// Parse is the cached artifact for one (FileId, version): the syntax tree,
// recovery errors, and a session handle that must be held while tree
// pointers are dereferenced (the underlying parser's interner is
// process-wide and not safe to read outside a session).
type Parse struct {
	FileID   vfs.FileId
	Version  uint64
	mu       sync.Mutex
	artifact ParseArtifact

	refs atomic.Int32
}

// WithSession runs fn while holding the parse's dereference session. Scopes
// access to the tree so callers never hold a raw pointer past the point
// where the cache could evict and reclaim it.
func (p *Parse) WithSession(fn func(ParseArtifact)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.artifact)
}

// Pin increments the refcount keeping this Parse alive past normal LRU
// eviction. Release with Unpin once no live snapshot references it.
func (p *Parse) Pin() { p.refs.Add(1) }

// Unpin releases a Pin.
func (p *Parse) Unpin() { p.refs.Add(-1) }

func (p *Parse) pinned() bool { return p.refs.Load() > 0 }

type cacheKey struct {
	file    vfs.FileId
	version uint64
}

// Host owns the parse cache for a server instance. Sized by estimated
// source bytes rather than entry count: sizeBytes bounds total cached text,
// and the LRU evicts least-recently-observed entries first unless pinned.
type Host struct {
	parser ExternalParser

	mu      sync.Mutex
	cache   *lru.Cache[cacheKey, *Parse]
	sizes   map[cacheKey]int
	curSize int
	maxSize int
}

// NewHost creates a Host backed by parser, bounding the cache to
// approximately maxSizeBytes of source text (entries are evicted by LRU
// recency once exceeded; pinned entries are exempt).
func NewHost(parser ExternalParser, maxSizeBytes int) *Host {
	// capacity is advisory; eviction-by-bytes is enforced in evictLocked.
	cache, _ := lru.New[cacheKey, *Parse](1 << 20)
	return &Host{
		parser:  parser,
		cache:   cache,
		sizes:   make(map[cacheKey]int),
		maxSize: maxSizeBytes,
	}
}

// Parse returns the cached Parse for (file, version, text), parsing and
// inserting it if absent. Re-parsing the same (file, version) is guaranteed
// to observe byte-identical text by construction (the VFS never mutates a
// stored version in place), so results are deterministic.
func (h *Host) Parse(file vfs.FileId, version uint64, text string) (*Parse, error) {
	key := cacheKey{file: file, version: version}

	h.mu.Lock()
	if p, ok := h.cache.Get(key); ok {
		h.mu.Unlock()
		return p, nil
	}
	h.mu.Unlock()

	artifact, err := h.parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %v: %w", file, err)
	}
	p := &Parse{FileID: file, Version: version, artifact: artifact}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache.Add(key, p)
	h.sizes[key] = len(text)
	h.curSize += len(text)
	h.evictLocked()
	return p, nil
}

// evictLocked drops least-recently-observed, unpinned entries until curSize
// is back under maxSize. Must be called with h.mu held.
func (h *Host) evictLocked() {
	for h.curSize > h.maxSize {
		evicted := false
		for _, key := range h.cache.Keys() {
			p, ok := h.cache.Peek(key)
			if !ok || p.pinned() {
				continue
			}
			h.cache.Remove(key)
			h.curSize -= h.sizes[key]
			delete(h.sizes, key)
			evicted = true
			break
		}
		if !evicted {
			return
		}
	}
}

// Invalidate drops every cached Parse for file (all versions), used when a
// file is removed from the VFS entirely.
func (h *Host) Invalidate(file vfs.FileId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range h.cache.Keys() {
		if key.file == file {
			h.cache.Remove(key)
			h.curSize -= h.sizes[key]
			delete(h.sizes, key)
		}
	}
}
