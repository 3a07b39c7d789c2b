// Package vfs holds the authoritative text of every file observed by the
// server and exposes immutable, cheaply-cloned snapshots to readers.
package vfs

import (
	"sync"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

// FileId is a dense, monotone integer assigned on first observation of a
// path. Never reused within a process; equality implies identity.
type FileId int

// SharedString is reference-counted-in-spirit immutable text: once stored,
// the backing bytes are never mutated. A changed file always gets fresh
// bytes rather than an in-place edit, so existing readers are unaffected.
type SharedString struct {
	bytes []byte
}

// NewSharedString wraps text, copying it so the caller's buffer may be
// reused or mutated freely afterward.
func NewSharedString(text string) SharedString {
	b := make([]byte, len(text))
	copy(b, text)
	return SharedString{bytes: b}
}

// Bytes returns the underlying bytes. Callers must not mutate the result.
func (s SharedString) Bytes() []byte { return s.bytes }

// String returns the text as a string.
func (s SharedString) String() string { return string(s.bytes) }

// Len returns the byte length of the text.
func (s SharedString) Len() int { return len(s.bytes) }

// FileEntry is the per-file record held by the VFS.
type FileEntry struct {
	Path    pathutil.NormalizedPath
	Text    SharedString
	Version uint64
}

// Change is either a SetChange or a RemoveChange, applied atomically in a
// batch via Vfs.ApplyChanges.
type Change interface{ isChange() }

// SetChange creates or updates the text at Path.
type SetChange struct {
	Path pathutil.NormalizedPath
	Text string
}

func (SetChange) isChange() {}

// RemoveChange drops Path's entry. The FileId, once assigned, is never
// reused, but the path→id mapping is removed.
type RemoveChange struct {
	Path pathutil.NormalizedPath
}

func (RemoveChange) isChange() {}

// Vfs is the mutable, single-writer virtual file system. All writes happen
// under a single mutex; readers take an immutable VfsSnapshot instead of
// touching Vfs directly.
type Vfs struct {
	mu         sync.Mutex
	byPath     map[string]FileId
	entries    map[FileId]*FileEntry
	nextID     FileId
	generation uint64
}

// New creates an empty Vfs.
func New() *Vfs {
	return &Vfs{
		byPath:  make(map[string]FileId),
		entries: make(map[FileId]*FileEntry),
	}
}

// ApplyChange applies a single change; see ApplyChanges for the contract.
func (v *Vfs) ApplyChange(c Change) {
	v.ApplyChanges([]Change{c})
}

// ApplyChanges applies a batch of changes atomically: the batch is applied
// in the order given, and snapshot() never exposes an intermediate state
// since the whole batch runs under one lock acquisition.
func (v *Vfs) ApplyChanges(changes []Change) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, c := range changes {
		switch ch := c.(type) {
		case SetChange:
			v.applySetLocked(ch)
		case RemoveChange:
			v.applyRemoveLocked(ch)
		}
	}
	v.generation++
}

func (v *Vfs) applySetLocked(ch SetChange) {
	key := ch.Path.String()
	id, ok := v.byPath[key]
	if !ok {
		id = v.nextID
		v.nextID++
		v.byPath[key] = id
	}
	existing := v.entries[id]
	var version uint64
	if existing != nil {
		version = existing.Version + 1
	}
	v.entries[id] = &FileEntry{
		Path:    ch.Path,
		Text:    NewSharedString(ch.Text),
		Version: version,
	}
}

func (v *Vfs) applyRemoveLocked(ch RemoveChange) {
	key := ch.Path.String()
	if id, ok := v.byPath[key]; ok {
		delete(v.byPath, key)
		delete(v.entries, id)
	}
}

// Snapshot returns an immutable, shareable view of the current state.
// O(paths); the file text itself is shared without copying.
func (v *Vfs) Snapshot() VfsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	byPath := make(map[string]FileId, len(v.byPath))
	for k, id := range v.byPath {
		byPath[k] = id
	}
	entries := make(map[FileId]*FileEntry, len(v.entries))
	for id, e := range v.entries {
		entries[id] = e
	}
	return VfsSnapshot{
		byPath:     byPath,
		entries:    entries,
		generation: v.generation,
	}
}

// VfsSnapshot is an immutable point-in-time mapping FileId ⇄ NormalizedPath
// plus FileId → (text, version). Cloning a snapshot is O(1) (copy the
// struct; the underlying maps and entries are shared, never mutated).
type VfsSnapshot struct {
	byPath     map[string]FileId
	entries    map[FileId]*FileEntry
	generation uint64
}

// Generation is a monotone counter bumped by every ApplyChanges call; used
// as a cache-key component that invalidates derived semantic snapshots.
func (s VfsSnapshot) Generation() uint64 { return s.generation }

// FileID returns the id assigned to path, if any (only paths currently
// present in the snapshot, i.e. not removed, are found).
func (s VfsSnapshot) FileID(path pathutil.NormalizedPath) (FileId, bool) {
	id, ok := s.byPath[path.String()]
	return id, ok
}

// Path returns the path for id. False if id was removed or never assigned
// in this snapshot.
func (s VfsSnapshot) Path(id FileId) (pathutil.NormalizedPath, bool) {
	e, ok := s.entries[id]
	if !ok {
		return pathutil.NormalizedPath{}, false
	}
	return e.Path, true
}

// FileText returns the text of id.
func (s VfsSnapshot) FileText(id FileId) (SharedString, bool) {
	e, ok := s.entries[id]
	if !ok {
		return SharedString{}, false
	}
	return e.Text, true
}

// FileVersion returns the version of id.
func (s VfsSnapshot) FileVersion(id FileId) (uint64, bool) {
	e, ok := s.entries[id]
	if !ok {
		return 0, false
	}
	return e.Version, true
}

// Entry returns the full FileEntry for id.
func (s VfsSnapshot) Entry(id FileId) (*FileEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Iter calls yield for every (FileId, *FileEntry) currently present in the
// snapshot, in no particular order. Iteration stops early if yield returns
// false.
func (s VfsSnapshot) Iter(yield func(FileId, *FileEntry) bool) {
	for id, e := range s.entries {
		if !yield(id, e) {
			return
		}
	}
}

// Len returns the number of files present in the snapshot.
func (s VfsSnapshot) Len() int { return len(s.byPath) }
