package hir

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/basedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

type stubSema struct {
	calls atomic.Int32
}

func (s *stubSema) Analyze(project basedb.ProjectId, vfsSnap vfs.VfsSnapshot) (SemaResult, error) {
	s.calls.Add(1)
	id := DefId(1)
	return SemaResult{
		Definitions: []Definition{
			{
				Name:           "Token",
				Kind:           DefKindContract,
				DefiningRange:  span.NewTextRange(0, 10),
				SelectionRange: span.NewTextRange(9, 14),
				Global:         &id,
			},
		},
		LinearizedBases:   map[DefId][]DefId{id: {id}},
		UnresolvedTypes:   map[string]bool{"bytes": true},
		ExplicitLocations: map[string]StorageLocation{"ledger": StorageStorage},
	}, nil
}

func TestSnapshotForDeduplicatesSameKey(t *testing.T) {
	sema := &stubSema{}
	host := NewHost(sema)
	vfsSnap := vfs.New().Snapshot()

	var wg sync.WaitGroup
	results := make([]*SemanticSnapshot, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := host.SnapshotFor(basedb.ProjectId(1), vfsSnap)
			if err != nil {
				t.Errorf("SnapshotFor: %v", err)
				return
			}
			results[i] = snap
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if r != results[0] {
			t.Fatal("expected all concurrent callers to observe the same snapshot")
		}
	}
	if sema.calls.Load() != 1 {
		t.Fatalf("expected exactly one Analyze call, got %d", sema.calls.Load())
	}
}

func TestSnapshotForRebuildsOnNewGeneration(t *testing.T) {
	sema := &stubSema{}
	host := NewHost(sema)
	store := vfs.New()
	snap1 := store.Snapshot()

	if _, err := host.SnapshotFor(basedb.ProjectId(1), snap1); err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}

	path, err := pathutil.FromAbsolute("/workspace/A.sol")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	store.ApplyChange(vfs.SetChange{Path: path, Text: "contract A {}"})
	snap2 := store.Snapshot()

	if _, err := host.SnapshotFor(basedb.ProjectId(1), snap2); err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}
	if sema.calls.Load() != 2 {
		t.Fatalf("expected a rebuild for the new generation, got %d calls", sema.calls.Load())
	}
}

func TestNormalizeTypeRefDefaultsToMemoryAndMemoizes(t *testing.T) {
	sema := &stubSema{}
	host := NewHost(sema)
	vfsSnap := vfs.New().Snapshot()
	snap, err := host.SnapshotFor(basedb.ProjectId(1), vfsSnap)
	if err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}

	first := snap.NormalizeTypeRef("bytes")
	if first.Location != StorageMemory {
		t.Fatalf("expected default location memory, got %v", first.Location)
	}
	second := snap.NormalizeTypeRef("bytes")
	if first != second {
		t.Fatalf("expected memoized identical result, got %+v vs %+v", first, second)
	}
}

func TestNormalizeTypeRefPreservesExplicitLocation(t *testing.T) {
	sema := &stubSema{}
	host := NewHost(sema)
	vfsSnap := vfs.New().Snapshot()
	snap, err := host.SnapshotFor(basedb.ProjectId(1), vfsSnap)
	if err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}

	got := snap.NormalizeTypeRef("ledger")
	if got.Location != StorageStorage {
		t.Fatalf("expected explicit storage location preserved, got %v", got.Location)
	}
	if !got.explicit {
		t.Fatal("expected explicit flag set for a resolved storage location")
	}
}

func TestLinearizedBasesDelegatesToSema(t *testing.T) {
	sema := &stubSema{}
	host := NewHost(sema)
	vfsSnap := vfs.New().Snapshot()
	snap, err := host.SnapshotFor(basedb.ProjectId(1), vfsSnap)
	if err != nil {
		t.Fatalf("SnapshotFor: %v", err)
	}

	bases := snap.LinearizedBases(DefId(1))
	if len(bases) != 1 || bases[0] != DefId(1) {
		t.Fatalf("unexpected linearized bases: %v", bases)
	}
}
