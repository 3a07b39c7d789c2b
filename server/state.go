package server

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/basedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/config"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/ide"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/syntax"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// ignoredDirs names the VCS/build directories the indexer never descends
// into, Foundry-convention noise under a workspace root.
var ignoredDirs = map[string]bool{
	".git":      true,
	"out":       true,
	"cache":     true,
	"broadcast": true,
}

// ExternalSema and ExternalParser are the out-of-scope collaborators
// ServerState wires the host layers to; left nil, the server still runs
// with degraded (no semantic information) analysis.
type ExternalSema = hir.ExternalSema
type ExternalParser = syntax.ExternalParser

// ServerState owns everything the reactor mutates: the VFS, the base
// registry, the analysis host, the active resolved config, the set of
// indexed paths, and the set of open-editor documents. It is exclusively
// owned by the protocol reactor (spec.md §5): handlers acquire a Snapshot
// under a short critical section, then release it before computing.
type ServerState struct {
	mu sync.Mutex

	logger *slog.Logger

	root    pathutil.NormalizedPath
	Vfs     *vfs.Vfs
	Base    *basedb.Base
	Host    *ide.AnalysisHost
	project basedb.ProjectId

	cfg config.ResolvedFoundryConfig

	// indexed maps every path the indexer has put into the VFS to the
	// FileId it was assigned, so a later Reload can diff against it.
	indexed map[pathutil.NormalizedPath]vfs.FileId
	// open is the set of paths with an open editor document; the indexer
	// never overwrites these with on-disk content (spec.md §4.N).
	open map[pathutil.NormalizedPath]bool
}

// NewState builds a ServerState rooted at root. sema/parser/formatter may be
// nil; a nil sema yields empty semantic snapshots rather than failing
// queries.
func NewState(logger *slog.Logger, root pathutil.NormalizedPath, sema ExternalSema, parser ExternalParser, formatter ide.ExternalFormatter) *ServerState {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = noopParser{}
	}
	if sema == nil {
		sema = noopSema{}
	}

	vfsStore := vfs.New()
	base := basedb.New()
	syntaxHost := syntax.NewHost(parser, 64<<20)
	hirHost := hir.NewHost(sema)

	return &ServerState{
		logger:  logger.With(slog.String("component", "state")),
		root:    root,
		Vfs:     vfsStore,
		Base:    base,
		Host:    ide.NewAnalysisHost(vfsStore, base, syntaxHost, hirHost, formatter),
		indexed: make(map[pathutil.NormalizedPath]vfs.FileId),
		open:    make(map[pathutil.NormalizedPath]bool),
	}
}

type noopParser struct{}

func (noopParser) Parse(text string) (syntax.ParseArtifact, error) {
	return syntax.ParseArtifact{Tree: text}, nil
}

type noopSema struct{}

func (noopSema) Analyze(basedb.ProjectId, vfs.VfsSnapshot) (hir.SemaResult, error) {
	return hir.SemaResult{}, nil
}

// Root returns the workspace root this state was built for.
func (s *ServerState) Root() pathutil.NormalizedPath { return s.root }

// Config returns the most recently resolved Foundry config.
func (s *ServerState) Config() config.ResolvedFoundryConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Project returns the ProjectId this workspace root resolves to.
func (s *ServerState) Project() basedb.ProjectId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project
}

// MarkOpen records uri's path as having an open editor document, excluding
// it from future indexer overwrites.
func (s *ServerState) MarkOpen(path pathutil.NormalizedPath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[path] = true
}

// MarkClosed clears the open bit; the next Reload may re-index the file
// from disk if it still exists.
func (s *ServerState) MarkClosed(path pathutil.NormalizedPath) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.open, path)
}

// SetDocument applies an open document's authoritative text directly to
// the VFS, bypassing the indexer (didOpen/didChange).
func (s *ServerState) SetDocument(path pathutil.NormalizedPath, text string) vfs.FileId {
	s.Vfs.ApplyChange(vfs.SetChange{Path: path, Text: text})
	snap := s.Vfs.Snapshot()
	id, _ := snap.FileID(path)

	s.mu.Lock()
	s.indexed[path] = id
	s.mu.Unlock()

	s.Base.SetFileOwner(id, s.Project())
	return id
}

// indexedSources walks src/lib/test/script under root, reading every *.sol
// file not under an ignored directory.
func indexedSources(root pathutil.NormalizedPath) (map[pathutil.NormalizedPath]string, error) {
	texts := make(map[pathutil.NormalizedPath]string)
	for _, sub := range []string{"src", "lib", "test", "script"} {
		dir, err := root.Join(sub)
		if err != nil {
			continue
		}
		err = filepath.WalkDir(dir.String(), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if ignoredDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".sol") {
				return nil
			}
			norm, err := pathutil.New(p)
			if err != nil {
				return nil
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return nil
			}
			texts[norm] = string(data)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return texts, nil
}

// Reload runs the indexer and applies its result to the VFS (spec.md
// §4.N): every scanned on-disk file that is not open is Set (unchanged ones
// too, which bumps their version), disappeared-and-not-open files are
// Removed, open documents are never overwritten. It re-resolves
// the Foundry config and republishes it to the base registry.
func (s *ServerState) Reload(profileOverride string) error {
	cfg, err := config.Load(s.root, profileOverride)
	if err != nil {
		return err
	}

	scanned, err := indexedSources(s.root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	var changes []vfs.Change
	seen := make(map[pathutil.NormalizedPath]bool, len(scanned))
	for path, text := range scanned {
		seen[path] = true
		if s.open[path] {
			continue // authoritative editor content wins, never overwritten
		}
		changes = append(changes, vfs.SetChange{Path: path, Text: text})
	}
	for path := range s.indexed {
		if seen[path] || s.open[path] {
			continue
		}
		changes = append(changes, vfs.RemoveChange{Path: path})
	}
	s.mu.Unlock()

	s.Vfs.ApplyChanges(changes)
	snap := s.Vfs.Snapshot()

	s.mu.Lock()
	s.cfg = cfg
	project := s.Base.EnsureProject(s.root, cfg)
	s.project = project
	newIndexed := make(map[pathutil.NormalizedPath]vfs.FileId, len(scanned))
	for path := range scanned {
		if id, ok := snap.FileID(path); ok {
			newIndexed[path] = id
		}
	}
	s.indexed = newIndexed
	s.mu.Unlock()

	for _, id := range newIndexed {
		s.Base.SetFileOwner(id, project)
	}

	s.logger.Info("workspace reloaded", slog.Int("indexed_files", len(newIndexed)))
	return nil
}

// IndexedPaths returns the current indexed-path set, used by the
// solidity-analyzer.indexedFiles command for editor-side introspection.
func (s *ServerState) IndexedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.indexed))
	for p := range s.indexed {
		out = append(out, p.String())
	}
	return out
}

// Snapshot builds the current Analysis for this workspace's project.
func (s *ServerState) Snapshot() (*ide.Analysis, error) {
	return s.Host.Snapshot(s.Project())
}
