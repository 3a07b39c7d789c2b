package project

import (
	"strings"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

// ResolveImportPath resolves a raw Solidity import spec to a concrete
// workspace path, given the importing file's path and the active
// remapping set. Never touches disk; returns ok=false when no path could
// be constructed (library lookup failed or the resolved path could not be
// normalized).
//
// Algorithm (spec.md §4.E):
//  1. Relative specs (./ or ../) resolve lexically against importer's dir.
//  2. Otherwise, collect remappings whose From is a prefix of spec.
//  3. Prefer context-bearing candidates whose Context is a prefix of the
//     importer path over context-free ones; among equal-context candidates,
//     the longest From wins.
//  4. Rewrite spec by substituting From → To; join against workspace root
//     if To is workspace-relative.
//  5. If no remapping matches, try each library root in declaration order.
func ResolveImportPath(
	ws FoundryWorkspace,
	remappings []Remapping,
	importer pathutil.NormalizedPath,
	importSpec string,
	libraryRoots []pathutil.NormalizedPath,
) (pathutil.NormalizedPath, bool) {
	if isRelativeSpec(importSpec) {
		return resolveRelative(importer, importSpec)
	}

	if best, ok := bestRemapping(remappings, importer, importSpec); ok {
		rewritten := strings.Replace(importSpec, best.From, best.To, 1)
		return joinWorkspaceRelative(ws.Root, rewritten)
	}

	for _, root := range libraryRoots {
		if p, err := root.Join(importSpec); err == nil {
			return p, true
		}
	}

	return pathutil.NormalizedPath{}, false
}

func isRelativeSpec(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

func resolveRelative(importer pathutil.NormalizedPath, spec string) (pathutil.NormalizedPath, bool) {
	dir := importer.Dir()
	segments := strings.Split(spec, "/")
	joined, err := dir.Join(segments...)
	if err != nil {
		return pathutil.NormalizedPath{}, false
	}
	return joined, true
}

// bestRemapping selects the winning remapping per spec.md §4.E steps 2-3:
// first keep only candidates whose From is a prefix of spec; among those,
// prefer a context-bearing candidate whose Context is a prefix of importer
// over a context-free one; among equal-context-applicability candidates,
// the longest From wins.
func bestRemapping(remappings []Remapping, importer pathutil.NormalizedPath, spec string) (Remapping, bool) {
	var best Remapping
	found := false
	importerPath := importer.String()

	for _, r := range remappings {
		if !strings.HasPrefix(spec, r.From) {
			continue
		}
		ctxApplies := !r.HasContext() || strings.HasPrefix(importerPath, r.Context)
		if !ctxApplies {
			continue
		}
		if !found {
			best = r
			found = true
			continue
		}
		if rankBeats(r, best) {
			best = r
		}
	}
	return best, found
}

// rankBeats reports whether candidate outranks current: context-bearing
// beats context-free at any From length; among equal context-bearing-ness,
// longer From wins.
func rankBeats(candidate, current Remapping) bool {
	candidateHasCtx := candidate.HasContext()
	currentHasCtx := current.HasContext()
	if candidateHasCtx != currentHasCtx {
		return candidateHasCtx
	}
	if len(candidate.From) != len(current.From) {
		return len(candidate.From) > len(current.From)
	}
	// Stable: keep current (first-seen) when fully tied.
	return false
}

func joinWorkspaceRelative(root pathutil.NormalizedPath, rewritten string) (pathutil.NormalizedPath, bool) {
	if strings.HasPrefix(rewritten, "/") {
		np, err := pathutil.FromAbsolute(rewritten)
		if err != nil {
			return pathutil.NormalizedPath{}, false
		}
		return np, true
	}
	segments := strings.Split(rewritten, "/")
	np, err := root.Join(segments...)
	if err != nil {
		return pathutil.NormalizedPath{}, false
	}
	return np, true
}

// FindMatchingRemappings filters remappings whose From is a literal prefix
// of spec — this is a separate helper from bestRemapping because
// bestRemapping applies step-3 ranking directly, while some callers (e.g.
// diagnostics/UI "why did this resolve here") want the raw candidate set.
func FindMatchingRemappings(remappings []Remapping, spec string) []Remapping {
	var out []Remapping
	for _, r := range remappings {
		if strings.HasPrefix(spec, r.From) {
			out = append(out, r)
		}
	}
	return out
}
