package project

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

// ImportAlias is either a FileAlias (whole-file alias, e.g. `import
// "./Other.sol" as Other;`) or a ContractAlias (named-symbol alias, e.g.
// `import {Foo as Bar} from "lib/Lib.sol";` → ContractAlias{"Bar","Foo"}).
type ImportAlias struct {
	Local    string
	Original string // empty for FileAlias
	IsFile   bool
}

// ResolvedImport pairs a resolved workspace path with the aliases the
// import statement bound it to.
type ResolvedImport struct {
	ImportSpec string
	Resolved   pathutil.NormalizedPath
	Found      bool
	Aliases    []ImportAlias
}

// importLine matches the shapes of Solidity import statements this layer
// needs to classify. The real grammar lives in the external parser (out of
// scope); this is a lexical approximation sufficient for import resolution.
var importLine = regexp.MustCompile(
	`(?m)^\s*import\s+(?:` +
		`\{\s*([^}]+?)\s*\}\s*from\s*"([^"]+)"` + // import {A as B, C} from "path";
		`|"([^"]+)"\s*as\s+([A-Za-z_$][A-Za-z0-9_$]*)` + // import "path" as Alias;
		`|"([^"]+)"` + // import "path";
		`)\s*;`,
)

var symbolAlias = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)(?:\s+as\s+([A-Za-z_$][A-Za-z0-9_$]*))?$`)

// ScanImports extracts raw import statements from Solidity source text via
// lexical regex matching (no AST; the real parser is an external
// collaborator, see syntax/hir). Returns each import's raw spec and the
// aliases it introduces.
func ScanImports(text string) []struct {
	ImportSpec string
	Aliases    []ImportAlias
} {
	var out []struct {
		ImportSpec string
		Aliases    []ImportAlias
	}

	for _, m := range importLine.FindAllStringSubmatch(text, -1) {
		switch {
		case m[2] != "": // import {symbols} from "path";
			spec := m[2]
			out = append(out, struct {
				ImportSpec string
				Aliases    []ImportAlias
			}{ImportSpec: spec, Aliases: parseSymbolList(m[1])})
		case m[3] != "": // import "path" as Alias;
			out = append(out, struct {
				ImportSpec string
				Aliases    []ImportAlias
			}{ImportSpec: m[3], Aliases: []ImportAlias{{Local: m[4], IsFile: true}}})
		case m[5] != "": // import "path";
			out = append(out, struct {
				ImportSpec string
				Aliases    []ImportAlias
			}{ImportSpec: m[5]})
		}
	}
	return out
}

func parseSymbolList(list string) []ImportAlias {
	var aliases []ImportAlias
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sm := symbolAlias.FindStringSubmatch(part)
		if sm == nil {
			continue
		}
		local := sm[1]
		renamed := sm[2] != ""
		original := sm[1]
		if renamed {
			local = sm[2]
		} else {
			// A bare symbol with no "as" rename binds the import's own
			// file-level name: File alias, Original stays empty the same way
			// the whole-file-import case leaves it empty.
			original = ""
		}
		aliases = append(aliases, ImportAlias{Local: local, Original: original, IsFile: !renamed})
	}
	return aliases
}

// Resolver caches a workspace's resolution context (workspace roots,
// active remappings, library roots) and exposes both the pure resolution
// function and a per-file import extraction helper.
type Resolver struct {
	Workspace    FoundryWorkspace
	Remappings   []Remapping
	LibraryRoots []pathutil.NormalizedPath
}

// NewResolver builds a Resolver. LibraryRoots defaults to []{ws.Lib} when
// nil is passed.
func NewResolver(ws FoundryWorkspace, remappings []Remapping, libraryRoots []pathutil.NormalizedPath) *Resolver {
	if libraryRoots == nil {
		libraryRoots = []pathutil.NormalizedPath{ws.Lib}
	}
	return &Resolver{Workspace: ws, Remappings: remappings, LibraryRoots: libraryRoots}
}

// Resolve resolves a single import spec from importer. Thin wrapper over
// the free function ResolveImportPath — kept free-standing so callers that
// only have remapping data (no Resolver instance, e.g. a unit test
// asserting the algorithm) can call it directly without constructing one.
func (r *Resolver) Resolve(importer pathutil.NormalizedPath, importSpec string) (pathutil.NormalizedPath, bool) {
	return ResolveImportPath(r.Workspace, r.Remappings, importer, importSpec, r.LibraryRoots)
}

// ResolvedImports scans text for import statements and resolves each one.
func (r *Resolver) ResolvedImports(file pathutil.NormalizedPath, text string) ([]ResolvedImport, error) {
	raw := ScanImports(text)
	out := make([]ResolvedImport, 0, len(raw))
	for _, imp := range raw {
		resolved, found := r.Resolve(file, imp.ImportSpec)
		out = append(out, ResolvedImport{
			ImportSpec: imp.ImportSpec,
			Resolved:   resolved,
			Found:      found,
			Aliases:    imp.Aliases,
		})
	}
	return out, nil
}

// FoundryResolver adapts Resolver to a narrower single-method interface for
// callers that only need import resolution, without exposing the full
// Resolver surface.
type FoundryResolver struct {
	resolver *Resolver
}

// NewFoundryResolver wraps r.
func NewFoundryResolver(r *Resolver) FoundryResolver { return FoundryResolver{resolver: r} }

// ResolveImportPath must agree byte-for-byte with the free function
// ResolveImportPath given the same workspace/remappings/library roots —
// verified by resolver_adapter_test.go.
func (a FoundryResolver) ResolveImportPath(importer pathutil.NormalizedPath, importSpec string) (pathutil.NormalizedPath, bool) {
	if a.resolver == nil {
		return pathutil.NormalizedPath{}, false
	}
	return a.resolver.Resolve(importer, importSpec)
}

// String is for debug/log output only.
func (a FoundryResolver) String() string {
	if a.resolver == nil {
		return "FoundryResolver(nil)"
	}
	return fmt.Sprintf("FoundryResolver(root=%s, remappings=%d)", a.resolver.Workspace.Root.String(), len(a.resolver.Remappings))
}
