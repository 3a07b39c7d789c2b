package project

import (
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

func TestFoundryResolverAgreesWithFreeFunction(t *testing.T) {
	root, _ := pathutil.FromAbsolute("/workspace")
	ws, err := NewFoundryWorkspace(root)
	if err != nil {
		t.Fatalf("NewFoundryWorkspace: %v", err)
	}
	remappings := []Remapping{
		{From: "lib/", To: "lib/forge-std/"},
	}
	importer, _ := pathutil.FromAbsolute("/workspace/src/Main.sol")

	resolver := NewResolver(ws, remappings, nil)
	adapter := NewFoundryResolver(resolver)

	specs := []string{"lib/Lib.sol", "./Helper.sol", "nonexistent/Foo.sol"}
	for _, spec := range specs {
		free, freeOK := ResolveImportPath(ws, remappings, importer, spec, resolver.LibraryRoots)
		adapted, adaptedOK := adapter.ResolveImportPath(importer, spec)
		if freeOK != adaptedOK {
			t.Fatalf("spec %q: ok mismatch free=%v adapter=%v", spec, freeOK, adaptedOK)
		}
		if free.String() != adapted.String() {
			t.Fatalf("spec %q: path mismatch free=%q adapter=%q", spec, free.String(), adapted.String())
		}
	}
}
