package diagnostics

import (
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

type stubCatalog map[string]bool

func (c stubCatalog) IsFixable(code string) bool { return c[code] }

func mainSol(t *testing.T) pathutil.NormalizedPath {
	t.Helper()
	p, err := pathutil.FromAbsolute("/workspace/src/Main.sol")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	return p
}

func TestNormalizeDefaultsBySource(t *testing.T) {
	file := mainSol(t)
	linted := Normalize(RawDiagnostic{
		FilePath: file,
		Range:    span.NewTextRange(0, 5),
		Code:     "mixed-case-variable",
		Message:  "variable should be mixedCase",
		Source:   Linter,
	}, stubCatalog{"mixed-case-variable": true})

	if linted.Severity != Info {
		t.Fatalf("expected linter default severity Info, got %v", linted.Severity)
	}
	if !linted.Fixable {
		t.Fatal("expected mixed-case-variable to be fixable per catalog")
	}

	compiled := Normalize(RawDiagnostic{
		FilePath: file,
		Range:    span.NewTextRange(0, 5),
		Code:     "E100",
		Message:  "type error",
		Source:   Compiler,
	}, stubCatalog{})

	if compiled.Severity != Error {
		t.Fatalf("expected compiler default severity Error, got %v", compiled.Severity)
	}
	if compiled.Fixable {
		t.Fatal("E100 should not be fixable")
	}
}

func TestMergeCompilerWinsOnSameKey(t *testing.T) {
	file := mainSol(t)
	r := span.NewTextRange(10, 16)
	diags := []Diagnostic{
		{FilePath: file, Range: r, Severity: Warning, Code: "E100", Source: Linter, Message: "lint says warning"},
		{FilePath: file, Range: r, Severity: Error, Code: "E100", Source: Compiler, Message: "compiler says error"},
	}
	merged := Merge(diags)
	if len(merged) != 1 {
		t.Fatalf("expected exactly one merged diagnostic, got %d", len(merged))
	}
	if merged[0].Source != Compiler {
		t.Fatalf("expected compiler diagnostic to win, got source %v", merged[0].Source)
	}
}

func TestMergeKeepsBothOnDifferentCodeSameRange(t *testing.T) {
	file := mainSol(t)
	r := span.NewTextRange(10, 16)
	diags := []Diagnostic{
		{FilePath: file, Range: r, Code: "E100", Source: Compiler},
		{FilePath: file, Range: r, Code: "mixed-case-variable", Source: Linter},
	}
	merged := Merge(diags)
	if len(merged) != 2 {
		t.Fatalf("expected both diagnostics kept on differing codes, got %d", len(merged))
	}
}

func TestMergeResultIsDistinctAndSorted(t *testing.T) {
	file := mainSol(t)
	diags := []Diagnostic{
		{FilePath: file, Range: span.NewTextRange(20, 25), Code: "Z1", Source: Compiler},
		{FilePath: file, Range: span.NewTextRange(0, 5), Code: "A1", Source: Compiler},
		{FilePath: file, Range: span.NewTextRange(0, 5), Code: "B1", Source: Linter},
	}
	merged := Merge(diags)
	for i := 1; i < len(merged); i++ {
		a, b := merged[i-1], merged[i]
		if a.FilePath.String() > b.FilePath.String() {
			t.Fatal("result not sorted by file path")
		}
		if a.FilePath == b.FilePath && a.Range.Start > b.Range.Start {
			t.Fatal("result not sorted by range start")
		}
	}
	seen := map[key]bool{}
	for _, d := range merged {
		k := keyOf(d)
		if seen[k] {
			t.Fatal("merged result contains duplicate (file, range, code) key")
		}
		seen[k] = true
	}
}
