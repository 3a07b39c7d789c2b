package ide

import (
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/basedb"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/config"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/syntax"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

type fixedSema struct {
	defs []hir.Definition
}

func (s *fixedSema) Analyze(project basedb.ProjectId, vfsSnap vfs.VfsSnapshot) (hir.SemaResult, error) {
	return hir.SemaResult{Definitions: s.defs}, nil
}

type stubParser struct{}

func (stubParser) Parse(text string) (syntax.ParseArtifact, error) {
	return syntax.ParseArtifact{Tree: text}, nil
}

func newTestAnalysis(t *testing.T, text string, defs []hir.Definition) (*Analysis, vfs.FileId) {
	t.Helper()
	store := vfs.New()
	path, err := pathutil.FromAbsolute("/workspace/src/Main.sol")
	if err != nil {
		t.Fatalf("FromAbsolute: %v", err)
	}
	store.ApplyChange(vfs.SetChange{Path: path, Text: text})
	vfsSnap := store.Snapshot()
	fileID, ok := vfsSnap.FileID(path)
	if !ok {
		t.Fatal("expected file to be registered")
	}

	base := basedb.New()
	root, _ := pathutil.FromAbsolute("/workspace")
	project := base.EnsureProject(root, config.ResolvedFoundryConfig{})
	base.SetFileOwner(fileID, project)

	for i := range defs {
		defs[i].FileID = fileID
	}

	host := NewAnalysisHost(store, base, syntax.NewHost(stubParser{}, 1<<20), hir.NewHost(&fixedSema{defs: defs}), nil)
	analysis, err := host.Snapshot(project)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return analysis, fileID
}

func TestGotoDefinitionResolvesBySelectionRange(t *testing.T) {
	id := hir.DefId(1)
	text := "contract Token {}"
	defs := []hir.Definition{
		{
			Name:           "Token",
			Kind:           hir.DefKindContract,
			DefiningRange:  span.NewTextRange(0, span.TextSize(len(text))),
			SelectionRange: span.NewTextRange(9, 14),
			Global:         &id,
		},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	loc, ok := analysis.GotoDefinition(fileID, 10)
	if !ok {
		t.Fatal("expected goto-definition to resolve")
	}
	if loc.Range.Start != 0 {
		t.Fatalf("expected defining range start 0, got %d", loc.Range.Start)
	}
}

func TestFindReferencesIncludesDefiningOccurrence(t *testing.T) {
	id := hir.DefId(1)
	text := "contract Token {}\nToken t;"
	defs := []hir.Definition{
		{
			Name:           "Token",
			Kind:           hir.DefKindContract,
			DefiningRange:  span.NewTextRange(0, 18),
			SelectionRange: span.NewTextRange(9, 14),
			Global:         &id,
		},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	refs := analysis.FindReferences(fileID, 10)
	if len(refs) != 2 {
		t.Fatalf("expected defining occurrence plus one reference, got %+v", refs)
	}
}

func TestRenameRejectsInvalidIdentifier(t *testing.T) {
	id := hir.DefId(1)
	text := "contract Token {}"
	defs := []hir.Definition{
		{Name: "Token", DefiningRange: span.NewTextRange(0, 18), SelectionRange: span.NewTextRange(9, 14), Global: &id},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	_, ok := analysis.Rename(fileID, 10, "9Invalid")
	if ok {
		t.Fatal("expected rename to reject identifier starting with a digit")
	}
}

func TestRenameProducesNormalizedChangeAcrossOccurrences(t *testing.T) {
	id := hir.DefId(1)
	text := "contract Token {}\nToken t;"
	defs := []hir.Definition{
		{Name: "Token", DefiningRange: span.NewTextRange(0, 18), SelectionRange: span.NewTextRange(9, 14), Global: &id},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	change, ok := analysis.Rename(fileID, 10, "Coin")
	if !ok {
		t.Fatal("expected rename to succeed")
	}
	edits := change.Edits()
	if len(edits) != 1 || len(edits[0].Edits) != 2 {
		t.Fatalf("expected 2 coalesced edits in one file group, got %+v", edits)
	}
}

func TestSyntaxOutlineNestsContractMembers(t *testing.T) {
	contractID := hir.DefId(1)
	funcID := hir.DefId(2)
	defs := []hir.Definition{
		{Name: "Token", Kind: hir.DefKindContract, DefiningRange: span.NewTextRange(0, 40), SelectionRange: span.NewTextRange(9, 14), Global: &contractID},
		{Name: "mint", Kind: hir.DefKindFunction, DefiningRange: span.NewTextRange(16, 38), SelectionRange: span.NewTextRange(25, 29), Global: &funcID},
	}
	analysis, fileID := newTestAnalysis(t, "contract Token { function mint() {} }", defs)

	outline := analysis.SyntaxOutline(fileID)
	if len(outline) != 1 || outline[0].Name != "Token" {
		t.Fatalf("expected one root contract, got %+v", outline)
	}
	if len(outline[0].Children) != 1 || outline[0].Children[0].Name != "mint" {
		t.Fatalf("expected mint nested under Token, got %+v", outline[0].Children)
	}
}

func TestWorkspaceSymbolsCaseInsensitiveSearch(t *testing.T) {
	id := hir.DefId(1)
	defs := []hir.Definition{
		{Name: "TokenVault", Kind: hir.DefKindContract, DefiningRange: span.NewTextRange(0, 10), SelectionRange: span.NewTextRange(0, 10), Global: &id},
	}
	analysis, _ := newTestAnalysis(t, "contract TokenVault {}", defs)

	hits := analysis.WorkspaceSymbols("vault")
	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %+v", hits)
	}
}

func TestHoverRendersNatspecLinkSkippingCodeSpan(t *testing.T) {
	id := hir.DefId(1)
	text := "/// See {Token} and `{Token}` in code.\ncontract Token {}"
	defs := []hir.Definition{
		{Name: "Token", Kind: hir.DefKindContract, DefiningRange: span.NewTextRange(39, 57), SelectionRange: span.NewTextRange(48, 53), Global: &id},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	hover, ok := analysis.Hover(fileID, 49)
	if !ok {
		t.Fatal("expected hover to resolve")
	}
	want := "[{Token}](file:///workspace/src/Main.sol#L2,10)"
	if !contains(hover.Contents, want) {
		t.Fatalf("expected rendered NatSpec link %q, got %q", want, hover.Contents)
	}
	if contains(hover.Contents, "`{Token}`](file://") {
		t.Fatalf("inline-code occurrence must not be linked, got %q", hover.Contents)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestCompletionsOffersFileAliasesInsideImportLiteral(t *testing.T) {
	text := `import "./`
	analysis, fileID := newTestAnalysis(t, text, nil)

	items := analysis.Completions(fileID, span.TextSize(len(text)))
	for _, item := range items {
		if item.Kind != CompletionFile {
			t.Fatalf("expected only file-kind completions inside import literal, got %+v", item)
		}
	}
}

func TestSignatureHelpTracksActiveParameter(t *testing.T) {
	id := hir.DefId(1)
	text := "mint(a, b"
	defs := []hir.Definition{
		{Name: "mint", Kind: hir.DefKindFunction, DefiningRange: span.NewTextRange(0, span.TextSize(len(text))), SelectionRange: span.NewTextRange(0, 4), Global: &id},
	}
	analysis, fileID := newTestAnalysis(t, text, defs)

	help, ok := analysis.SignatureHelp(fileID, span.TextSize(len(text)))
	if !ok {
		t.Fatal("expected signature help to resolve")
	}
	if help.Label != "mint" || help.ActiveParameter != 1 {
		t.Fatalf("expected mint at active parameter 1, got %+v", help)
	}
}

func TestFormatDocumentReturnsNoEditWithoutFormatter(t *testing.T) {
	analysis, fileID := newTestAnalysis(t, "contract Token {}", nil)
	edit, changed, err := analysis.FormatDocument(fileID)
	if err != nil {
		t.Fatalf("FormatDocument: %v", err)
	}
	if changed {
		t.Fatalf("expected no edit without a formatter configured, got %+v", edit)
	}
}
