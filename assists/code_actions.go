package assists

import (
	"github.com/iancoleman/strcase"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// CodeActionKind distinguishes categories of code action; only quick fixes
// are produced today.
type CodeActionKind int

const QuickFix CodeActionKind = iota

// CodeAction is one offered fix: a title, kind, and the edit it applies.
type CodeAction struct {
	Title string
	Kind  CodeActionKind
	Edit  SourceChange
}

// Diagnostic is the minimal view of a diagnostic this layer needs to offer
// a fix: its range and code. diagnostics.Diagnostic satisfies this shape by
// field access at the call site.
type Diagnostic struct {
	Range span.TextRange
	Code  string
}

// CodeActions computes the fixes available for text's diagnostics. Each
// fixable diagnostic yields at most one CodeAction; diagnostics whose code
// has no registered LintFix, or whose fix would be a no-op, are skipped.
func CodeActions(fileID vfs.FileId, text string, diags []Diagnostic) []CodeAction {
	var actions []CodeAction

	for _, d := range diags {
		fix, ok := Lookup(d.Code)
		if !ok {
			continue
		}
		replacement, ok := replacementForFix(fix.Kind, text, d.Range)
		if !ok {
			continue
		}

		var change SourceChange
		change.InsertEdit(fileID, TextEdit{Range: d.Range, NewText: replacement})
		change.Normalize()

		actions = append(actions, CodeAction{Title: fix.Title, Kind: QuickFix, Edit: change})
	}

	return actions
}

func replacementForFix(kind LintFixKind, text string, r span.TextRange) (string, bool) {
	start, end := int(r.Start), int(r.End)
	if start > end || end > len(text) {
		return "", false
	}
	name := text[start:end]

	var replacement string
	switch kind {
	case MixedCaseVariable, MixedCaseFunction:
		replacement = toMixedCase(name)
	case PascalCaseStruct:
		replacement = strcase.ToCamel(name)
	}

	if replacement == name {
		return "", false
	}
	return replacement, true
}

// toMixedCase converts name to lowerCamelCase while preserving leading and
// trailing underscore runs exactly: strcase.ToLowerCamel alone does not
// special-case underscore fences, so they are stripped before conversion
// and reattached afterward.
func toMixedCase(name string) string {
	prefixLen := 0
	for prefixLen < len(name) && name[prefixLen] == '_' {
		prefixLen++
	}

	suffixLen := 0
	for suffixLen < len(name)-prefixLen && name[len(name)-1-suffixLen] == '_' {
		suffixLen++
	}

	coreEnd := len(name) - suffixLen
	if coreEnd < prefixLen {
		coreEnd = prefixLen
	}
	core := name[prefixLen:coreEnd]
	converted := strcase.ToLowerCamel(core)

	return name[:prefixLen] + converted + name[coreEnd:]
}
