package ide

import (
	"github.com/solidity-analyzer/solidity-analyzer-lsp/hir"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/vfs"
)

// ParameterInfo is one parameter of a callable's signature.
type ParameterInfo struct {
	Label string
}

// SignatureHelp describes the enclosing call expression's callee.
type SignatureHelp struct {
	Label           string
	Parameters      []ParameterInfo
	ActiveParameter int
}

// SignatureHelp resolves the enclosing call expression's callee
// (function/modifier/error/event) and the active parameter index, found by
// walking back from offset to the innermost unmatched `(` and counting
// commas since it.
func (a *Analysis) SignatureHelp(file vfs.FileId, offset span.TextSize) (SignatureHelp, bool) {
	text, ok := a.fileText(file)
	if !ok {
		return SignatureHelp{}, false
	}

	calleeEnd, activeParam, ok := enclosingCall(text, offset)
	if !ok {
		return SignatureHelp{}, false
	}
	name, _, ok := identAt(text, calleeEnd)
	if !ok {
		return SignatureHelp{}, false
	}

	for _, d := range a.sema.Definitions() {
		if d.Name != name {
			continue
		}
		if !isCallable(d.Kind) {
			continue
		}
		return SignatureHelp{
			Label:           d.Name,
			Parameters:      nil, // parameter list lives in ExternalSema's signature data, not modeled here
			ActiveParameter: activeParam,
		}, true
	}
	return SignatureHelp{}, false
}

func isCallable(k hir.DefKind) bool {
	switch k {
	case hir.DefKindFunction, hir.DefKindModifier, hir.DefKindError, hir.DefKindEvent:
		return true
	default:
		return false
	}
}

// enclosingCall walks backward from offset counting parenthesis depth to
// find the innermost unmatched `(`, returning the offset just before it
// (where the callee identifier ends) and the comma count since then (the
// active parameter index).
func enclosingCall(text string, offset span.TextSize) (span.TextSize, int, bool) {
	o := int(offset)
	if o > len(text) {
		o = len(text)
	}
	depth := 0
	commas := 0
	for i := o - 1; i >= 0; i-- {
		switch text[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return span.TextSize(i), commas, true
			}
			depth--
		case ',':
			if depth == 0 {
				commas++
			}
		}
	}
	return 0, 0, false
}
