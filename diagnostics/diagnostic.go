// Package diagnostics normalizes, merges, and sorts compiler and linter
// diagnostics into the project's common Diagnostic record.
//
// Collecting the raw diagnostics from the external solc/forge-lint
// collaborators is out of scope for this package (see toolchain); it owns
// only Normalize, Merge, and Sort.
package diagnostics

import (
	"cmp"
	"slices"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/span"
)

// Source identifies which upstream collaborator produced a diagnostic.
type Source uint8

const (
	// Compiler diagnostics originate from solc/solar type and semantic checks.
	Compiler Source = iota
	// Linter diagnostics originate from forge-lint style checks.
	Linter
)

// String returns the canonical lowercase label.
func (s Source) String() string {
	switch s {
	case Compiler:
		return "solc"
	case Linter:
		return "forge-lint"
	default:
		return "unknown"
	}
}

// Severity is the diagnostic severity level, ordered most to least severe.
type Severity uint8

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

// String returns the canonical lowercase label.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Diagnostic is the common record every upstream diagnostic is normalized
// to. Immutable after construction via Normalize.
type Diagnostic struct {
	FilePath pathutil.NormalizedPath
	Range    span.TextRange
	Severity Severity
	Code     string
	Source   Source
	Fixable  bool
	Message  string
}

// key is the dedup/merge identity: (file_path, range, code).
type key struct {
	filePath string
	start    span.TextSize
	end      span.TextSize
	code     string
}

func keyOf(d Diagnostic) key {
	return key{
		filePath: d.FilePath.String(),
		start:    d.Range.Start,
		end:      d.Range.End,
		code:     d.Code,
	}
}

// FixableCatalog reports whether a diagnostic code has an associated
// quick-fix in the assist catalog. Implemented by the assists package;
// passed in to avoid a diagnostics→assists import cycle (assists itself
// consumes Diagnostic values to build fixes).
type FixableCatalog interface {
	IsFixable(code string) bool
}

// RawDiagnostic is what an upstream collaborator (solc or forge-lint)
// reports before normalization: it may omit severity/source, which
// Normalize fills in with source-appropriate defaults.
type RawDiagnostic struct {
	FilePath    pathutil.NormalizedPath
	Range       span.TextRange
	Code        string
	Message     string
	Severity    Severity
	HasSeverity bool
	Source      Source
}

// Normalize converts a RawDiagnostic into the common Diagnostic record.
// Linter diagnostics default to Info severity; compiler diagnostics default
// to Error. Fixable is set from catalog.
func Normalize(raw RawDiagnostic, catalog FixableCatalog) Diagnostic {
	sev := raw.Severity
	if !raw.HasSeverity {
		if raw.Source == Linter {
			sev = Info
		} else {
			sev = Error
		}
	}
	fixable := false
	if catalog != nil {
		fixable = catalog.IsFixable(raw.Code)
	}
	return Diagnostic{
		FilePath: raw.FilePath,
		Range:    raw.Range,
		Severity: sev,
		Code:     raw.Code,
		Source:   raw.Source,
		Fixable:  fixable,
		Message:  raw.Message,
	}
}

// Merge deduplicates diagnostics by (file_path, range, code): when both a
// compiler and a linter diagnostic share a key, the compiler diagnostic
// wins and the linter one is dropped. Diagnostics sharing (file, range) but
// differing in code are both kept (see design notes on that open question).
// The result is sorted by (file_path, range.start, code).
func Merge(diags []Diagnostic) []Diagnostic {
	byKey := make(map[key]Diagnostic, len(diags))
	order := make([]key, 0, len(diags))

	for _, d := range diags {
		k := keyOf(d)
		existing, ok := byKey[k]
		if !ok {
			byKey[k] = d
			order = append(order, k)
			continue
		}
		if existing.Source == Linter && d.Source == Compiler {
			byKey[k] = d
		}
		// Compiler already present, or identical source repeated: keep existing.
	}

	out := make([]Diagnostic, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return Sort(out)
}

// Sort orders diagnostics by (file_path, range.start, code).
func Sort(diags []Diagnostic) []Diagnostic {
	out := slices.Clone(diags)
	slices.SortFunc(out, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.FilePath.String(), b.FilePath.String()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Range.Start, b.Range.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out
}
