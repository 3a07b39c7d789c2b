package assists

// LintFixKind classifies the style conversion a fixable lint applies.
type LintFixKind int

const (
	MixedCaseVariable LintFixKind = iota
	MixedCaseFunction
	PascalCaseStruct
)

// LintFix pairs a diagnostic code with its human-facing title and the
// conversion it applies.
type LintFix struct {
	Code  string
	Title string
	Kind  LintFixKind
}

var lintFixes = []LintFix{
	{Code: "mixed-case-variable", Title: "Convert to mixedCase", Kind: MixedCaseVariable},
	{Code: "mixed-case-function", Title: "Convert to mixedCase", Kind: MixedCaseFunction},
	{Code: "pascal-case-struct", Title: "Convert to PascalCase", Kind: PascalCaseStruct},
}

var lintFixLookup = func() map[string]LintFix {
	m := make(map[string]LintFix, len(lintFixes))
	for _, f := range lintFixes {
		m[f.Code] = f
	}
	return m
}()

// Lookup returns the LintFix registered for code, if any.
func Lookup(code string) (LintFix, bool) {
	f, ok := lintFixLookup[code]
	return f, ok
}

// IsFixable reports whether code has a registered LintFix. Catalog exposes
// it as diagnostics.FixableCatalog.
func IsFixable(code string) bool {
	_, ok := lintFixLookup[code]
	return ok
}

// Catalog adapts the package-level fixable-lint registry to
// diagnostics.FixableCatalog without diagnostics importing this package.
type Catalog struct{}

// IsFixable implements diagnostics.FixableCatalog.
func (Catalog) IsFixable(code string) bool { return IsFixable(code) }
