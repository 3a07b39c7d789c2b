// Package project holds Foundry workspace/profile/remapping data and the
// Solidity import resolver.
package project

import (
	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

// FoundryWorkspace names the semantic source roots of a Foundry-convention
// project. Src/Test/Script default to the conventional subdirectories of
// Root, and Lib defaults to root/lib.
type FoundryWorkspace struct {
	Root   pathutil.NormalizedPath
	Src    pathutil.NormalizedPath
	Lib    pathutil.NormalizedPath
	Test   pathutil.NormalizedPath
	Script pathutil.NormalizedPath
}

// NewFoundryWorkspace builds a FoundryWorkspace rooted at root, applying
// Foundry's conventional subdirectory defaults.
func NewFoundryWorkspace(root pathutil.NormalizedPath) (FoundryWorkspace, error) {
	src, err := root.Join("src")
	if err != nil {
		return FoundryWorkspace{}, err
	}
	lib, err := root.Join("lib")
	if err != nil {
		return FoundryWorkspace{}, err
	}
	test, err := root.Join("test")
	if err != nil {
		return FoundryWorkspace{}, err
	}
	script, err := root.Join("script")
	if err != nil {
		return FoundryWorkspace{}, err
	}
	return FoundryWorkspace{Root: root, Src: src, Lib: lib, Test: test, Script: script}, nil
}

// Remapping is a prefix-rewriting rule redirecting an import path, e.g.
// "lib/" → "lib/forge-std/". Context, when present, scopes the remapping
// to importers under that path prefix.
type Remapping struct {
	From    string
	To      string
	Context string // empty means context-free
}

// HasContext reports whether the remapping is context-scoped.
func (r Remapping) HasContext() bool { return r.Context != "" }

// FoundryProfile is a named active-profile identity plus its compile
// settings and remappings.
type FoundryProfile struct {
	Name              string
	Remappings        []Remapping
	CompilerSettings  CompilerSettings
	FormatterSettings FormatterSettings
}

// CompilerSettings mirrors Foundry's [profile.*] compiler knobs relevant to
// analysis (solc version selection lives in toolchain/config).
type CompilerSettings struct {
	ViaIR         bool
	Optimizer     bool
	OptimizerRuns int
}

// FormatterSettings mirrors forge fmt's [fmt] table.
type FormatterSettings struct {
	LineLength     int
	TabWidth       int
	BracketSpacing bool
}
