// Package config loads and merges foundry.toml into a ResolvedFoundryConfig:
// the workspace, the active profile's remappings and compiler/formatter
// settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
	"github.com/solidity-analyzer/solidity-analyzer-lsp/project"
)

const foundryTomlName = "foundry.toml"

// ResolvedFoundryConfig is the merged view of workspace + active profile +
// compiler/formatter settings.
type ResolvedFoundryConfig struct {
	Workspace    project.FoundryWorkspace
	Profile      project.FoundryProfile
	Remappings   []project.Remapping
	LibraryRoots []pathutil.NormalizedPath
	SolcVersion  string // raw version-spec string; parsed by toolchain
}

// foundryTOML mirrors the subset of foundry.toml this analyzer consumes.
type foundryTOML struct {
	Profile map[string]profileTOML `toml:"profile"`
}

type profileTOML struct {
	Src           string   `toml:"src"`
	Out           string   `toml:"out"`
	Libs          []string `toml:"libs"`
	Remappings    []string `toml:"remappings"`
	ViaIR         bool     `toml:"via_ir"`
	Optimizer     bool     `toml:"optimizer"`
	OptimizerRuns int      `toml:"optimizer_runs"`
	SolcVersion   string   `toml:"solc_version"`
	Fmt           fmtTOML  `toml:"fmt"`
}

type fmtTOML struct {
	LineLength     int  `toml:"line_length"`
	TabWidth       int  `toml:"tab_width"`
	BracketSpacing bool `toml:"bracket_spacing"`
}

// Load reads root/foundry.toml (if present) and produces a
// ResolvedFoundryConfig. profileOverride, when non-empty, takes priority
// over the FOUNDRY_PROFILE environment variable; the profile is "default"
// when neither is set. Absent foundry.toml yields a default
// config rooted at root so a bare directory of .sol files still analyzes.
func Load(root pathutil.NormalizedPath, profileOverride string) (ResolvedFoundryConfig, error) {
	ws, err := project.NewFoundryWorkspace(root)
	if err != nil {
		return ResolvedFoundryConfig{}, err
	}

	activeName := activeProfileName(profileOverride)

	tomlPath := filepath.Join(root.String(), foundryTomlName)
	data, err := os.ReadFile(tomlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(ws, activeName), nil
		}
		return ResolvedFoundryConfig{}, err
	}

	var doc foundryTOML
	if err := toml.Unmarshal(data, &doc); err != nil {
		return ResolvedFoundryConfig{}, err
	}

	merged := mergeProfile(doc, activeName)
	remappings := parseRemappings(merged.Remappings)

	profile := project.FoundryProfile{
		Name:       activeName,
		Remappings: remappings,
		CompilerSettings: project.CompilerSettings{
			ViaIR:         merged.ViaIR,
			Optimizer:     merged.Optimizer,
			OptimizerRuns: merged.OptimizerRuns,
		},
		FormatterSettings: project.FormatterSettings{
			LineLength:     fallbackInt(merged.Fmt.LineLength, 120),
			TabWidth:       fallbackInt(merged.Fmt.TabWidth, 4),
			BracketSpacing: merged.Fmt.BracketSpacing,
		},
	}

	libRoots, err := libraryRoots(ws, merged.Libs)
	if err != nil {
		return ResolvedFoundryConfig{}, err
	}

	return ResolvedFoundryConfig{
		Workspace:    ws,
		Profile:      profile,
		Remappings:   remappings,
		LibraryRoots: libRoots,
		SolcVersion:  merged.SolcVersion,
	}, nil
}

func libraryRoots(ws project.FoundryWorkspace, libs []string) ([]pathutil.NormalizedPath, error) {
	if len(libs) == 0 {
		return []pathutil.NormalizedPath{ws.Lib}, nil
	}
	out := make([]pathutil.NormalizedPath, 0, len(libs))
	for _, lib := range libs {
		p, err := ws.Root.Join(lib)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func activeProfileName(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv("FOUNDRY_PROFILE"); env != "" {
		return env
	}
	return "default"
}

// mergeProfile merges [profile.default] with the named active profile;
// profile-specific keys win over the default's.
func mergeProfile(doc foundryTOML, active string) profileTOML {
	base := doc.Profile["default"]
	if active == "default" {
		return base
	}
	override, ok := doc.Profile[active]
	if !ok {
		return base
	}
	merged := base
	if override.Src != "" {
		merged.Src = override.Src
	}
	if override.Out != "" {
		merged.Out = override.Out
	}
	if len(override.Libs) > 0 {
		merged.Libs = override.Libs
	}
	if len(override.Remappings) > 0 {
		merged.Remappings = override.Remappings
	}
	if override.SolcVersion != "" {
		merged.SolcVersion = override.SolcVersion
	}
	if override.ViaIR {
		merged.ViaIR = override.ViaIR
	}
	if override.Optimizer {
		merged.Optimizer = override.Optimizer
	}
	if override.OptimizerRuns != 0 {
		merged.OptimizerRuns = override.OptimizerRuns
	}
	if override.Fmt.LineLength != 0 {
		merged.Fmt.LineLength = override.Fmt.LineLength
	}
	if override.Fmt.TabWidth != 0 {
		merged.Fmt.TabWidth = override.Fmt.TabWidth
	}
	if override.Fmt.BracketSpacing {
		merged.Fmt.BracketSpacing = override.Fmt.BracketSpacing
	}
	return merged
}

func parseRemappings(raw []string) []project.Remapping {
	out := make([]project.Remapping, 0, len(raw))
	for _, line := range raw {
		if r, ok := parseRemappingLine(line); ok {
			out = append(out, r)
		}
	}
	return out
}

// parseRemappingLine parses one remappings.txt/foundry.toml-style entry:
// "[context:]from=to".
func parseRemappingLine(line string) (project.Remapping, bool) {
	eq := indexByte(line, '=')
	if eq < 0 {
		return project.Remapping{}, false
	}
	left, to := line[:eq], line[eq+1:]
	context, from := "", left
	if colon := indexByte(left, ':'); colon >= 0 {
		context, from = left[:colon], left[colon+1:]
	}
	return project.Remapping{From: from, To: to, Context: context}, true
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func fallbackInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func defaultConfig(ws project.FoundryWorkspace, activeName string) ResolvedFoundryConfig {
	return ResolvedFoundryConfig{
		Workspace:    ws,
		LibraryRoots: []pathutil.NormalizedPath{ws.Lib},
		Profile: project.FoundryProfile{
			Name: activeName,
			FormatterSettings: project.FormatterSettings{
				LineLength: 120,
				TabWidth:   4,
			},
		},
	}
}
