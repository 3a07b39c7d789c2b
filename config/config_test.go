package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solidity-analyzer/solidity-analyzer-lsp/internal/pathutil"
)

func writeFoundryToml(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, foundryTomlName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadAbsentFoundryTomlYieldsDefault(t *testing.T) {
	dir := t.TempDir()
	root, err := pathutil.New(dir)
	if err != nil {
		t.Fatalf("pathutil.New: %v", err)
	}
	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.Name != "default" {
		t.Fatalf("expected default profile name, got %q", cfg.Profile.Name)
	}
	if len(cfg.LibraryRoots) != 1 {
		t.Fatalf("expected one default library root, got %d", len(cfg.LibraryRoots))
	}
}

func TestLoadParsesRemappingsAndFmt(t *testing.T) {
	dir := t.TempDir()
	writeFoundryToml(t, dir, `
[profile.default]
remappings = ["lib/=lib/forge-std/"]
via_ir = true
optimizer = true
optimizer_runs = 200

[profile.default.fmt]
line_length = 100
tab_width = 2
`)
	root, err := pathutil.New(dir)
	if err != nil {
		t.Fatalf("pathutil.New: %v", err)
	}
	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Remappings) != 1 || cfg.Remappings[0].From != "lib/" || cfg.Remappings[0].To != "lib/forge-std/" {
		t.Fatalf("unexpected remappings: %+v", cfg.Remappings)
	}
	if !cfg.Profile.CompilerSettings.ViaIR || cfg.Profile.CompilerSettings.OptimizerRuns != 200 {
		t.Fatalf("unexpected compiler settings: %+v", cfg.Profile.CompilerSettings)
	}
	if cfg.Profile.FormatterSettings.LineLength != 100 || cfg.Profile.FormatterSettings.TabWidth != 2 {
		t.Fatalf("unexpected formatter settings: %+v", cfg.Profile.FormatterSettings)
	}
}

func TestLoadMergesNamedProfileOverDefault(t *testing.T) {
	dir := t.TempDir()
	writeFoundryToml(t, dir, `
[profile.default]
optimizer_runs = 200

[profile.ci]
optimizer_runs = 10000
`)
	root, err := pathutil.New(dir)
	if err != nil {
		t.Fatalf("pathutil.New: %v", err)
	}
	cfg, err := Load(root, "ci")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile.CompilerSettings.OptimizerRuns != 10000 {
		t.Fatalf("expected ci profile override to win, got %d", cfg.Profile.CompilerSettings.OptimizerRuns)
	}
}

func TestParseRemappingLineWithContext(t *testing.T) {
	r, ok := parseRemappingLine("src/special:lib/=lib/scoped/")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if r.Context != "src/special" || r.From != "lib/" || r.To != "lib/scoped/" {
		t.Fatalf("unexpected remapping: %+v", r)
	}
}
